package progress

import (
	"context"
	"errors"

	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/program/domain"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

var ErrProgramNotFound = errors.New("observing program not found")

// ProgramGetter returns a program if the caller may see it.
type ProgramGetter interface {
	Get(ctx context.Context, caller rbac.Principal, id string) (*domain.ObservingProgram, error)
}

// Tracker answers progress snapshot queries with the same visibility rules as program reads.
type Tracker struct {
	programs ProgramGetter
}

func NewTracker(programs ProgramGetter) *Tracker {
	return &Tracker{programs: programs}
}

func (t *Tracker) Snapshot(ctx context.Context, caller rbac.Principal, programID string) (Snapshot, error) {
	p, err := t.programs.Get(ctx, caller, programID)
	if err != nil {
		return Snapshot{}, err
	}
	if p == nil {
		return Snapshot{}, ErrProgramNotFound
	}
	return SnapshotOf(p), nil
}

// VisibleTo reports whether caller may receive e. Astronomers only follow programs they submitted.
func (e Event) VisibleTo(caller rbac.Principal) bool {
	if caller.Role != userdomain.RoleAstronomer {
		return true
	}
	return e.SubmittedBy != "" && e.SubmittedBy == caller.UserID
}
