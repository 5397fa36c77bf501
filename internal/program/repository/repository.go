package repository

import (
	"context"
	"errors"

	"gemini-observatory/backend/internal/program/domain"
)

var (
	// ErrPlanNotValid is returned by Submit when the plan is missing or no longer VALID.
	ErrPlanNotValid = errors.New("plan is not in VALID status")
	// ErrDuplicateProgram is returned by Submit when the plan already has a program.
	ErrDuplicateProgram = errors.New("plan already has an observing program")
)

// Filter narrows a program listing. Zero values match everything.
type Filter struct {
	Status      domain.Status
	SubmittedBy string
}

// Repository persists observing programs. Lookups of missing programs return nil, nil.
type Repository interface {
	// Submit stores p and moves its plan from VALID to SUBMITTED atomically.
	Submit(ctx context.Context, p *domain.ObservingProgram) error
	GetByID(ctx context.Context, id string) (*domain.ObservingProgram, error)
	GetByPlan(ctx context.Context, planID string) (*domain.ObservingProgram, error)
	// List returns programs oldest submission first, the order queue-mode execution follows.
	List(ctx context.Context, f Filter) ([]*domain.ObservingProgram, error)
	// Update writes p only if the stored status is still from. Reports whether the row changed.
	Update(ctx context.Context, p *domain.ObservingProgram, from domain.Status) (bool, error)
}
