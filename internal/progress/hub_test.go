package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-observatory/backend/internal/logging"
	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/program/domain"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	done   chan struct{}
}

func (s *recordingSink) Send(_ context.Context, e Event) error {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	s.done <- struct{}{}
	return s.err
}

func TestHubFiltersByProgram(t *testing.T) {
	hub := NewHub(logging.Discard())
	one, cancelOne := hub.Subscribe("p1")
	defer cancelOne()
	all, cancelAll := hub.Subscribe("")
	defer cancelAll()

	hub.Publish(context.Background(), Event{ProgramID: "p2", Type: EventApproved})
	hub.Publish(context.Background(), Event{ProgramID: "p1", Type: EventStarted})

	got := <-one
	assert.Equal(t, EventStarted, got.Type)
	assert.Equal(t, "p2", (<-all).ProgramID)
	assert.Equal(t, "p1", (<-all).ProgramID)
	assert.Len(t, one, 0)
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	hub := NewHub(logging.Discard())
	ch, cancel := hub.Subscribe("p1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(context.Background(), Event{ProgramID: "p1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub(logging.Discard())
	ch, cancel := hub.Subscribe("")
	assert.Equal(t, 1, hub.Subscribers())
	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, hub.Subscribers())

	hub.Publish(context.Background(), Event{ProgramID: "p1"})
}

func TestHubForwardsToSinks(t *testing.T) {
	ok := &recordingSink{done: make(chan struct{}, 1)}
	failing := &recordingSink{done: make(chan struct{}, 1), err: errors.New("broker down")}
	hub := NewHub(logging.Discard(), ok, failing)

	hub.Publish(context.Background(), Event{ProgramID: "p9", Type: EventCompleted})
	for _, s := range []*recordingSink{ok, failing} {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatal("sink not called")
		}
		s.mu.Lock()
		require.Len(t, s.events, 1)
		assert.Equal(t, "p9", s.events[0].ProgramID)
		s.mu.Unlock()
	}
}

func TestNewEventAndSnapshot(t *testing.T) {
	started := time.Date(2026, 2, 2, 2, 0, 0, 0, time.UTC)
	p := &domain.ObservingProgram{
		ID: "p1", PlanID: "plan-1", Status: domain.StatusExecuting, ExecutionMode: domain.ModeQueue,
		FramesPlanned: 8, FramesCaptured: 2, StartedAt: &started,
	}
	p.SubmittedBy = "astro-1"
	e := NewEvent(p, EventFrameCaptured, "frame 2 of 8")
	assert.Equal(t, "astro-1", e.SubmittedBy)
	assert.Equal(t, "Executing", e.Status)
	assert.Equal(t, 2, e.FramesCaptured)
	assert.False(t, e.At.IsZero())

	snap := SnapshotOf(p)
	assert.InDelta(t, 25.0, snap.Percent, 1e-9)
	assert.Equal(t, domain.ModeQueue, snap.ExecutionMode)
	assert.Equal(t, &started, snap.StartedAt)
}

type stubPrograms map[string]*domain.ObservingProgram

func (s stubPrograms) Get(_ context.Context, caller rbac.Principal, id string) (*domain.ObservingProgram, error) {
	p := s[id]
	if p != nil && caller.Role == userdomain.RoleAstronomer && p.SubmittedBy != caller.UserID {
		return nil, rbac.ErrForbidden
	}
	return p, nil
}

func TestTrackerSnapshot(t *testing.T) {
	tr := NewTracker(stubPrograms{"p1": {ID: "p1", SubmittedBy: "astro-1", Status: domain.StatusComplete, FramesPlanned: 2, FramesCaptured: 2}})
	owner := rbac.Principal{UserID: "astro-1", Role: userdomain.RoleAstronomer}
	snap, err := tr.Snapshot(context.Background(), owner, "p1")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, snap.Percent, 1e-9)

	_, err = tr.Snapshot(context.Background(), rbac.Principal{UserID: "astro-2", Role: userdomain.RoleAstronomer}, "p1")
	assert.ErrorIs(t, err, rbac.ErrForbidden)

	_, err = tr.Snapshot(context.Background(), owner, "missing")
	assert.ErrorIs(t, err, ErrProgramNotFound)
}

func TestEventVisibleTo(t *testing.T) {
	e := Event{ProgramID: "p1", SubmittedBy: "astro-1"}
	assert.True(t, e.VisibleTo(rbac.Principal{UserID: "astro-1", Role: userdomain.RoleAstronomer}))
	assert.False(t, e.VisibleTo(rbac.Principal{UserID: "astro-2", Role: userdomain.RoleAstronomer}))
	assert.True(t, e.VisibleTo(rbac.Principal{UserID: "op-1", Role: userdomain.RoleTelescopeOperator}))
	assert.False(t, Event{ProgramID: "p2"}.VisibleTo(rbac.Principal{UserID: "astro-1", Role: userdomain.RoleAstronomer}))
}

func TestNATSSinkSubject(t *testing.T) {
	s := NewNATSSink(nil, "gemini.progress")
	assert.Equal(t, "gemini.progress.abc", s.Subject("abc"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Send(ctx, Event{ProgramID: "abc"}))
}

func TestConnectNATSUnreachable(t *testing.T) {
	_, err := ConnectNATS("nats://127.0.0.1:1", "test")
	assert.Error(t, err)
}
