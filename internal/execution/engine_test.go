package execution

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-observatory/backend/internal/logging"
	obsdomain "gemini-observatory/backend/internal/observation/domain"
	obsrepo "gemini-observatory/backend/internal/observation/repository"
	"gemini-observatory/backend/internal/observation/storage"
	plandomain "gemini-observatory/backend/internal/plan/domain"
	planrepo "gemini-observatory/backend/internal/plan/repository"
	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/platform/validation"
	"gemini-observatory/backend/internal/program/domain"
	"gemini-observatory/backend/internal/program/repository"
	"gemini-observatory/backend/internal/progress"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

var operator = rbac.Principal{UserID: "op-1", Role: userdomain.RoleTelescopeOperator}

type recorder struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recorder) Publish(_ context.Context, e progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) of(t progress.EventType) []progress.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []progress.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) types(programID string) []progress.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []progress.EventType
	for _, e := range r.events {
		if e.ProgramID == programID {
			out = append(out, e.Type)
		}
	}
	return out
}

type fixture struct {
	engine   *Engine
	plans    *planrepo.MemoryRepository
	programs *repository.MemoryRepository
	obs      *obsrepo.MemoryRepository
	store    *storage.MemoryStorage
	events   *recorder
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		plans:  planrepo.NewMemoryRepository(),
		obs:    obsrepo.NewMemoryRepository(),
		store:  storage.NewMemoryStorage(),
		events: &recorder{},
	}
	f.programs = repository.NewMemoryRepository(f.plans)
	f.engine = NewEngine(f.programs, f.plans, f.obs, f.store, f.events, nil, logging.Discard(), cfg)
	t.Cleanup(f.engine.Stop)
	return f
}

// addProgram stores a submitted program with the given number of planned frames and moves it to status.
func (f *fixture) addProgram(t *testing.T, id string, frames int, submittedAt time.Time, status domain.Status) {
	t.Helper()
	ctx := context.Background()
	planID := "plan-" + id
	require.NoError(t, f.plans.Create(ctx, &plandomain.SciencePlan{
		ID: planID, OwnerID: "astro-1", Status: plandomain.StatusValid, StarSystemName: "Crux",
		TelescopeLocation: plandomain.LocationChile, FileType: plandomain.FilePNG, FileQuality: plandomain.QualityLow,
		ImageMode: plandomain.ImageColor, Exposure: 20,
	}))
	p := &domain.ObservingProgram{
		ID: id, PlanID: planID, SubmittedBy: "astro-1", Status: domain.StatusPendingReview,
		FramesPlanned: frames, SubmittedAt: submittedAt, UpdatedAt: submittedAt,
	}
	require.NoError(t, f.programs.Submit(ctx, p))
	if status == domain.StatusPendingReview {
		return
	}
	t2 := domain.TransitionApprove
	if status == domain.StatusRejected {
		t2 = domain.TransitionReject
	}
	require.NoError(t, p.Apply(t2, submittedAt))
	ok, err := f.programs.Update(ctx, p, domain.StatusPendingReview)
	require.NoError(t, err)
	require.True(t, ok)
}

func (f *fixture) program(t *testing.T, id string) *domain.ObservingProgram {
	t.Helper()
	p, err := f.programs.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	go func() { _ = f.engine.Run(context.Background()) }()
}

var t0 = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func TestStartRequiresApproval(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.addProgram(t, "pending", 2, t0, domain.StatusPendingReview)
	f.addProgram(t, "rejected", 2, t0, domain.StatusRejected)
	f.addProgram(t, "approved", 2, t0, domain.StatusApproved)

	_, err := f.engine.Start(ctx, operator, "pending", domain.ModeInteractive)
	assert.ErrorIs(t, err, ErrNotApproved)
	_, err = f.engine.Start(ctx, operator, "rejected", domain.ModeAutomated)
	assert.ErrorIs(t, err, ErrNotApproved)
	_, err = f.engine.Start(ctx, operator, "missing", domain.ModeAutomated)
	assert.ErrorIs(t, err, ErrProgramNotFound)
	_, err = f.engine.Start(ctx, operator, "approved", "manual")
	assert.Equal(t, []string{"Invalid execution mode."}, validation.Problems(err))

	p, err := f.engine.Start(ctx, operator, "approved", domain.ModeInteractive)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExecuting, p.Status)
	assert.Equal(t, operator.UserID, p.OperatorID)
	require.NotNil(t, p.StartedAt)

	_, err = f.engine.Start(ctx, operator, "approved", domain.ModeInteractive)
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestInteractiveCaptureCompletes(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.addProgram(t, "p1", 2, t0, domain.StatusApproved)

	_, _, err := f.engine.Capture(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.engine.Start(ctx, operator, "p1", domain.ModeInteractive)
	require.NoError(t, err)

	o, p, err := f.engine.Capture(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, o.Sequence)
	assert.Equal(t, "programs/p1/frame-0001.png", o.ObjectKey)
	assert.Equal(t, "image/png", o.ContentType)
	assert.Equal(t, domain.StatusExecuting, p.Status)

	o, p, err = f.engine.Capture(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, o.Sequence)
	assert.Equal(t, domain.StatusComplete, p.Status)
	require.NotNil(t, p.CompletedAt)

	_, _, err = f.engine.Capture(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, 2, f.store.Len())
	frames, err := f.obs.ListByProgram(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, frames, 2)
	assert.Equal(t, []progress.EventType{
		progress.EventStarted, progress.EventFrameCaptured, progress.EventFrameCaptured, progress.EventCompleted,
	}, f.events.types("p1"))
	assert.Equal(t, 2, f.program(t, "p1").FramesCaptured)
}

func TestCaptureReusesFrameRecordedByEarlierAttempt(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.addProgram(t, "p1", 2, t0, domain.StatusApproved)
	_, err := f.engine.Start(ctx, operator, "p1", domain.ModeInteractive)
	require.NoError(t, err)
	require.NoError(t, f.obs.Create(ctx, &obsdomain.Observation{
		ID: "frame-1", ProgramID: "p1", Sequence: 1, ObjectKey: "programs/p1/frame-0001.png", ContentType: "image/png",
	}))

	o, p, err := f.engine.Capture(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "frame-1", o.ID)
	assert.Equal(t, 1, p.FramesCaptured)

	stored, err := f.obs.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
	frames, err := f.obs.ListByProgram(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, frames, 1)
}

func TestCaptureRejectsBackgroundProgram(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.addProgram(t, "p1", 2, t0, domain.StatusApproved)
	_, err := f.engine.Start(ctx, operator, "p1", domain.ModeAutomated)
	require.NoError(t, err)

	_, _, err = f.engine.Capture(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotInteractive)
}

func TestAutomatedExecution(t *testing.T) {
	f := newFixture(t, Config{Workers: 2, FrameInterval: 5 * time.Millisecond})
	ctx := context.Background()
	f.addProgram(t, "p1", 3, t0, domain.StatusApproved)
	f.run(t)

	_, err := f.engine.Start(ctx, operator, "p1", domain.ModeAutomated)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.program(t, "p1").Status == domain.StatusComplete
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, f.store.Len())
	assert.Equal(t, 3, f.program(t, "p1").FramesCaptured)
	assert.Len(t, f.events.of(progress.EventCompleted), 1)
}

func TestQueueRunsInSubmissionOrder(t *testing.T) {
	f := newFixture(t, Config{Workers: 1, FrameInterval: time.Millisecond})
	ctx := context.Background()
	f.addProgram(t, "older", 2, t0, domain.StatusApproved)
	f.addProgram(t, "newer", 2, t0.Add(time.Hour), domain.StatusApproved)

	_, err := f.engine.Start(ctx, operator, "newer", domain.ModeQueue)
	require.NoError(t, err)
	_, err = f.engine.Start(ctx, operator, "older", domain.ModeQueue)
	require.NoError(t, err)
	assert.Equal(t, 2, f.engine.QueueLength())

	queued := f.events.of(progress.EventQueued)
	require.Len(t, queued, 2)
	assert.Equal(t, "newer", queued[0].ProgramID)
	assert.Equal(t, 1, queued[0].QueuePosition)
	assert.Equal(t, "older", queued[1].ProgramID)
	assert.Equal(t, 1, queued[1].QueuePosition)

	f.run(t)
	require.Eventually(t, func() bool {
		return len(f.events.of(progress.EventCompleted)) == 2
	}, 2*time.Second, 5*time.Millisecond)
	completed := f.events.of(progress.EventCompleted)
	assert.Equal(t, "older", completed[0].ProgramID)
	assert.Equal(t, "newer", completed[1].ProgramID)
	assert.Equal(t, 0, f.engine.QueueLength())
}

func TestAbortStopsExecution(t *testing.T) {
	f := newFixture(t, Config{Workers: 1, FrameInterval: 5 * time.Millisecond})
	ctx := context.Background()
	f.addProgram(t, "p1", 24, t0, domain.StatusApproved)
	f.run(t)

	_, err := f.engine.Start(ctx, operator, "p1", domain.ModeAutomated)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return f.program(t, "p1").FramesCaptured >= 1
	}, 2*time.Second, 2*time.Millisecond)

	p, err := f.engine.Abort(ctx, operator, "p1", "clouds over the summit")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAborted, p.Status)
	captured := p.FramesCaptured

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, captured, f.program(t, "p1").FramesCaptured)
	aborted := f.events.of(progress.EventAborted)
	require.Len(t, aborted, 1)
	assert.Equal(t, "Execution aborted: clouds over the summit", aborted[0].Message)

	_, err = f.engine.Abort(ctx, operator, "p1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAbortQueuedProgram(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.addProgram(t, "p1", 2, t0, domain.StatusApproved)
	_, err := f.engine.Start(ctx, operator, "p1", domain.ModeQueue)
	require.NoError(t, err)
	require.Equal(t, 1, f.engine.QueueLength())

	_, err = f.engine.Abort(ctx, operator, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, 0, f.engine.QueueLength())
}

func TestRunResumesExecutingPrograms(t *testing.T) {
	f := newFixture(t, Config{Workers: 1, FrameInterval: time.Millisecond})
	ctx := context.Background()
	f.addProgram(t, "p1", 2, t0, domain.StatusApproved)

	// Left executing by a previous process.
	p := f.program(t, "p1")
	require.NoError(t, p.Apply(domain.TransitionStart, t0))
	p.ExecutionMode = domain.ModeAutomated
	ok, err := f.programs.Update(ctx, p, domain.StatusApproved)
	require.NoError(t, err)
	require.True(t, ok)

	f.run(t)
	require.Eventually(t, func() bool {
		return f.program(t, "p1").Status == domain.StatusComplete
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRunTwice(t *testing.T) {
	f := newFixture(t, Config{})
	f.run(t)
	require.Eventually(t, func() bool {
		f.engine.mu.Lock()
		defer f.engine.mu.Unlock()
		return f.engine.cancel != nil
	}, time.Second, time.Millisecond)
	assert.ErrorIs(t, f.engine.Run(context.Background()), ErrAlreadyRunning)
}

func TestSynthesize(t *testing.T) {
	plan := &plandomain.SciencePlan{StarSystemName: "Crux", FileType: plandomain.FileJPEG, FileQuality: plandomain.QualityLow}
	a := Synthesize("p1", plan, 1)
	b := Synthesize("p1", plan, 1)
	c := Synthesize("p1", plan, 2)
	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, a.Checksum, b.Checksum)
	assert.NotEqual(t, a.Checksum, c.Checksum)
	assert.Equal(t, "jpg", a.Ext)
	assert.Equal(t, "image/jpeg", a.ContentType)
	assert.Contains(t, string(a.Data[:64]), "GEMINI-FRAME/1")

	plan.FileQuality = plandomain.QualityFine
	fine := Synthesize("p1", plan, 1)
	assert.Equal(t, fineQualityPayload-lowQualityPayload, len(fine.Data)-len(a.Data))
}

func TestFormat(t *testing.T) {
	for ft, want := range map[plandomain.FileType]string{
		plandomain.FilePNG:  "png/image/png",
		plandomain.FileJPEG: "jpg/image/jpeg",
		plandomain.FileRAW:  "raw/application/octet-stream",
	} {
		ext, ct := Format(ft)
		assert.Equal(t, want, fmt.Sprintf("%s/%s", ext, ct))
	}
}
