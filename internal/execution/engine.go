// Package execution runs approved observing programs (UC-04): automated and queued programs are
// captured by a pool of workers, interactive programs frame by frame at the operator's request.
package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"gemini-observatory/backend/internal/metrics"
	obsdomain "gemini-observatory/backend/internal/observation/domain"
	obsrepo "gemini-observatory/backend/internal/observation/repository"
	"gemini-observatory/backend/internal/observation/storage"
	plandomain "gemini-observatory/backend/internal/plan/domain"
	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/platform/validation"
	"gemini-observatory/backend/internal/program/domain"
	"gemini-observatory/backend/internal/program/repository"
	"gemini-observatory/backend/internal/progress"
)

var tracer = otel.Tracer("gemini-observatory/backend/internal/execution")

const maxCaptureFailures = 3

var (
	ErrProgramNotFound = errors.New("observing program not found")
	// ErrNotApproved is returned when starting a program that is not Approved.
	ErrNotApproved = errors.New("observing program must be approved before execution")
	// ErrNotInteractive is returned when an operator captures a frame of a background program.
	ErrNotInteractive = errors.New("frames can only be captured manually in interactive mode")
	ErrAlreadyRunning = errors.New("execution engine already running")
)

// ProgramStore is the subset of the program repository the engine needs.
type ProgramStore interface {
	GetByID(ctx context.Context, id string) (*domain.ObservingProgram, error)
	List(ctx context.Context, f repository.Filter) ([]*domain.ObservingProgram, error)
	Update(ctx context.Context, p *domain.ObservingProgram, from domain.Status) (bool, error)
}

// PlanReader loads the plan a program observes.
type PlanReader interface {
	GetByID(ctx context.Context, id string) (*plandomain.SciencePlan, error)
}

// Config tunes the worker pool.
type Config struct {
	Workers       int
	FrameInterval time.Duration
}

type queued struct {
	programID   string
	submittedAt time.Time
}

// Engine executes observing programs. Safe for concurrent use.
type Engine struct {
	programs     ProgramStore
	plans        PlanReader
	observations obsrepo.Repository
	store        storage.Storage
	events       progress.Publisher
	metrics      *metrics.Metrics
	log          logrus.FieldLogger
	cfg          Config
	now          func() time.Time

	mu      sync.Mutex
	auto    []string
	queue   []queued
	running map[string]context.CancelFunc
	locks   map[string]*sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	wake    chan struct{}
}

func NewEngine(programs ProgramStore, plans PlanReader, observations obsrepo.Repository, store storage.Storage, events progress.Publisher, m *metrics.Metrics, log logrus.FieldLogger, cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 2 * time.Second
	}
	return &Engine{
		programs:     programs,
		plans:        plans,
		observations: observations,
		store:        store,
		events:       events,
		metrics:      m,
		log:          log,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
		running:      make(map[string]context.CancelFunc),
		locks:        make(map[string]*sync.Mutex),
		wake:         make(chan struct{}, 1),
	}
}

// Start moves an Approved program to Executing. Background modes are handed to the workers;
// interactive programs wait for Capture calls.
func (e *Engine) Start(ctx context.Context, caller rbac.Principal, programID string, mode domain.ExecutionMode) (*domain.ObservingProgram, error) {
	ctx, span := tracer.Start(ctx, "execution.Start")
	defer span.End()

	if !mode.Valid() {
		return nil, validation.New([]string{"Invalid execution mode."})
	}
	lock := e.lockFor(programID)
	lock.Lock()
	defer lock.Unlock()

	p, err := e.load(ctx, programID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.StatusApproved {
		return nil, ErrNotApproved
	}
	if err := p.Apply(domain.TransitionStart, e.now()); err != nil {
		return nil, err
	}
	p.OperatorID = caller.UserID
	p.ExecutionMode = mode
	ok, err := e.programs.Update(ctx, p, domain.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("update program: %w", err)
	}
	if !ok {
		return nil, ErrNotApproved
	}

	span.SetAttributes(attribute.String("program.id", p.ID), attribute.String("execution.mode", string(mode)))
	e.announce(ctx, p, progress.EventStarted, fmt.Sprintf("Execution started in %s mode.", mode))
	e.log.WithFields(logrus.Fields{"program_id": p.ID, "mode": mode, "operator_id": caller.UserID}).Info("observing program execution started")
	e.schedule(ctx, p)
	return p, nil
}

// Capture takes the next frame of an interactive program.
func (e *Engine) Capture(ctx context.Context, programID string) (*obsdomain.Observation, *domain.ObservingProgram, error) {
	ctx, span := tracer.Start(ctx, "execution.Capture")
	defer span.End()

	p, err := e.load(ctx, programID)
	if err != nil {
		return nil, nil, err
	}
	if p.Status == domain.StatusExecuting && p.ExecutionMode.Background() {
		return nil, nil, ErrNotInteractive
	}
	return e.capture(ctx, programID)
}

// Abort stops an executing program. Frames already captured are kept.
func (e *Engine) Abort(ctx context.Context, caller rbac.Principal, programID, reason string) (*domain.ObservingProgram, error) {
	ctx, span := tracer.Start(ctx, "execution.Abort")
	defer span.End()

	e.cancelRun(programID)
	lock := e.lockFor(programID)
	lock.Lock()
	defer lock.Unlock()

	p, err := e.load(ctx, programID)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(domain.TransitionAbort, e.now()); err != nil {
		return nil, err
	}
	ok, err := e.programs.Update(ctx, p, domain.StatusExecuting)
	if err != nil {
		return nil, fmt.Errorf("update program: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	e.dequeue(programID)

	msg := "Execution aborted."
	if reason = strings.TrimSpace(reason); reason != "" {
		msg = "Execution aborted: " + reason
	}
	e.announce(ctx, p, progress.EventAborted, msg)
	e.log.WithFields(logrus.Fields{"program_id": p.ID, "operator_id": caller.UserID, "reason": reason}).Info("observing program aborted")
	return p, nil
}

// Run re-enqueues programs left executing in a background mode, then runs the workers until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		cancel()
		return ErrAlreadyRunning
	}
	e.cancel = cancel
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cancel = nil
		e.mu.Unlock()
		close(done)
	}()

	if err := e.resume(ctx); err != nil {
		e.log.WithError(err).Warn("execution: resume failed")
	}

	var wg sync.WaitGroup
	for i := 0; i < e.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx)
		}()
	}
	<-ctx.Done()
	wg.Wait()
	return nil
}

// Stop cancels Run and waits for the workers to return.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// QueueLength is the number of queue-mode programs waiting for a worker.
func (e *Engine) QueueLength() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) resume(ctx context.Context) error {
	programs, err := e.programs.List(ctx, repository.Filter{Status: domain.StatusExecuting})
	if err != nil {
		return err
	}
	for _, p := range programs {
		if p.ExecutionMode.Background() {
			e.log.WithField("program_id", p.ID).Info("execution: resuming program")
			e.schedule(ctx, p)
		}
	}
	return nil
}

func (e *Engine) schedule(ctx context.Context, p *domain.ObservingProgram) {
	e.mu.Lock()
	if e.scheduledLocked(p.ID) {
		e.mu.Unlock()
		return
	}
	switch p.ExecutionMode {
	case domain.ModeAutomated:
		e.auto = append(e.auto, p.ID)
		e.mu.Unlock()
	case domain.ModeQueue:
		// Submission order, so a program started late does not jump ahead of older ones.
		i := sort.Search(len(e.queue), func(i int) bool { return e.queue[i].submittedAt.After(p.SubmittedAt) })
		e.queue = append(e.queue, queued{})
		copy(e.queue[i+1:], e.queue[i:])
		e.queue[i] = queued{programID: p.ID, submittedAt: p.SubmittedAt}
		depth := len(e.queue)
		e.mu.Unlock()

		e.metrics.SetQueueDepth(depth)
		ev := progress.NewEvent(p, progress.EventQueued, fmt.Sprintf("Queued at position %d.", i+1))
		ev.QueuePosition = i + 1
		if e.events != nil {
			e.events.Publish(ctx, ev)
		}
	default:
		e.mu.Unlock()
		return
	}
	e.signal()
}

func (e *Engine) scheduledLocked(programID string) bool {
	if _, ok := e.running[programID]; ok {
		return true
	}
	for _, id := range e.auto {
		if id == programID {
			return true
		}
	}
	for _, q := range e.queue {
		if q.programID == programID {
			return true
		}
	}
	return false
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// next pops automated programs before queued ones.
func (e *Engine) next() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var id string
	switch {
	case len(e.auto) > 0:
		id, e.auto = e.auto[0], e.auto[1:]
	case len(e.queue) > 0:
		id, e.queue = e.queue[0].programID, e.queue[1:]
		e.metrics.SetQueueDepth(len(e.queue))
	default:
		return "", false
	}
	if len(e.auto)+len(e.queue) > 0 {
		e.signal()
	}
	return id, true
}

func (e *Engine) dequeue(programID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, id := range e.auto {
		if id == programID {
			e.auto = append(e.auto[:i], e.auto[i+1:]...)
			break
		}
	}
	for i, q := range e.queue {
		if q.programID == programID {
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			e.metrics.SetQueueDepth(len(e.queue))
			break
		}
	}
}

func (e *Engine) worker(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		id, ok := e.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-e.wake:
				continue
			}
		}
		e.runProgram(ctx, id)
	}
}

// runProgram captures one frame per interval until the program completes, is aborted or ctx ends.
func (e *Engine) runProgram(ctx context.Context, programID string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.mu.Lock()
	e.running[programID] = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.running, programID)
		e.mu.Unlock()
	}()

	log := e.log.WithField("program_id", programID)
	ticker := time.NewTicker(e.cfg.FrameInterval)
	defer ticker.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		_, p, err := e.capture(ctx, programID)
		switch {
		case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, ErrProgramNotFound):
			return
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			failures++
			log.WithError(err).WithField("attempt", failures).Warn("execution: frame capture failed")
			if failures >= maxCaptureFailures {
				log.Error("execution: giving up on program until restart")
				return
			}
			continue
		}
		failures = 0
		if p.Status != domain.StatusExecuting {
			return
		}
	}
}

func (e *Engine) cancelRun(programID string) {
	e.mu.Lock()
	cancel := e.running[programID]
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// capture stores the next frame of an executing program and advances its counters,
// completing the program after its last planned frame.
func (e *Engine) capture(ctx context.Context, programID string) (*obsdomain.Observation, *domain.ObservingProgram, error) {
	lock := e.lockFor(programID)
	lock.Lock()
	defer lock.Unlock()

	p, err := e.load(ctx, programID)
	if err != nil {
		return nil, nil, err
	}
	if p.Status != domain.StatusExecuting {
		return nil, nil, domain.ErrInvalidTransition
	}
	plan, err := e.plans.GetByID(ctx, p.PlanID)
	if err != nil {
		return nil, nil, fmt.Errorf("load plan: %w", err)
	}
	if plan == nil {
		return nil, nil, fmt.Errorf("plan %s of program %s not found", p.PlanID, p.ID)
	}

	seq := p.FramesCaptured + 1
	frame := Synthesize(p.ID, plan, seq)
	key := obsdomain.ObjectKey(p.ID, seq, frame.Ext)
	if err := e.store.Put(ctx, key, bytes.NewReader(frame.Data), int64(len(frame.Data)), frame.ContentType); err != nil {
		return nil, nil, fmt.Errorf("store frame: %w", err)
	}
	now := e.now()
	o := &obsdomain.Observation{
		ID:          uuid.New().String(),
		ProgramID:   p.ID,
		Sequence:    seq,
		ObjectKey:   key,
		ContentType: frame.ContentType,
		SizeBytes:   int64(len(frame.Data)),
		Checksum:    frame.Checksum,
		CapturedAt:  now,
	}
	// A duplicate means the row survived an earlier attempt whose counter update failed.
	if err := e.observations.Create(ctx, o); errors.Is(err, obsrepo.ErrDuplicateFrame) {
		existing, err := e.observations.GetBySequence(ctx, p.ID, seq)
		if err != nil {
			return nil, nil, fmt.Errorf("load recorded frame: %w", err)
		}
		if existing != nil {
			o = existing
		}
	} else if err != nil {
		return nil, nil, fmt.Errorf("record observation: %w", err)
	}

	p.FramesCaptured = seq
	p.UpdatedAt = now
	if p.FramesCaptured >= p.FramesPlanned {
		if err := p.Apply(domain.TransitionFinish, now); err != nil {
			return nil, nil, err
		}
	}
	ok, err := e.programs.Update(ctx, p, domain.StatusExecuting)
	if err != nil {
		return nil, nil, fmt.Errorf("update program: %w", err)
	}
	if !ok {
		return nil, nil, domain.ErrInvalidTransition
	}

	e.metrics.FrameCaptured()
	if e.events != nil {
		e.events.Publish(ctx, progress.NewEvent(p, progress.EventFrameCaptured, fmt.Sprintf("Captured frame %d of %d.", seq, p.FramesPlanned)))
	}
	if p.Status == domain.StatusComplete {
		e.announce(ctx, p, progress.EventCompleted, "Observation complete.")
		e.log.WithFields(logrus.Fields{"program_id": p.ID, "frames": p.FramesCaptured}).Info("observing program complete")
	}
	return o, p, nil
}

func (e *Engine) load(ctx context.Context, id string) (*domain.ObservingProgram, error) {
	p, err := e.programs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	if p == nil {
		return nil, ErrProgramNotFound
	}
	return p, nil
}

// TODO: evict per-program locks once a program reaches a terminal status.
func (e *Engine) lockFor(programID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[programID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[programID] = l
	}
	return l
}

func (e *Engine) announce(ctx context.Context, p *domain.ObservingProgram, t progress.EventType, msg string) {
	e.metrics.Transition(string(p.Status))
	if e.events != nil {
		e.events.Publish(ctx, progress.NewEvent(p, t, msg))
	}
}
