// Package service implements observing program submission (UC-03) and science observer review.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"gemini-observatory/backend/internal/metrics"
	plandomain "gemini-observatory/backend/internal/plan/domain"
	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/platform/validation"
	"gemini-observatory/backend/internal/program/domain"
	"gemini-observatory/backend/internal/program/repository"
	"gemini-observatory/backend/internal/progress"
	"gemini-observatory/backend/internal/telescope"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

var tracer = otel.Tracer("gemini-observatory/backend/internal/program")

var (
	ErrProgramNotFound = errors.New("observing program not found")
	ErrPlanNotFound    = errors.New("science plan not found")
	// ErrPlanNotValidated is returned when submitting a plan whose status is not VALID.
	ErrPlanNotValidated = errors.New("science plan must be validated before submission")
	ErrAlreadySubmitted = errors.New("science plan has already been submitted")
)

// PlanReader loads the plan being submitted.
type PlanReader interface {
	GetByID(ctx context.Context, id string) (*plandomain.SciencePlan, error)
}

type Service struct {
	programs repository.Repository
	plans    PlanReader
	events   progress.Publisher
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(programs repository.Repository, plans PlanReader, events progress.Publisher, m *metrics.Metrics, log logrus.FieldLogger) *Service {
	return &Service{
		programs: programs,
		plans:    plans,
		events:   events,
		metrics:  m,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit turns a VALID plan into an observing program awaiting review and locks the plan.
func (s *Service) Submit(ctx context.Context, caller rbac.Principal, planID string, in domain.Input) (*domain.ObservingProgram, error) {
	ctx, span := tracer.Start(ctx, "program.Submit")
	defer span.End()

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if err := rbac.RequireOwnerOrAdmin(caller, plan.OwnerID); err != nil {
		return nil, err
	}
	if plan.Status == plandomain.StatusSubmitted {
		return nil, ErrAlreadySubmitted
	}
	if plan.Status != plandomain.StatusValid {
		return nil, ErrPlanNotValidated
	}
	if err := validation.New(in.Problems()); err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.ObservingProgram{
		ID:                    uuid.New().String(),
		PlanID:                plan.ID,
		SubmittedBy:           caller.UserID,
		CalibrationUnit:       in.CalibrationUnit,
		LightType:             in.LightType,
		FoldMirrorType:        in.FoldMirrorType,
		TelepositionDegree:    *in.TelepositionDegree,
		TelepositionDirection: in.TelepositionDirection,
		Status:                domain.StatusPendingReview,
		FramesPlanned:         telescope.EstimateFrames(plan),
		SubmittedAt:           now,
		UpdatedAt:             now,
	}
	switch err := s.programs.Submit(ctx, p); {
	case errors.Is(err, repository.ErrDuplicateProgram):
		return nil, ErrAlreadySubmitted
	case errors.Is(err, repository.ErrPlanNotValid):
		return nil, ErrPlanNotValidated
	case err != nil:
		return nil, fmt.Errorf("submit program: %w", err)
	}

	span.SetAttributes(attribute.String("program.id", p.ID), attribute.Int("program.frames_planned", p.FramesPlanned))
	s.announce(ctx, p, progress.EventSubmitted, "Observing program submitted for review.")
	s.log.WithFields(logrus.Fields{"program_id": p.ID, "plan_id": p.PlanID}).Info("observing program submitted")
	return p, nil
}

// Get returns a program visible to the caller. Astronomers only see programs they submitted.
func (s *Service) Get(ctx context.Context, caller rbac.Principal, id string) (*domain.ObservingProgram, error) {
	p, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProgramNotFound
	}
	if caller.Role == userdomain.RoleAstronomer && p.SubmittedBy != caller.UserID {
		return nil, rbac.ErrForbidden
	}
	return p, nil
}

// GetByPlan returns the program created from a plan.
func (s *Service) GetByPlan(ctx context.Context, caller rbac.Principal, planID string) (*domain.ObservingProgram, error) {
	p, err := s.programs.GetByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProgramNotFound
	}
	return s.Get(ctx, caller, p.ID)
}

// List returns programs in submission order. Astronomers only see their own.
func (s *Service) List(ctx context.Context, caller rbac.Principal, f repository.Filter) ([]*domain.ObservingProgram, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, validation.New([]string{"Invalid status filter."})
	}
	if caller.Role == userdomain.RoleAstronomer {
		f.SubmittedBy = caller.UserID
	}
	return s.programs.List(ctx, f)
}

// Approve accepts a program pending review.
func (s *Service) Approve(ctx context.Context, caller rbac.Principal, id, note string) (*domain.ObservingProgram, error) {
	return s.review(ctx, caller, id, domain.TransitionApprove, strings.TrimSpace(note))
}

// Reject declines a program pending review. A note explaining the decision is required.
func (s *Service) Reject(ctx context.Context, caller rbac.Principal, id, note string) (*domain.ObservingProgram, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, validation.New([]string{validation.Missing("note")})
	}
	return s.review(ctx, caller, id, domain.TransitionReject, note)
}

func (s *Service) review(ctx context.Context, caller rbac.Principal, id string, t domain.Transition, note string) (*domain.ObservingProgram, error) {
	ctx, span := tracer.Start(ctx, "program.Review")
	defer span.End()

	p, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	from := p.Status
	if err := p.Apply(t, s.now()); err != nil {
		return nil, err
	}
	p.ReviewedBy = caller.UserID
	p.ReviewNote = note
	ok, err := s.programs.Update(ctx, p, from)
	if err != nil {
		return nil, fmt.Errorf("update program: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	ev, msg := progress.EventApproved, "Observing program approved."
	if t == domain.TransitionReject {
		ev, msg = progress.EventRejected, "Observing program rejected: "+note
	}
	span.SetAttributes(attribute.String("program.status", string(p.Status)))
	s.announce(ctx, p, ev, msg)
	s.log.WithFields(logrus.Fields{"program_id": p.ID, "status": p.Status, "reviewer_id": caller.UserID}).Info("observing program reviewed")
	return p, nil
}

func (s *Service) announce(ctx context.Context, p *domain.ObservingProgram, t progress.EventType, msg string) {
	s.metrics.Transition(string(p.Status))
	if s.events != nil {
		s.events.Publish(ctx, progress.NewEvent(p, t, msg))
	}
}
