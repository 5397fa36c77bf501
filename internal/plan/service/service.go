// Package service implements science plan authoring (UC-01) and virtual telescope validation (UC-02).
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"gemini-observatory/backend/internal/metrics"
	"gemini-observatory/backend/internal/plan/domain"
	"gemini-observatory/backend/internal/plan/repository"
	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/platform/validation"
	stardomain "gemini-observatory/backend/internal/starsystem/domain"
	starservice "gemini-observatory/backend/internal/starsystem/service"
	"gemini-observatory/backend/internal/telescope"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

var tracer = otel.Tracer("gemini-observatory/backend/internal/plan")

var (
	ErrPlanNotFound = errors.New("science plan not found")
	// ErrPlanLocked is returned for changes to a plan that has been submitted as an observing program.
	ErrPlanLocked = errors.New("science plan has been submitted and can no longer be changed")
)

// StarCatalog resolves plan targets. Unknown systems yield starservice.ErrStarSystemNotFound.
type StarCatalog interface {
	GetByName(ctx context.Context, name string) (*stardomain.StarSystem, error)
	GetByID(ctx context.Context, id int) (*stardomain.StarSystem, error)
}

// VirtualTelescope runs dry runs and official checks against a plan.
type VirtualTelescope interface {
	Simulate(p *domain.SciencePlan, star *stardomain.StarSystem) telescope.SimulationReport
	Validate(p *domain.SciencePlan, star *stardomain.StarSystem) (bool, []string)
}

// SimulationOutcome is a dry run and the history row recorded for it.
type SimulationOutcome struct {
	Plan   *domain.SciencePlan        `json:"plan"`
	Report telescope.SimulationReport `json:"report"`
	Result *domain.ValidationResult   `json:"result"`
}

// ValidationOutcome is an official validation and the plan status it produced.
type ValidationOutcome struct {
	Plan   *domain.SciencePlan      `json:"plan"`
	Result *domain.ValidationResult `json:"result"`
}

type Service struct {
	plans   repository.Repository
	stars   StarCatalog
	scope   VirtualTelescope
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewService(plans repository.Repository, stars StarCatalog, scope VirtualTelescope, m *metrics.Metrics, log logrus.FieldLogger) *Service {
	return &Service{
		plans:   plans,
		stars:   stars,
		scope:   scope,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the draft and stores it as a DRAFT plan owned by the caller.
// Nothing is stored when any field is missing or invalid.
func (s *Service) Create(ctx context.Context, caller rbac.Principal, d domain.Draft) (*domain.SciencePlan, error) {
	ctx, span := tracer.Start(ctx, "plan.Create")
	defer span.End()

	star, err := s.checkDraft(ctx, &d)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := &domain.SciencePlan{
		ID:        uuid.New().String(),
		OwnerID:   caller.UserID,
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.ApplyTo(p)
	p.StarSystemID, p.StarSystemName = star.ID, star.Name
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	span.SetAttributes(attribute.String("plan.id", p.ID))
	s.metrics.PlanEvent("created")
	s.log.WithFields(logrus.Fields{"plan_id": p.ID, "owner_id": p.OwnerID}).Info("science plan created")
	return p, nil
}

// Get returns a plan visible to the caller. Astronomers only see their own plans.
func (s *Service) Get(ctx context.Context, caller rbac.Principal, id string) (*domain.SciencePlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlanNotFound
	}
	if caller.Role == userdomain.RoleAstronomer && p.OwnerID != caller.UserID {
		return nil, rbac.ErrForbidden
	}
	return p, nil
}

// List returns plans newest first. Astronomers are limited to their own plans.
func (s *Service) List(ctx context.Context, caller rbac.Principal, f repository.Filter) ([]*domain.SciencePlan, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, validation.New([]string{"Invalid status filter."})
	}
	if caller.Role == userdomain.RoleAstronomer {
		f.OwnerID = caller.UserID
	}
	return s.plans.List(ctx, f)
}

// Update replaces the plan content. The plan returns to DRAFT and must be validated again.
func (s *Service) Update(ctx context.Context, caller rbac.Principal, id string, d domain.Draft) (*domain.SciencePlan, error) {
	ctx, span := tracer.Start(ctx, "plan.Update")
	defer span.End()

	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !p.Editable() {
		return nil, ErrPlanLocked
	}
	star, err := s.checkDraft(ctx, &d)
	if err != nil {
		return nil, err
	}
	d.ApplyTo(p)
	p.StarSystemID, p.StarSystemName = star.ID, star.Name
	p.Status = domain.StatusDraft
	p.UpdatedAt = s.now()
	changed, err := s.plans.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	if !changed {
		return nil, ErrPlanLocked
	}
	s.metrics.PlanEvent("updated")
	return p, nil
}

// Delete removes a plan that has not been submitted.
func (s *Service) Delete(ctx context.Context, caller rbac.Principal, id string) error {
	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if !p.Editable() {
		return ErrPlanLocked
	}
	removed, err := s.plans.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if !removed {
		return ErrPlanLocked
	}
	s.metrics.PlanEvent("deleted")
	s.log.WithField("plan_id", id).Info("science plan deleted")
	return nil
}

// Simulate runs the virtual telescope dry run and records it. Plan status is unchanged.
func (s *Service) Simulate(ctx context.Context, caller rbac.Principal, id string) (*SimulationOutcome, error) {
	ctx, span := tracer.Start(ctx, "plan.Simulate")
	defer span.End()

	p, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	star, err := s.targetOf(ctx, p)
	if err != nil {
		return nil, err
	}
	report := s.scope.Simulate(p, star)
	res, err := s.record(ctx, caller, p, domain.ModeSimulation, report.Feasible, report.All())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("plan.feasible", report.Feasible))
	return &SimulationOutcome{Plan: p, Report: report, Result: res}, nil
}

// Validate runs the official check, records it and sets the plan VALID or INVALID.
func (s *Service) Validate(ctx context.Context, caller rbac.Principal, id string) (*ValidationOutcome, error) {
	ctx, span := tracer.Start(ctx, "plan.Validate")
	defer span.End()

	p, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !p.Editable() {
		return nil, ErrPlanLocked
	}
	star, err := s.targetOf(ctx, p)
	if err != nil {
		return nil, err
	}
	ok, messages := s.scope.Validate(p, star)
	status := domain.StatusInvalid
	if ok {
		status = domain.StatusValid
	}
	now := s.now()
	changed, err := s.plans.SetStatus(ctx, p.ID,
		[]domain.Status{domain.StatusDraft, domain.StatusValid, domain.StatusInvalid}, status, now)
	if err != nil {
		return nil, fmt.Errorf("set plan status: %w", err)
	}
	if !changed {
		return nil, ErrPlanLocked
	}
	p.Status, p.UpdatedAt = status, now

	res, err := s.record(ctx, caller, p, domain.ModeOfficial, ok, messages)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("plan.status", string(status)))
	s.log.WithFields(logrus.Fields{"plan_id": p.ID, "status": status, "validator_id": caller.UserID}).Info("science plan validated")
	return &ValidationOutcome{Plan: p, Result: res}, nil
}

// Results lists the plan's validation history, newest first.
func (s *Service) Results(ctx context.Context, caller rbac.Principal, id string) ([]*domain.ValidationResult, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.plans.ListResults(ctx, id)
}

func (s *Service) owned(ctx context.Context, caller rbac.Principal, id string) (*domain.SciencePlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlanNotFound
	}
	if err := rbac.RequireOwnerOrAdmin(caller, p.OwnerID); err != nil {
		return nil, err
	}
	return p, nil
}

// checkDraft collects field problems and resolves the target star system.
func (s *Service) checkDraft(ctx context.Context, d *domain.Draft) (*stardomain.StarSystem, error) {
	d.Normalize()
	problems := d.Problems()

	var star *stardomain.StarSystem
	var ref string
	var err error
	switch {
	case d.StarSystemID != nil:
		ref = strconv.Itoa(*d.StarSystemID)
		star, err = s.stars.GetByID(ctx, *d.StarSystemID)
	case d.StarSystem != "":
		ref = d.StarSystem
		star, err = s.stars.GetByName(ctx, d.StarSystem)
	}
	if err != nil && !errors.Is(err, starservice.ErrStarSystemNotFound) {
		return nil, fmt.Errorf("resolve star system: %w", err)
	}
	if ref != "" && star == nil {
		problems = append(problems, fmt.Sprintf("Star system '%s' not found. Please select a valid option.", ref))
	}
	if err := validation.New(problems); err != nil {
		return nil, err
	}
	return star, nil
}

func (s *Service) targetOf(ctx context.Context, p *domain.SciencePlan) (*stardomain.StarSystem, error) {
	star, err := s.stars.GetByID(ctx, p.StarSystemID)
	if err != nil && !errors.Is(err, starservice.ErrStarSystemNotFound) {
		return nil, fmt.Errorf("resolve star system: %w", err)
	}
	return star, nil
}

func (s *Service) record(ctx context.Context, caller rbac.Principal, p *domain.SciencePlan, mode domain.ValidationMode, ok bool, messages []string) (*domain.ValidationResult, error) {
	res := &domain.ValidationResult{
		ID:          uuid.New().String(),
		PlanID:      p.ID,
		Mode:        mode,
		IsValid:     ok,
		Messages:    messages,
		ValidatorID: caller.UserID,
		CreatedAt:   s.now(),
	}
	if err := s.plans.AddResult(ctx, res); err != nil {
		return nil, fmt.Errorf("record validation: %w", err)
	}
	s.metrics.Validation(string(mode), ok)
	return res, nil
}
