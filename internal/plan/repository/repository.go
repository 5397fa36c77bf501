package repository

import (
	"context"
	"time"

	"gemini-observatory/backend/internal/plan/domain"
)

// Filter narrows a plan listing. Zero values match everything.
type Filter struct {
	Status  domain.Status
	OwnerID string
}

// Repository persists science plans and their validation history.
// Lookups of missing plans return nil, nil.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.SciencePlan, error)
	List(ctx context.Context, f Filter) ([]*domain.SciencePlan, error)
	Create(ctx context.Context, p *domain.SciencePlan) error
	// Update rewrites the plan unless it has been submitted. Reports whether a row changed.
	Update(ctx context.Context, p *domain.SciencePlan) (bool, error)
	// SetStatus moves the plan to status only if its current status is one of from. Reports whether it changed.
	SetStatus(ctx context.Context, id string, from []domain.Status, to domain.Status, at time.Time) (bool, error)
	// Delete removes the plan unless it has been submitted. Reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	AddResult(ctx context.Context, r *domain.ValidationResult) error
	ListResults(ctx context.Context, planID string) ([]*domain.ValidationResult, error)
}
