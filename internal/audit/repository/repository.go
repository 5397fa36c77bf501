package repository

import (
	"context"

	"gemini-observatory/backend/internal/audit/domain"
)

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	UserID   string
	Action   string
	Resource string
}

// Repository defines persistence for audit logs.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AuditLog, error)
	// List returns entries newest first.
	List(ctx context.Context, f Filter, limit, offset int) ([]*domain.AuditLog, error)
	Create(ctx context.Context, a *domain.AuditLog) error
}
