package repository

import (
	"context"

	"gemini-observatory/backend/internal/starsystem/domain"
)

// Repository defines persistence for the star-system catalogue.
type Repository interface {
	List(ctx context.Context) ([]*domain.StarSystem, error)
	GetByID(ctx context.Context, id int) (*domain.StarSystem, error)
	GetByName(ctx context.Context, name string) (*domain.StarSystem, error)
	Count(ctx context.Context) (int, error)
	// InsertMany adds systems in order; IDs are assigned by storage.
	InsertMany(ctx context.Context, systems []domain.StarSystem) error
}
