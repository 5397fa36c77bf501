package repository

import (
	"context"
	"errors"

	"gemini-observatory/backend/internal/observation/domain"
)

// ErrDuplicateFrame is returned when a frame with the same program and sequence already exists.
var ErrDuplicateFrame = errors.New("frame already recorded")

// Repository persists observation metadata. Lookups of missing rows return nil, nil.
type Repository interface {
	Create(ctx context.Context, o *domain.Observation) error
	GetByID(ctx context.Context, id string) (*domain.Observation, error)
	GetBySequence(ctx context.Context, programID string, sequence int) (*domain.Observation, error)
	// ListByProgram returns frames in sequence order.
	ListByProgram(ctx context.Context, programID string) ([]*domain.Observation, error)
}
