package repository

import (
	"context"
	"time"

	"gemini-observatory/backend/internal/session/domain"
)

// Repository defines persistence for sessions. Revoked sessions are removed, so GetByID returns nil for them.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllSessionsByUser(ctx context.Context, userID string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
}
