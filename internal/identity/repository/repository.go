package repository

import (
	"context"

	"gemini-observatory/backend/internal/identity/domain"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

// Repository defines persistence for password identities.
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Identity, error)
	// CreateAccount stores a new user and its password identity together; neither is kept if either write fails.
	// A taken username yields userrepo.ErrDuplicateUsername.
	CreateAccount(ctx context.Context, u *userdomain.User, i *domain.Identity) error
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}
