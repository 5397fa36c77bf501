package repository

import (
	"context"
	"sync"
	"time"

	"gemini-observatory/backend/internal/identity/domain"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

// UserCreator is the user store accounts are created in.
type UserCreator interface {
	Create(ctx context.Context, u *userdomain.User) error
}

// MemoryRepository keeps identities in process memory next to an in-memory user store.
type MemoryRepository struct {
	mu    sync.RWMutex
	users UserCreator
	byUID map[string]domain.Identity
}

func NewMemoryRepository(users UserCreator) *MemoryRepository {
	return &MemoryRepository{users: users, byUID: make(map[string]domain.Identity)}
}

func (r *MemoryRepository) GetByUserID(_ context.Context, userID string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byUID[userID]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (r *MemoryRepository) CreateAccount(ctx context.Context, u *userdomain.User, i *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.users.Create(ctx, u); err != nil {
		return err
	}
	r.byUID[i.UserID] = *i
	return nil
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byUID[userID]
	if !ok {
		return nil
	}
	i.PasswordHash = passwordHash
	i.UpdatedAt = time.Now().UTC()
	r.byUID[userID] = i
	return nil
}
