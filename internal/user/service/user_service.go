package service

import (
	"context"
	"errors"
	"time"

	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/user/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfLockout is returned when an administrator tries to demote or disable their own account.
	ErrSelfLockout = errors.New("administrators cannot demote or disable themselves")
)

// UserRepo is the minimal user repository needed by the user service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, role domain.Role) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// SessionRevoker revokes sessions of a disabled user.
type SessionRevoker interface {
	RevokeAllSessionsByUser(ctx context.Context, userID string) error
}

// UserService reads and administers user accounts.
type UserService struct {
	users    UserRepo
	sessions SessionRevoker
}

func NewUserService(users UserRepo, sessions SessionRevoker) *UserService {
	return &UserService{users: users, sessions: sessions}
}

// Get returns the user or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// List returns users, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if role != "" && !role.Valid() {
		return nil, domain.ErrUnknownRole
	}
	return s.users.List(ctx, role)
}

// SetRole changes a user's role. The new role is carried by tokens from the user's next refresh.
func (s *UserService) SetRole(ctx context.Context, caller rbac.Principal, id string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrUnknownRole
	}
	if caller.UserID == id && role != domain.RoleAdministrator {
		return nil, ErrSelfLockout
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetStatus enables or disables a user. Disabling revokes every session of the user.
func (s *UserService) SetStatus(ctx context.Context, caller rbac.Principal, id string, status domain.UserStatus) (*domain.User, error) {
	if status != domain.UserStatusActive && status != domain.UserStatusDisabled {
		return nil, domain.ErrInvalidStatus
	}
	if caller.UserID == id && status == domain.UserStatusDisabled {
		return nil, ErrSelfLockout
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	if status == domain.UserStatusDisabled && s.sessions != nil {
		if err := s.sessions.RevokeAllSessionsByUser(ctx, id); err != nil {
			return nil, err
		}
	}
	return u, nil
}
