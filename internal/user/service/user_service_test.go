package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-observatory/backend/internal/platform/rbac"
	sessiondomain "gemini-observatory/backend/internal/session/domain"
	sessionrepo "gemini-observatory/backend/internal/session/repository"
	"gemini-observatory/backend/internal/user/domain"
	userrepo "gemini-observatory/backend/internal/user/repository"
)

func seed(t *testing.T) (*UserService, *sessionrepo.MemoryRepository) {
	t.Helper()
	ctx := context.Background()
	users := userrepo.NewMemoryRepository()
	sessions := sessionrepo.NewMemoryRepository()
	now := time.Now().UTC()
	for _, u := range []*domain.User{
		{ID: "admin", Username: "admin", Role: domain.RoleAdministrator, Status: domain.UserStatusActive},
		{ID: "u1", Username: "vera", Role: domain.RoleAstronomer, Status: domain.UserStatusActive},
		{ID: "u2", Username: "annie", Role: domain.RoleTelescopeOperator, Status: domain.UserStatusActive},
	} {
		u.CreatedAt, u.UpdatedAt = now, now
		require.NoError(t, users.Create(ctx, u))
	}
	require.NoError(t, sessions.Create(ctx, &sessiondomain.Session{ID: "s1", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))
	return NewUserService(users, sessions), sessions
}

func TestUserService_List(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ops, err := svc.List(ctx, domain.RoleTelescopeOperator)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "annie", ops[0].Username)

	_, err = svc.List(ctx, "pilot")
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestUserService_SetRole(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()
	admin := rbac.Principal{UserID: "admin", Role: domain.RoleAdministrator}

	u, err := svc.SetRole(ctx, admin, "u1", domain.RoleScienceObserver)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleScienceObserver, u.Role)

	_, err = svc.SetRole(ctx, admin, "admin", domain.RoleAstronomer)
	assert.ErrorIs(t, err, ErrSelfLockout)

	_, err = svc.SetRole(ctx, admin, "missing", domain.RoleAstronomer)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.SetRole(ctx, admin, "u1", "pilot")
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestUserService_DisableRevokesSessions(t *testing.T) {
	svc, sessions := seed(t)
	ctx := context.Background()
	admin := rbac.Principal{UserID: "admin", Role: domain.RoleAdministrator}

	u, err := svc.SetStatus(ctx, admin, "u1", domain.UserStatusDisabled)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusDisabled, u.Status)

	s, err := sessions.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, s, "sessions of a disabled user are revoked")

	_, err = svc.SetStatus(ctx, admin, "admin", domain.UserStatusDisabled)
	assert.ErrorIs(t, err, ErrSelfLockout)

	_, err = svc.SetStatus(ctx, admin, "u1", "archived")
	assert.Error(t, err)
}
