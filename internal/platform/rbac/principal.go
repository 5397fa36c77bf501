package rbac

import (
	"context"

	userdomain "gemini-observatory/backend/internal/user/domain"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    string
	Role      userdomain.Role
	SessionID string
}

// IsAdmin reports whether the caller holds the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == userdomain.RoleAdministrator
}

type contextKey struct{ name string }

var principalKey = contextKey{"principal"}

// WithPrincipal returns a context carrying p. Set by the auth middleware.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal from ctx and true if the request was authenticated.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.UserID != ""
}
