// Package rbac decides which roles may perform which actions, using an OPA Rego policy.
package rbac

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	userdomain "gemini-observatory/backend/internal/user/domain"
)

//go:embed policy.rego
var policyModule string

const allowQuery = "data.gemini.authz.allow"

// ErrForbidden is returned when the caller's role or ownership does not permit an operation.
var ErrForbidden = errors.New("forbidden")

// Authorizer answers whether a role may perform an action.
type Authorizer interface {
	Allow(ctx context.Context, role userdomain.Role, action Action) (bool, error)
}

// OPAAuthorizer evaluates the embedded Rego policy. The query is prepared once and is safe for concurrent use.
type OPAAuthorizer struct {
	query rego.PreparedEvalQuery
}

// NewOPAAuthorizer compiles the embedded policy.
func NewOPAAuthorizer(ctx context.Context) (*OPAAuthorizer, error) {
	return newOPAAuthorizer(ctx, policyModule)
}

func newOPAAuthorizer(ctx context.Context, module string) (*OPAAuthorizer, error) {
	pq, err := rego.New(
		rego.Query(allowQuery),
		rego.Module("policy.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile authz policy: %w", err)
	}
	return &OPAAuthorizer{query: pq}, nil
}

// Allow evaluates the policy for role and action. An undefined result is a denial.
func (a *OPAAuthorizer) Allow(ctx context.Context, role userdomain.Role, action Action) (bool, error) {
	rs, err := a.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"role":   string(role),
		"action": string(action),
	}))
	if err != nil {
		return false, fmt.Errorf("eval authz policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	return ok && allowed, nil
}

// HealthCheck evaluates a known grant so readiness fails if the engine cannot answer.
func (a *OPAAuthorizer) HealthCheck(ctx context.Context) error {
	ok, err := a.Allow(ctx, userdomain.RoleAdministrator, ActionUserManage)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("authz policy denied administrator")
	}
	return nil
}

// RequireOwnerOrAdmin returns ErrForbidden unless p owns the resource or is an administrator.
func RequireOwnerOrAdmin(p Principal, ownerID string) error {
	if p.IsAdmin() || (p.UserID != "" && p.UserID == ownerID) {
		return nil
	}
	return ErrForbidden
}
