package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"gemini-observatory/backend/internal/audit/domain"
)

const auditColumns = `id, user_id, action, resource, resource_id, ip, metadata, created_at`

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	var a domain.AuditLog
	if err := r.db.GetContext(ctx, &a, `SELECT `+auditColumns+` FROM audit_logs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// List returns audit logs matching f, newest first, paginated by limit and offset.
func (r *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*domain.AuditLog, error) {
	var where []string
	var args []any
	for _, c := range []struct{ col, val string }{
		{"user_id", f.UserID}, {"action", f.Action}, {"resource", f.Resource},
	} {
		if c.val != "" {
			where = append(where, c.col+" = ?")
			args = append(args, c.val)
		}
	}
	q := `SELECT ` + auditColumns + ` FROM audit_logs`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []*domain.AuditLog
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO audit_logs (`+auditColumns+`)
		VALUES (:id, :user_id, :action, :resource, :resource_id, :ip, :metadata, :created_at)`, a)
	return err
}
