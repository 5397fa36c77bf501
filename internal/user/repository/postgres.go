package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"gemini-observatory/backend/internal/user/domain"
)

const userColumns = `id, username, display_name, role, status, created_at, updated_at`

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername returns the user with the given username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	if err := r.db.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	var users []*domain.User
	var err error
	if role == "" {
		err = r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY username`)
	} else {
		err = r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY username`, role)
	}
	return users, err
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (:id, :username, :display_name, :role, :status, :created_at, :updated_at)`, u)
	return err
}

// Update writes display name, role, status and updated_at. Username is immutable.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.NamedExecContext(ctx, `UPDATE users
		SET display_name = :display_name, role = :role, status = :status, updated_at = :updated_at
		WHERE id = :id`, u)
	return err
}
