package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"gemini-observatory/backend/internal/db"
	"gemini-observatory/backend/internal/identity/domain"
	userdomain "gemini-observatory/backend/internal/user/domain"
	userrepo "gemini-observatory/backend/internal/user/repository"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns an identity repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUserID returns the identity for userID, or nil if not found.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*domain.Identity, error) {
	var i domain.Identity
	err := r.db.GetContext(ctx, &i, `SELECT user_id, password_hash, created_at, updated_at FROM identities WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

func (r *PostgresRepository) CreateAccount(ctx context.Context, u *userdomain.User, i *domain.Identity) error {
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO users (id, username, display_name, role, status, created_at, updated_at)
			VALUES (:id, :username, :display_name, :role, :status, :created_at, :updated_at)`, u); err != nil {
			return err
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO identities (user_id, password_hash, created_at, updated_at)
			VALUES (:user_id, :password_hash, :created_at, :updated_at)`, i)
		return err
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.TableName == "users" {
		return userrepo.ErrDuplicateUsername
	}
	return err
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE identities SET password_hash = $2, updated_at = $3 WHERE user_id = $1`,
		userID, passwordHash, time.Now().UTC())
	return err
}
