package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"gemini-observatory/backend/internal/observation/domain"
)

const observationColumns = `id, program_id, sequence, object_key, content_type, size_bytes, checksum, captured_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o *domain.Observation) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO observations (`+observationColumns+`)
		VALUES (:id, :program_id, :sequence, :object_key, :content_type, :size_bytes, :checksum, :captured_at)`, o)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateFrame
	}
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Observation, error) {
	var o domain.Observation
	if err := r.db.GetContext(ctx, &o, `SELECT `+observationColumns+` FROM observations WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PostgresRepository) GetBySequence(ctx context.Context, programID string, sequence int) (*domain.Observation, error) {
	var o domain.Observation
	err := r.db.GetContext(ctx, &o, `SELECT `+observationColumns+` FROM observations
		WHERE program_id = $1 AND sequence = $2`, programID, sequence)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PostgresRepository) ListByProgram(ctx context.Context, programID string) ([]*domain.Observation, error) {
	var out []*domain.Observation
	err := r.db.SelectContext(ctx, &out, `SELECT `+observationColumns+` FROM observations
		WHERE program_id = $1 ORDER BY sequence`, programID)
	return out, err
}
