package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"gemini-observatory/backend/internal/db"
	"gemini-observatory/backend/internal/program/domain"
)

const programColumns = `id, plan_id, submitted_by, calibration_unit, light_type, fold_mirror_type,
	teleposition_degree, teleposition_direction, status, reviewed_by, review_note, operator_id,
	execution_mode, frames_planned, frames_captured, submitted_at, reviewed_at, started_at,
	completed_at, updated_at`

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Submit(ctx context.Context, p *domain.ObservingProgram) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE science_plans SET status = 'SUBMITTED', updated_at = $2
			WHERE id = $1 AND status = 'VALID'`, p.PlanID, p.SubmittedAt)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n != 1 {
			return ErrPlanNotValid
		}
		_, err = tx.NamedExecContext(ctx, `INSERT INTO observing_programs (`+programColumns+`)
			VALUES (:id, :plan_id, :submitted_by, :calibration_unit, :light_type, :fold_mirror_type,
			:teleposition_degree, :teleposition_direction, :status, :reviewed_by, :review_note, :operator_id,
			:execution_mode, :frames_planned, :frames_captured, :submitted_at, :reviewed_at, :started_at,
			:completed_at, :updated_at)`, p)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateProgram
		}
		return err
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.ObservingProgram, error) {
	return r.getOne(ctx, `SELECT `+programColumns+` FROM observing_programs WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByPlan(ctx context.Context, planID string) (*domain.ObservingProgram, error) {
	return r.getOne(ctx, `SELECT `+programColumns+` FROM observing_programs WHERE plan_id = $1`, planID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.ObservingProgram, error) {
	var p domain.ObservingProgram
	if err := r.db.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*domain.ObservingProgram, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.SubmittedBy != "" {
		where = append(where, "submitted_by = ?")
		args = append(args, f.SubmittedBy)
	}
	query := `SELECT ` + programColumns + ` FROM observing_programs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY submitted_at, id"

	var out []*domain.ObservingProgram
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}

func (r *PostgresRepository) Update(ctx context.Context, p *domain.ObservingProgram, from domain.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE observing_programs SET
		status = $3, reviewed_by = $4, review_note = $5, operator_id = $6, execution_mode = $7,
		frames_captured = $8, reviewed_at = $9, started_at = $10, completed_at = $11, updated_at = $12
		WHERE id = $1 AND status = $2`,
		p.ID, from, p.Status, p.ReviewedBy, p.ReviewNote, p.OperatorID, p.ExecutionMode,
		p.FramesCaptured, p.ReviewedAt, p.StartedAt, p.CompletedAt, p.UpdatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
