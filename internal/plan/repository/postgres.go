package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"gemini-observatory/backend/internal/plan/domain"
)

const planSelect = `SELECT p.id, p.owner_id, p.creator, p.submitter, p.funding, p.objective,
	p.star_system_id, s.name AS star_system_name, p.schedule_start, p.schedule_end,
	p.telescope_location, p.file_type, p.file_quality, p.image_mode,
	p.exposure, p.contrast, p.brightness, p.saturation, p.status, p.created_at, p.updated_at
	FROM science_plans p JOIN star_systems s ON s.id = p.star_system_id`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.SciencePlan, error) {
	var p domain.SciencePlan
	if err := r.db.GetContext(ctx, &p, planSelect+` WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// List returns plans newest first.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*domain.SciencePlan, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, "p.status = ?")
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where = append(where, "p.owner_id = ?")
	}
	query := planSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	var out []*domain.SciencePlan
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}

func (r *PostgresRepository) Create(ctx context.Context, p *domain.SciencePlan) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO science_plans (id, owner_id, creator, submitter, funding, objective,
		star_system_id, schedule_start, schedule_end, telescope_location, file_type, file_quality, image_mode,
		exposure, contrast, brightness, saturation, status, created_at, updated_at)
		VALUES (:id, :owner_id, :creator, :submitter, :funding, :objective,
		:star_system_id, :schedule_start, :schedule_end, :telescope_location, :file_type, :file_quality, :image_mode,
		:exposure, :contrast, :brightness, :saturation, :status, :created_at, :updated_at)`, p)
	return err
}

// Update rewrites the editable content and status. Owner and created_at are immutable.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.SciencePlan) (bool, error) {
	res, err := r.db.NamedExecContext(ctx, `UPDATE science_plans SET
		creator = :creator, submitter = :submitter, funding = :funding, objective = :objective,
		star_system_id = :star_system_id, schedule_start = :schedule_start, schedule_end = :schedule_end,
		telescope_location = :telescope_location, file_type = :file_type, file_quality = :file_quality,
		image_mode = :image_mode, exposure = :exposure, contrast = :contrast, brightness = :brightness,
		saturation = :saturation, status = :status, updated_at = :updated_at
		WHERE id = :id AND status <> 'SUBMITTED'`, p)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, from []domain.Status, to domain.Status, at time.Time) (bool, error) {
	query, args, err := sqlx.In(`UPDATE science_plans SET status = ?, updated_at = ? WHERE id = ? AND status IN (?)`, to, at, id, from)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM science_plans WHERE id = $1 AND status <> 'SUBMITTED'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostgresRepository) AddResult(ctx context.Context, v *domain.ValidationResult) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO validation_results (id, plan_id, mode, is_valid, messages, validator_id, created_at)
		VALUES (:id, :plan_id, :mode, :is_valid, :messages, :validator_id, :created_at)`, v)
	return err
}

// ListResults returns the plan's validation history, newest first.
func (r *PostgresRepository) ListResults(ctx context.Context, planID string) ([]*domain.ValidationResult, error) {
	var out []*domain.ValidationResult
	err := r.db.SelectContext(ctx, &out, `SELECT id, plan_id, mode, is_valid, messages, validator_id, created_at
		FROM validation_results WHERE plan_id = $1 ORDER BY created_at DESC`, planID)
	return out, err
}
