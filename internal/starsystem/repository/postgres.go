package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"gemini-observatory/backend/internal/db"
	"gemini-observatory/backend/internal/starsystem/domain"
)

const starColumns = `id, name, meaning, area_sq_deg, quadrant, latitude_max, latitude_min`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.StarSystem, error) {
	var out []*domain.StarSystem
	err := r.db.SelectContext(ctx, &out, `SELECT `+starColumns+` FROM star_systems ORDER BY name`)
	return out, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*domain.StarSystem, error) {
	return r.getOne(ctx, `SELECT `+starColumns+` FROM star_systems WHERE id = $1`, id)
}

// GetByName matches case-insensitively, so "ursa major" finds "Ursa Major".
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.StarSystem, error) {
	return r.getOne(ctx, `SELECT `+starColumns+` FROM star_systems WHERE lower(name) = lower($1)`, name)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.StarSystem, error) {
	var s domain.StarSystem
	if err := r.db.GetContext(ctx, &s, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM star_systems`)
	return n, err
}

func (r *PostgresRepository) InsertMany(ctx context.Context, systems []domain.StarSystem) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range systems {
			_, err := tx.NamedExecContext(ctx, `INSERT INTO star_systems (name, meaning, area_sq_deg, quadrant, latitude_max, latitude_min)
				VALUES (:name, :meaning, :area_sq_deg, :quadrant, :latitude_max, :latitude_min)
				ON CONFLICT (name) DO NOTHING`, &systems[i])
			if err != nil {
				return err
			}
		}
		return nil
	})
}
