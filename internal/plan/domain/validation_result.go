package domain

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// ValidationMode distinguishes an astronomer's dry run from a science observer's official check.
type ValidationMode string

const (
	ModeSimulation ValidationMode = "simulation"
	ModeOfficial   ValidationMode = "official"
)

// Messages is a list of validator messages stored as a JSON array.
type Messages []string

func (m Messages) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(m))
}

func (m *Messages) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Messages{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("messages: unsupported column type")
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// ValidationResult is one recorded run of the virtual telescope against a plan.
type ValidationResult struct {
	ID          string         `db:"id" json:"id"`
	PlanID      string         `db:"plan_id" json:"plan_id"`
	Mode        ValidationMode `db:"mode" json:"mode"`
	IsValid     bool           `db:"is_valid" json:"is_valid"`
	Messages    Messages       `db:"messages" json:"messages"`
	ValidatorID string         `db:"validator_id" json:"validator_id"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
