// Package domain defines the observation data captured while a program executes.
package domain

import (
	"fmt"
	"time"
)

// Observation is one captured frame. The bytes live in object storage under ObjectKey.
type Observation struct {
	ID          string    `db:"id" json:"id"`
	ProgramID   string    `db:"program_id" json:"program_id"`
	Sequence    int       `db:"sequence" json:"sequence"`
	ObjectKey   string    `db:"object_key" json:"object_key"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	Checksum    string    `db:"checksum" json:"checksum"`
	CapturedAt  time.Time `db:"captured_at" json:"captured_at"`
}

// ObjectKey is the storage key of frame seq of a program.
func ObjectKey(programID string, seq int, ext string) string {
	return fmt.Sprintf("programs/%s/frame-%04d.%s", programID, seq, ext)
}
