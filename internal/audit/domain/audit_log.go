package domain

import "time"

// AuditLog records one mutating call: who did what to which resource.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID string    `db:"resource_id" json:"resource_id,omitempty"`
	IP         string    `db:"ip" json:"ip"`
	Metadata   string    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
