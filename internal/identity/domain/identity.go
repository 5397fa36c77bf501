package domain

import "time"

// Identity holds the local password credential of a user.
type Identity struct {
	UserID       string    `db:"user_id"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
