package domain

import "time"

// Session is a logged-in user. It lives until ExpiresAt (the refresh token lifetime) or until revoked.
type Session struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Role             string     `json:"role"`
	ExpiresAt        time.Time  `json:"expires_at"`
	LastSeenAt       *time.Time `json:"last_seen_at,omitempty"`
	IPAddress        string     `json:"ip_address,omitempty"`
	RefreshJti       string     `json:"refresh_jti"`        // current refresh token jti for rotation
	RefreshTokenHash string     `json:"refresh_token_hash"` // SHA-256 of the current refresh token
	CreatedAt        time.Time  `json:"created_at"`
}

// Expired reports whether the session has passed its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
