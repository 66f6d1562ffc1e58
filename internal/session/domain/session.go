package domain

import "time"

// Session binds a refresh token to a user and its expiry. Sessions are never
// mutated after creation: they are deleted on logout or replaced by login.
// Only the SHA-256 hash of the refresh token is stored.
type Session struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	RefreshTokenHash string    `db:"refresh_token_hash"`
	DeviceInfo       string    `db:"device_info"`
	IPAddress        string    `db:"ip_address"`
	UserAgent        string    `db:"user_agent"`
	ExpiresAt        time.Time `db:"expires_at"`
	CreatedAt        time.Time `db:"created_at"`
}

// Active reports whether the session is still valid at the given instant.
func (s *Session) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
