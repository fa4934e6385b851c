package domain

import "time"

// Session lifecycle states. Transitions are forward-only: active sessions
// become terminated (explicit revocation) or expired (time-based); both are
// terminal and never reactivated.
const (
	SessionActive     = "active"
	SessionTerminated = "terminated"
	SessionExpired    = "expired"
)

// Session is the durable record of one logical login (device), binding a
// user to its current token pair. Token strings are stored verbatim so an
// inbound bearer token resolves by exact string match; they are never
// serialized to clients.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Expired reports whether the session's refresh window has passed. The row's
// expires_at is the binding authority, regardless of any expiry embedded in
// the refresh token itself.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
