package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conventional activity actions. The column is free-form; these constants
// cover everything the auth core emits.
const (
	ActionLogin           = "login"
	ActionRegister        = "register"
	ActionLogout          = "logout"
	ActionTokenRefresh    = "token_refresh"
	ActionPasswordChange  = "password_change"
	ActionSessionsRevoked = "sessions_revoked"
	ActionStatusChange    = "status_change"
)

// ActivityRecord is one append-only security audit entry. Records are never
// updated or deleted by the auth core, and they carry no foreign key so they
// outlive accounts removed by external admin tooling.
type ActivityRecord struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	IPAddress string         `json:"ip_address"`
	UserAgent string         `json:"user_agent"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewActivityRecord builds a record with a fresh id and timestamp.
func NewActivityRecord(userID, action, ip, userAgent string, details map[string]any) *ActivityRecord {
	return &ActivityRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		IPAddress: ip,
		UserAgent: userAgent,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
}
