package ports

import (
	"time"

	"github.com/chatforge/console-api/internal/core/domain"
)

// TokenService mints and verifies signed, time-bounded tokens. Stateless:
// everything needed to verify is in the token plus the signing secret.
// Verification failures are sentinel errors (domain.ErrTokenExpired,
// domain.ErrTokenMalformed, domain.ErrWrongTokenKind), never panics.
type TokenService interface {
	IssueAccessToken(user *domain.User, sessionID string) (token string, expiresAt time.Time, err error)
	IssueRefreshToken(user *domain.User, sessionID string) (token string, expiresAt time.Time, err error)
	VerifyAccessToken(token string) (*domain.TokenClaims, error)
	VerifyRefreshToken(token string) (*domain.TokenClaims, error)
}
