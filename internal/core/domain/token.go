package domain

import "github.com/golang-jwt/jwt/v5"

// Token kinds carried in the token_type claim. Verification checks the
// discriminator explicitly, so an access token can never stand in for a
// refresh token or vice versa.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// TokenClaims is the claim set embedded in both token kinds. Subject holds
// the user id; ID (jti) holds the owning session id, which lets a rotated-out
// refresh token name the exact session it belonged to. Nonce is a random
// value minted per issuance: the registered claims alone carry only
// second-granularity timestamps, so without it two tokens for the same
// session issued within the same second would be byte-identical and rotation
// would swap a refresh token for itself.
type TokenClaims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	Nonce     string `json:"nonce"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *TokenClaims) UserID() string {
	return c.Subject
}

// SessionID returns the jti claim binding the token to its session.
func (c *TokenClaims) SessionID() string {
	return c.ID
}
