package domain

import "errors"

// Sentinel errors for the auth core. The HTTP layer resolves each to a
// stable {code, message} envelope; anything outside this set renders as an
// opaque server error.
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrMissingFields      = errors.New("missing required fields")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrWrongTokenKind     = errors.New("wrong token kind")
	ErrUserInactive       = errors.New("user inactive")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidStatus      = errors.New("invalid account status")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrSessionNotFound    = errors.New("session not found")
)
