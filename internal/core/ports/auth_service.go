package ports

import (
	"context"
	"time"

	"github.com/chatforge/console-api/internal/core/domain"
)

// LoginInput carries everything a login attempt needs, including the
// client address recorded on the session and in the activity log.
type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// RegisterInput is LoginInput plus the display name required at signup.
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	IP        string
	UserAgent string
}

// ChangePasswordInput identifies the authenticated caller and its current
// session, which survives the policy sweep of the user's other sessions.
type ChangePasswordInput struct {
	UserID          string
	SessionID       string
	CurrentPassword string
	NewPassword     string
	IP              string
	UserAgent       string
}

// TokenPair is one access/refresh issuance. ExpiresAt is the session's
// refresh window; the access token carries its own shorter expiry.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	User   *domain.User
	Tokens TokenPair
}

// AuthService coordinates the credential store, token service, session
// registry, and activity log into the auth transactions. Every failure is
// one of the domain sentinel errors.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken, ip, userAgent string) error
	ChangePassword(ctx context.Context, in ChangePasswordInput) error

	// Authenticate resolves a bearer access token to its actor: the token
	// must verify and its session row must still be active.
	Authenticate(ctx context.Context, accessToken string) (*domain.Actor, error)
}
