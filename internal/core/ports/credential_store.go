package ports

import (
	"context"

	"github.com/chatforge/console-api/internal/core/domain"
)

// CredentialStore authenticates email/password pairs against stored users
// without ever exposing the hash, and owns all password hashing.
type CredentialStore interface {
	// CreateUser hashes the password and persists a new account with
	// role "user" and status "active".
	CreateUser(ctx context.Context, email, password, name string) (*domain.User, error)

	// VerifyCredentials returns the user when the pair matches. Unknown
	// email and wrong password are indistinguishable: both return
	// domain.ErrInvalidCredentials, and a miss still burns a hash
	// comparison so response timing stays uniform.
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)

	UpdatePassword(ctx context.Context, userID, newPassword string) error
	UpdateLastLogin(ctx context.Context, userID string) error
	UpdateStatus(ctx context.Context, userID, status string) error

	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
