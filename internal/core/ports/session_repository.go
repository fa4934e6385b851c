package ports

import (
	"context"
	"time"

	"github.com/chatforge/console-api/internal/core/domain"
)

// SessionRepository is the durable session registry. Point lookups return
// (nil, nil) on miss, never an error; mutations report storage failure,
// which callers treat as fatal for the enclosing operation.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByAccessToken(ctx context.Context, token string) (*domain.Session, error)
	FindByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	FindActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error)

	// Rotate swaps in a fresh token pair and expiry, guarded by the refresh
	// token the caller presented: it reports false when the row no longer
	// holds prevRefreshToken (another writer rotated first), in which case
	// the caller must fail closed.
	Rotate(ctx context.Context, id, prevRefreshToken, accessToken, refreshToken string, expiresAt time.Time) (bool, error)

	// Terminate and Expire are idempotent and only move active sessions
	// forward; terminated/expired rows are left untouched.
	Terminate(ctx context.Context, id string) error
	Expire(ctx context.Context, id string) error

	// TerminateAllExcept bulk-terminates a user's active sessions, sparing
	// exceptID when non-empty. Returns the number of sessions affected.
	TerminateAllExcept(ctx context.Context, userID, exceptID string) (int64, error)
	TerminateAllForUser(ctx context.Context, userID string) (int64, error)

	// CleanupExpired transitions every active-but-past-expiry session to
	// expired. Idempotent and safe to run concurrently.
	CleanupExpired(ctx context.Context) (int64, error)
}
