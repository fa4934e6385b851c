package ports

import (
	"context"

	"github.com/chatforge/console-api/internal/core/domain"
)

// UserService covers the read-side profile surface and the admin
// operations that act on accounts rather than sessions.
type UserService interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)

	// SetStatus changes an account's lifecycle status. Suspending or
	// deactivating also terminates the user's active sessions; the count of
	// sessions ended is returned.
	SetStatus(ctx context.Context, userID, status string) (int64, error)

	// Activity returns the user's activity log, newest first.
	Activity(ctx context.Context, userID string, limit, offset int) ([]*domain.ActivityRecord, error)
}
