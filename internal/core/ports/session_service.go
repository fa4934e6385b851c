package ports

import (
	"context"

	"github.com/chatforge/console-api/internal/core/domain"
)

// SessionService exposes the session registry to its owner and to admins.
type SessionService interface {
	// ListForUser returns the user's active sessions, newest first.
	ListForUser(ctx context.Context, userID string) ([]*domain.Session, error)

	// Terminate ends one session by id. The actor must own the session or
	// hold the admin role; otherwise ErrForbidden. Unknown ids return
	// ErrSessionNotFound.
	Terminate(ctx context.Context, actor *domain.Actor, sessionID string) error

	// RevokeOthers terminates every active session of the actor except the
	// one it is calling from, returning the number revoked.
	RevokeOthers(ctx context.Context, actor *domain.Actor) (int64, error)

	// TerminateAllForUser force-ends all of a user's sessions (admin).
	TerminateAllForUser(ctx context.Context, userID string) (int64, error)

	// Cleanup marks every active session past its expiry as expired and
	// returns the number of rows transitioned.
	Cleanup(ctx context.Context) (int64, error)
}
