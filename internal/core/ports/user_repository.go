package ports

import (
	"context"
	"time"

	"github.com/chatforge/console-api/internal/core/domain"
)

// UserRepository defines user persistence. Lookups return
// domain.ErrUserNotFound on miss; Create maps a storage-level duplicate
// email to domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateStatus(ctx context.Context, id, status string) error
}
