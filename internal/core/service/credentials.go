package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

// dummyHash keeps a lookup miss as expensive as a real mismatch: the compare
// below runs against it whenever the email is unknown.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("console-api timing pad"), bcrypt.DefaultCost)

type credentialStore struct {
	users ports.UserRepository
}

// NewCredentialStore returns a CredentialStore backed by the user repository.
func NewCredentialStore(users ports.UserRepository) ports.CredentialStore {
	return &credentialStore{users: users}
}

func (s *credentialStore) CreateUser(ctx context.Context, email, password, name string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		Name:         name,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *credentialStore) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *credentialStore) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func (s *credentialStore) UpdateLastLogin(ctx context.Context, userID string) error {
	return s.users.UpdateLastLogin(ctx, userID, time.Now().UTC())
}

func (s *credentialStore) UpdateStatus(ctx context.Context, userID, status string) error {
	return s.users.UpdateStatus(ctx, userID, status)
}

func (s *credentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, normalizeEmail(email))
}

func (s *credentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
