package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/chatforge/console-api/internal/core/domain"
)

func newUserMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func testUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newUserMock(t)
	u := testUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Status, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserMock(t)
	u := testUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Status, u.CreatedAt, u.UpdatedAt).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), u)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for 1062, got %v", err)
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo, mock := newUserMock(t)
	u := testUser()

	rows := sqlmock.NewRows([]string{
		"id", "email", "name", "password_hash", "role", "status",
		"last_login", "created_at", "updated_at",
	}).AddRow(u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Status, nil, u.CreatedAt, u.UpdatedAt)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != u.ID || got.LastLogin != nil {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUserRepository_FindByEmail_Miss(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_UpdatePassword_Miss(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("$2a$10$newhash", sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "ghost", "$2a$10$newhash")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_UpdateStatus(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectExec("UPDATE users SET status").
		WithArgs(domain.StatusSuspended, sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateStatus(context.Background(), "user-1", domain.StatusSuspended); err != nil {
		t.Fatalf("update status: %v", err)
	}
}
