package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/chatforge/console-api/internal/core/domain"
)

func newSessionMock(t *testing.T) (*SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepository(db), mock
}

func sessionRows(s *domain.Session) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "access_token", "refresh_token", "ip_address",
		"user_agent", "status", "expires_at", "created_at", "updated_at",
	}).AddRow(s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.IPAddress,
		s.UserAgent, s.Status, s.ExpiresAt, s.CreatedAt, s.UpdatedAt)
}

func testSession() *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{
		ID:           "sess-1",
		UserID:       "user-1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		IPAddress:    "10.0.0.1",
		UserAgent:    "console-test",
		Status:       domain.SessionActive,
		ExpiresAt:    now.Add(7 * 24 * time.Hour),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSessionRepository_Create(t *testing.T) {
	repo, mock := newSessionMock(t)
	s := testSession()

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.IPAddress,
			s.UserAgent, s.Status, s.ExpiresAt, s.CreatedAt, s.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSessionRepository_FindByRefreshToken(t *testing.T) {
	repo, mock := newSessionMock(t)
	s := testSession()

	mock.ExpectQuery("SELECT (.+) FROM sessions WHERE refresh_token").
		WithArgs("refresh-1").
		WillReturnRows(sessionRows(s))

	got, err := repo.FindByRefreshToken(context.Background(), "refresh-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.ID != "sess-1" || got.UserID != "user-1" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestSessionRepository_FindByRefreshToken_Miss(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectQuery("SELECT (.+) FROM sessions WHERE refresh_token").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.FindByRefreshToken(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil on miss, got %+v", got)
	}
}

func TestSessionRepository_Rotate_Wins(t *testing.T) {
	repo, mock := newSessionMock(t)
	expires := time.Now().UTC().Add(7 * 24 * time.Hour)

	mock.ExpectExec("UPDATE sessions SET access_token").
		WithArgs("access-2", "refresh-2", expires, sqlmock.AnyArg(),
			"sess-1", "refresh-1", domain.SessionActive).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Rotate(context.Background(), "sess-1", "refresh-1", "access-2", "refresh-2", expires)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if !ok {
		t.Fatal("expected rotation to win")
	}
}

func TestSessionRepository_Rotate_LosesRace(t *testing.T) {
	repo, mock := newSessionMock(t)
	expires := time.Now().UTC().Add(7 * 24 * time.Hour)

	// The guard token no longer matches the row: zero rows updated.
	mock.ExpectExec("UPDATE sessions SET access_token").
		WithArgs("access-3", "refresh-3", expires, sqlmock.AnyArg(),
			"sess-1", "refresh-stale", domain.SessionActive).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Rotate(context.Background(), "sess-1", "refresh-stale", "access-3", "refresh-3", expires)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if ok {
		t.Fatal("stale guard token must lose the rotation")
	}
}

func TestSessionRepository_Terminate_OnlyMovesActive(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectExec("UPDATE sessions SET status").
		WithArgs(domain.SessionTerminated, sqlmock.AnyArg(), "sess-1", domain.SessionActive).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Zero rows affected (already terminated) is still a success.
	if err := repo.Terminate(context.Background(), "sess-1"); err != nil {
		t.Fatalf("terminate must be idempotent: %v", err)
	}
}

func TestSessionRepository_TerminateAllExcept(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectExec("UPDATE sessions SET status").
		WithArgs(domain.SessionTerminated, sqlmock.AnyArg(), "user-1", domain.SessionActive, "sess-keep").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.TerminateAllExcept(context.Background(), "user-1", "sess-keep")
	if err != nil {
		t.Fatalf("terminate all except: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 terminated, got %d", n)
	}
}

func TestSessionRepository_TerminateAllForUser(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectExec("UPDATE sessions SET status").
		WithArgs(domain.SessionTerminated, sqlmock.AnyArg(), "user-1", domain.SessionActive).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.TerminateAllForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("terminate all: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 terminated, got %d", n)
	}
}

func TestSessionRepository_CleanupExpired(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectExec("UPDATE sessions SET status").
		WithArgs(domain.SessionExpired, sqlmock.AnyArg(), domain.SessionActive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := repo.CleanupExpired(context.Background())
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 expired, got %d", n)
	}
}

func TestSessionRepository_FindActiveByUser(t *testing.T) {
	repo, mock := newSessionMock(t)
	s := testSession()

	mock.ExpectQuery("SELECT (.+) FROM sessions WHERE user_id").
		WithArgs("user-1", domain.SessionActive).
		WillReturnRows(sessionRows(s))

	sessions, err := repo.FindActiveByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "sess-1" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}
