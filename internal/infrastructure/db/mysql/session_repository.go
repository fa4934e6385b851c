package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

const sessionColumns = "id, user_id, access_token, refresh_token, ip_address, user_agent, status, expires_at, created_at, updated_at"

// SessionRepository implements ports.SessionRepository over the sessions
// table. Every status mutation is guarded by status = 'active' so the
// forward-only lifecycle holds at the storage layer too.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, access_token, refresh_token, ip_address, user_agent, status, expires_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.IPAddress, s.UserAgent, s.Status, s.ExpiresAt, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByAccessToken(ctx context.Context, token string) (*domain.Session, error) {
	return r.findOne(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE access_token = ? LIMIT 1", token)
}

func (r *SessionRepository) FindByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	return r.findOne(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE refresh_token = ? LIMIT 1", token)
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	return r.findOne(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ? LIMIT 1", id)
}

// findOne returns (nil, nil) on miss: an unknown token is an expected
// outcome, not a storage failure.
func (r *SessionRepository) findOne(ctx context.Context, query string, arg any) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.IPAddress, &s.UserAgent,
		&s.Status, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) FindActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE user_id = ? AND status = ? ORDER BY created_at DESC",
		userID, domain.SessionActive)
	if err != nil {
		return nil, fmt.Errorf("select active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.IPAddress, &s.UserAgent,
			&s.Status, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Rotate is a compare-and-swap on the refresh token: the UPDATE only lands
// when the row still holds prevRefreshToken and is active, so of two
// concurrent refreshes exactly one wins and the other sees false.
func (r *SessionRepository) Rotate(ctx context.Context, id, prevRefreshToken, accessToken, refreshToken string, expiresAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = ? WHERE id = ? AND refresh_token = ? AND status = ?",
		accessToken, refreshToken, expiresAt, time.Now().UTC(), id, prevRefreshToken, domain.SessionActive)
	if err != nil {
		return false, fmt.Errorf("rotate session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rotate session: rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *SessionRepository) Terminate(ctx context.Context, id string) error {
	return r.transition(ctx, id, domain.SessionTerminated)
}

func (r *SessionRepository) Expire(ctx context.Context, id string) error {
	return r.transition(ctx, id, domain.SessionExpired)
}

// transition is idempotent: rows already terminated or expired are left
// untouched and no error is raised.
func (r *SessionRepository) transition(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		status, time.Now().UTC(), id, domain.SessionActive)
	if err != nil {
		return fmt.Errorf("transition session to %s: %w", status, err)
	}
	return nil
}

func (r *SessionRepository) TerminateAllExcept(ctx context.Context, userID, exceptID string) (int64, error) {
	query := "UPDATE sessions SET status = ?, updated_at = ? WHERE user_id = ? AND status = ?"
	args := []any{domain.SessionTerminated, time.Now().UTC(), userID, domain.SessionActive}
	if exceptID != "" {
		query += " AND id <> ?"
		args = append(args, exceptID)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("terminate sessions: %w", err)
	}
	return res.RowsAffected()
}

func (r *SessionRepository) TerminateAllForUser(ctx context.Context, userID string) (int64, error) {
	return r.TerminateAllExcept(ctx, userID, "")
}

// CleanupExpired is a pure function of the current clock and therefore safe
// to run concurrently from several sweeper replicas.
func (r *SessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET status = ?, updated_at = ? WHERE status = ? AND expires_at <= ?",
		domain.SessionExpired, time.Now().UTC(), domain.SessionActive, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return res.RowsAffected()
}
