package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

// ActivityRepository implements ports.ActivityRepository over the
// activity_log table. Append-only: the only statements it issues are INSERT
// and SELECT.
type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

func (r *ActivityRepository) Insert(ctx context.Context, rec *domain.ActivityRecord) error {
	var details any
	if rec.Details != nil {
		raw, err := json.Marshal(rec.Details)
		if err != nil {
			return fmt.Errorf("marshal activity details: %w", err)
		}
		details = raw
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO activity_log (id, user_id, action, ip_address, user_agent, details, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.UserID, rec.Action, rec.IPAddress, rec.UserAgent, details, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity record: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.ActivityRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, action, ip_address, user_agent, details, created_at FROM activity_log WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select activity records: %w", err)
	}
	defer rows.Close()

	var records []*domain.ActivityRecord
	for rows.Next() {
		var (
			rec     domain.ActivityRecord
			details sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Action, &rec.IPAddress, &rec.UserAgent, &details, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity record: %w", err)
		}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &rec.Details); err != nil {
				return nil, fmt.Errorf("unmarshal activity details: %w", err)
			}
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity records: %w", err)
	}
	return records, nil
}
