package ports

import (
	"context"

	"github.com/chatforge/console-api/internal/core/domain"
)

// ActivityRepository persists audit entries. Append-only: there is no
// update or delete.
type ActivityRepository interface {
	Insert(ctx context.Context, rec *domain.ActivityRecord) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.ActivityRecord, error)
}

// ActivityRecorder accepts audit entries for asynchronous, best-effort
// persistence. Record never blocks and never fails the caller: a write
// failure is observability lost, not a broken operation.
type ActivityRecorder interface {
	Record(rec *domain.ActivityRecord)
}
