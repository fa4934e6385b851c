package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatforge/console-api/internal/core/domain"
)

type captureRepo struct {
	mu      sync.Mutex
	records []*domain.ActivityRecord
	done    chan struct{}
	want    int
}

func newCaptureRepo(want int) *captureRepo {
	return &captureRepo{done: make(chan struct{}), want: want}
}

func (r *captureRepo) Insert(_ context.Context, rec *domain.ActivityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if len(r.records) == r.want {
		close(r.done)
	}
	return nil
}

func (r *captureRepo) ListByUser(context.Context, string, int, int) ([]*domain.ActivityRecord, error) {
	return nil, nil
}

func TestDispatcher_PersistsRecords(t *testing.T) {
	repo := newCaptureRepo(3)
	d := NewDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, action := range []string{domain.ActionLogin, domain.ActionTokenRefresh, domain.ActionLogout} {
		d.Record(domain.NewActivityRecord("user-1", action, "10.0.0.1", "ua", nil))
	}

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("records not persisted in time")
	}
}

func TestDispatcher_PerUserOrder(t *testing.T) {
	const n = 50
	repo := newCaptureRepo(n)
	// One worker per shard still guarantees order because all of one user's
	// records land on the same shard.
	d := NewDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < n; i++ {
		rec := domain.NewActivityRecord("user-1", domain.ActionLogin, "10.0.0.1", "ua",
			map[string]any{"seq": i})
		d.Record(rec)
	}

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("records not persisted in time")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	for i, rec := range repo.records {
		if rec.Details["seq"] != i {
			t.Fatalf("record %d out of order: seq=%v", i, rec.Details["seq"])
		}
	}
}

func TestDispatcher_NilRecordIgnored(t *testing.T) {
	repo := newCaptureRepo(1)
	d := NewDispatcher(1, repo, zerolog.Nop())

	// Must not panic or enqueue anything.
	d.Record(nil)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.records) != 0 {
		t.Fatalf("expected no records, got %d", len(repo.records))
	}
}
