package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
	"github.com/chatforge/console-api/internal/obs"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher persists activity records asynchronously through a fixed set
// of workers, sharded by user id so each user's audit trail keeps its append
// order. Record never blocks and never fails the caller: when a shard's
// buffer is full the entry is dropped and counted, because audit writes are
// observability, not correctness.
type Dispatcher struct {
	workers []chan *domain.ActivityRecord
	repo    ports.ActivityRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.ActivityRecorder = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan *domain.ActivityRecord, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.ActivityRecord, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their channels until
// ctx is cancelled; Wait blocks until they finish.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues an activity entry on the worker owning its user id.
// A full shard drops the record rather than stall the request.
func (d *Dispatcher) Record(rec *domain.ActivityRecord) {
	if rec == nil {
		return
	}

	idx := d.shardIndex(rec.UserID)
	select {
	case d.workers[idx] <- rec:
		obs.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		obs.ActivityDroppedTotal.Inc()
		d.log.Warn().
			Str("user_id", rec.UserID).
			Str("action", rec.Action).
			Int("worker_id", idx).
			Msg("activity record dropped: worker queue full")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.ActivityRecord) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-ch:
			if !ok {
				return
			}
			d.persist(ctx, id, rec)
			obs.ActivityQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, workerID int, rec *domain.ActivityRecord) {
	insertCtx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	if err := d.repo.Insert(insertCtx, rec); err != nil {
		d.log.Error().Err(err).
			Str("user_id", rec.UserID).
			Str("action", rec.Action).
			Int("worker_id", workerID).
			Msg("activity record insert failed")
	}
}
