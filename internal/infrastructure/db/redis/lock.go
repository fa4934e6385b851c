package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lock is a TTL-bounded distributed lock used to coordinate the session
// sweeper across replicas. Acquisition is SET NX; release checks the owner
// token so one replica cannot drop a lock another replica re-acquired after
// the TTL lapsed.
type Lock struct {
	client *redis.Client
	key    string
	owner  string
}

// NewLock returns a lock on the given key. Each Lock value carries its own
// owner token.
func NewLock(client *redis.Client, key string) *Lock {
	return &Lock{
		client: client,
		key:    key,
		owner:  uuid.NewString(),
	}
}

// TryAcquire attempts to take the lock for ttl. It returns false without
// error when another holder has it.
func (l *Lock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	return ok, nil
}

// Release drops the lock if this instance still owns it. A lock that
// expired or changed hands is left alone.
func (l *Lock) Release(ctx context.Context) error {
	current, err := l.client.Get(ctx, l.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	if current != l.owner {
		return nil
	}
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}
