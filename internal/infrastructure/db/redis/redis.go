// Package redis owns the Redis side of the console: the shared client used
// by the readiness probe and the cross-replica lock the session sweeper
// coordinates through.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config carries the connection settings from the environment.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds the startup ping. Zero means pingTimeout.
	Timeout time.Duration
}

// Connect opens a client and proves connectivity with a ping before handing
// it out, so a bad address fails the process at startup rather than on the
// first sweep or readiness check.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = pingTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
