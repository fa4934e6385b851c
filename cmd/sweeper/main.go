// The sweeper marks active sessions past their refresh window as expired.
// It runs exterior to request handling, once at startup and then on a cron
// schedule, and coordinates across replicas with a Redis lock so only one
// instance sweeps at a time.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/chatforge/console-api/internal/core/ports"
	"github.com/chatforge/console-api/internal/core/service"
	"github.com/chatforge/console-api/internal/infrastructure/config"
	"github.com/chatforge/console-api/internal/infrastructure/db/mysql"
	"github.com/chatforge/console-api/internal/infrastructure/db/redis"
	"github.com/chatforge/console-api/internal/infrastructure/queue"
	"github.com/chatforge/console-api/pkg/logger"
)

const lockKey = "lock:session-sweep"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})

	db, err := mysql.Connect(ctx, cfg.MySQL.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	defer db.Close()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	dispatcher := queue.NewDispatcher(1, mysql.NewActivityRepository(db), log)
	dispatcher.Start(ctx)

	sessions := service.NewSessionService(mysql.NewSessionRepository(db), dispatcher, log)
	lock := redis.NewLock(rdb, lockKey)

	sweep := func() { runSweep(ctx, cfg, sessions, lock, log) }

	// One pass immediately so a freshly deployed sweeper does not wait a
	// full schedule interval.
	sweep()

	c := cron.New()
	if _, err := c.AddFunc(cfg.Sweep.Schedule, sweep); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Sweep.Schedule).Msg("invalid sweep schedule")
	}
	c.Start()
	log.Info().Str("schedule", cfg.Sweep.Schedule).Msg("session sweeper started")

	<-ctx.Done()
	<-c.Stop().Done()
	dispatcher.Wait()
	log.Info().Msg("session sweeper stopped")
}

// runSweep takes the cross-replica lock, cleans up, and releases. Losing
// the lock is not an error: another replica is already sweeping.
func runSweep(ctx context.Context, cfg *config.Config, sessions ports.SessionService, lock *redis.Lock, log zerolog.Logger) {
	acquired, err := lock.TryAcquire(ctx, cfg.Sweep.LockTTL)
	if err != nil {
		log.Error().Err(err).Msg("failed to acquire sweep lock")
		return
	}
	if !acquired {
		log.Debug().Msg("sweep lock held elsewhere, skipping pass")
		return
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to release sweep lock")
		}
	}()

	expired, err := sessions.Cleanup(ctx)
	if err != nil {
		log.Error().Err(err).Msg("session sweep failed")
		return
	}
	log.Info().Int64("expired", expired).Msg("session sweep completed")
}
