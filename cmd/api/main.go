package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatforge/console-api/internal/api"
	"github.com/chatforge/console-api/internal/core/service"
	"github.com/chatforge/console-api/internal/infrastructure/config"
	"github.com/chatforge/console-api/internal/infrastructure/db/mysql"
	"github.com/chatforge/console-api/internal/infrastructure/db/redis"
	"github.com/chatforge/console-api/internal/infrastructure/queue"
	"github.com/chatforge/console-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

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

	// --- Storage ---
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

	// --- Repositories ---
	userRepo := mysql.NewUserRepository(db)
	sessionRepo := mysql.NewSessionRepository(db)
	activityRepo := mysql.NewActivityRepository(db)

	// --- Async activity log ---
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, activityRepo, log)
	dispatcher.Start(ctx)

	// --- Services ---
	creds := service.NewCredentialStore(userRepo)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	auth := service.NewAuthService(creds, tokens, sessionRepo, dispatcher, log)
	sessions := service.NewSessionService(sessionRepo, dispatcher, log)
	users := service.NewUserService(creds, sessionRepo, activityRepo, dispatcher, log)

	e := api.NewRouter(api.Deps{
		Auth:     auth,
		Sessions: sessions,
		Users:    users,
		DB:       db,
		Redis:    rdb,
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("console api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	dispatcher.Wait()
}
