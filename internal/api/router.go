package api

import (
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/chatforge/console-api/docs"
	"github.com/chatforge/console-api/internal/api/handler"
	"github.com/chatforge/console-api/internal/api/middleware"
	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

// Deps carries everything the router wires together. Services arrive
// pre-built so the composition root (cmd/api) owns construction order.
type Deps struct {
	Auth     ports.AuthService
	Sessions ports.SessionService
	Users    ports.UserService
	DB       *sql.DB
	Redis    *redis.Client
	Log      zerolog.Logger

	// Metrics is the registry HTTP metrics register into and /metrics
	// serves from. Nil means the process-global default registry; tests
	// and embedders pass their own so two routers never collide on
	// collector registration.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	registerer := prometheus.Registerer(prometheus.DefaultRegisterer)
	gatherer := prometheus.Gatherer(prometheus.DefaultGatherer)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "console",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	sessionHandler := handler.NewSessionHandler(d.Sessions)
	userHandler := handler.NewUserHandler(d.Users)

	authn := middleware.Auth(d.Auth)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Profile routes ---
	profile := e.Group("/profile", authn)
	profile.GET("", userHandler.Profile)
	profile.PUT("/password", authHandler.ChangePassword)

	// --- Device management ---
	sessions := e.Group("/sessions", authn)
	sessions.GET("", sessionHandler.List)
	sessions.POST("/revoke-others", sessionHandler.RevokeOthers)
	sessions.DELETE("/:id", sessionHandler.Terminate)

	// --- Admin routes ---
	admin := e.Group("/admin", authn, adminOnly)
	admin.GET("/users/:id/sessions", sessionHandler.ListForUser)
	admin.DELETE("/users/:id/sessions", sessionHandler.TerminateAllForUser)
	admin.PATCH("/users/:id/status", userHandler.SetStatus)
	admin.GET("/users/:id/activity", userHandler.Activity)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.DB, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
