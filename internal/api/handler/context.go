package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/chatforge/console-api/internal/api/middleware"
	"github.com/chatforge/console-api/internal/core/domain"
)

// ctxActor extracts the actor injected by the Auth middleware. A missing or
// incomplete actor means the middleware did not run on this route, which is
// a wiring bug surfaced as a 401 rather than a panic.
func ctxActor(c echo.Context) (*domain.Actor, error) {
	actor, _ := c.Get(middleware.ActorKey).(*domain.Actor)
	if actor == nil || actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return actor, nil
}

// clientInfo returns the request's origin address and user agent, recorded
// on sessions and activity entries.
func clientInfo(c echo.Context) (ip, userAgent string) {
	return c.RealIP(), c.Request().UserAgent()
}
