package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/chatforge/console-api/internal/core/domain"
)

// RequireRole gates a route behind the single access-policy check. It must
// run after Auth, which puts the actor into the context.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, _ := c.Get(ActorKey).(*domain.Actor)
			if actor == nil {
				return domain.ErrUnauthorized
			}
			if !domain.CanAccess(actor, actor.UserID, role) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
