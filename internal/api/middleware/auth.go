package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

// ActorKey is the echo context key the Auth middleware stores the
// authenticated actor under.
const ActorKey = "actor"

// Auth extracts the bearer access token, resolves it through the auth
// service (signature, expiry, and a live session row all required), and
// injects the resulting actor into the request context.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return domain.ErrUnauthorized
			}

			actor, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(ActorKey, actor)
			return next(c)
		}
	}
}

// bearerToken pulls the token out of the Authorization header. The second
// return is false when the header is missing or not a bearer scheme.
func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// BearerToken exposes the header parsing for handlers that consume the raw
// token themselves (logout terminates the session the token belongs to).
func BearerToken(c echo.Context) (string, bool) {
	return bearerToken(c)
}
