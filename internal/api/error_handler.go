package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chatforge/console-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to a stable {code, message} pair and status.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"code": "...", "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, msg := resolveError(err, log, c)
		_ = c.JSON(status, errorResponse{Code: code, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusBadRequest, "ERR_MISSING_CREDENTIALS", "email and password are required"
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, "ERR_MISSING_FIELDS", "missing required fields"
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusBadRequest, "ERR_MISSING_TOKEN", "token is required"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "ERR_VALIDATION", "invalid account status"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "ERR_INVALID_CREDENTIALS", "invalid email or password"
	case errors.Is(err, domain.ErrInvalidPassword):
		return http.StatusUnauthorized, "ERR_INVALID_PASSWORD", "current password is incorrect"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "ERR_TOKEN_EXPIRED", "token expired"
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrWrongTokenKind):
		return http.StatusUnauthorized, "ERR_INVALID_TOKEN", "invalid token"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusUnauthorized, "ERR_USER_INACTIVE", "user is not active"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "ERR_UNAUTHORIZED", "authentication required"
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusForbidden, "ERR_ACCOUNT_INACTIVE", "account is not active"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "ERR_FORBIDDEN", "access forbidden"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "ERR_USER_NOT_FOUND", "user not found"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "ERR_SESSION_NOT_FOUND", "session not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "ERR_USER_EXISTS", "user already exists"
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			return he.Code, "ERR_NOT_FOUND", "resource not found"
		case http.StatusMethodNotAllowed:
			return he.Code, "ERR_METHOD_NOT_ALLOWED", "method not allowed"
		case http.StatusUnauthorized:
			return he.Code, "ERR_UNAUTHORIZED", fmt.Sprintf("%v", he.Message)
		case http.StatusBadRequest:
			return he.Code, "ERR_VALIDATION", fmt.Sprintf("%v", he.Message)
		}
		return he.Code, "ERR_SERVER", fmt.Sprintf("%v", he.Message)
	}

	// Unexpected error: log the real cause, return an opaque message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "ERR_SERVER", "internal server error"
}
