package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

const timeFormat = time.RFC3339

// SessionHandler exposes the device-management surface: a user's own
// sessions plus the admin equivalents.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionResponse struct {
	ID        string `json:"id"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
	Current   bool   `json:"current,omitempty"`
}

type sessionListResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type terminatedResponse struct {
	Terminated int64 `json:"terminated"`
}

// List returns the caller's active sessions, flagging the one the request
// came in on.
//
// @Summary      List the caller's active sessions
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionListResponse
// @Failure      401  {object}  map[string]string
// @Router       /sessions [get]
func (h *SessionHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	sessions, err := h.sessions.ListForUser(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newSessionList(sessions, actor.SessionID))
}

// Terminate ends one session by id: the caller's own, or anyone's for an
// admin.
//
// @Summary      Terminate a session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /sessions/{id} [delete]
func (h *SessionHandler) Terminate(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Terminate(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "session terminated"})
}

// RevokeOthers logs the caller out everywhere else.
//
// @Summary      Terminate all of the caller's other sessions
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  terminatedResponse
// @Failure      401  {object}  map[string]string
// @Router       /sessions/revoke-others [post]
func (h *SessionHandler) RevokeOthers(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	revoked, err := h.sessions.RevokeOthers(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, terminatedResponse{Terminated: revoked})
}

// ListForUser returns any user's active sessions (admin).
//
// @Summary      List a user's active sessions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  sessionListResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/users/{id}/sessions [get]
func (h *SessionHandler) ListForUser(c echo.Context) error {
	sessions, err := h.sessions.ListForUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionList(sessions, ""))
}

// TerminateAllForUser force-logs a user out of every device (admin).
//
// @Summary      Terminate all of a user's sessions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  terminatedResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/users/{id}/sessions [delete]
func (h *SessionHandler) TerminateAllForUser(c echo.Context) error {
	terminated, err := h.sessions.TerminateAllForUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, terminatedResponse{Terminated: terminated})
}

func newSessionList(sessions []*domain.Session, currentID string) sessionListResponse {
	out := sessionListResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		out.Sessions = append(out.Sessions, sessionResponse{
			ID:        s.ID,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			ExpiresAt: s.ExpiresAt.UTC().Format(timeFormat),
			CreatedAt: s.CreatedAt.UTC().Format(timeFormat),
			Current:   currentID != "" && s.ID == currentID,
		})
	}
	return out
}
