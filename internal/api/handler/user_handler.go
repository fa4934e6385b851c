package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

// UserHandler covers the profile read side and the admin account surface.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

type profileResponse struct {
	User *domain.User `json:"user"`
}

type statusChangeResponse struct {
	User       *domain.User `json:"user"`
	Terminated int64        `json:"terminated"`
}

type activityListResponse struct {
	Activity []*domain.ActivityRecord `json:"activity"`
}

// Profile returns the caller's current account state, re-read from storage
// rather than echoed from the token.
//
// @Summary      Get the caller's profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Router       /profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	user, err := h.users.Profile(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{User: user})
}

// SetStatus changes an account's lifecycle status (admin). Leaving active
// also terminates every session the account holds.
//
// @Summary      Change a user's account status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User id"
// @Param        body  body      setStatusRequest  true  "The new status"
// @Success      200   {object}  statusChangeResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/users/{id}/status [patch]
func (h *UserHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID := c.Param("id")
	terminated, err := h.users.SetStatus(c.Request().Context(), userID, req.Status)
	if err != nil {
		return err
	}

	user, err := h.users.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusChangeResponse{User: user, Terminated: terminated})
}

// Activity lists a user's security audit trail, newest first (admin).
//
// @Summary      List a user's activity log
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "User id"
// @Param        limit   query     int     false  "Page size (default 50, max 200)"
// @Param        offset  query     int     false  "Page offset"
// @Success      200     {object}  activityListResponse
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /admin/users/{id}/activity [get]
func (h *UserHandler) Activity(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	records, err := h.users.Activity(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*domain.ActivityRecord{}
	}
	return c.JSON(http.StatusOK, activityListResponse{Activity: records})
}
