package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chatforge/console-api/internal/api/middleware"
	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

// AuthHandler translates the auth transactions to and from HTTP.
type AuthHandler struct {
	auth ports.AuthService
}

func NewAuthHandler(auth ports.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// --- Request / Response types ---

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type authResponse struct {
	User         *domain.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

type tokenResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an account and opens its first session.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrMissingFields
	}

	ip, userAgent := clientInfo(c)
	result, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		IP:        ip,
		UserAgent: userAgent,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newAuthResponse(result))
}

// Login authenticates credentials and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrMissingCredentials
	}

	ip, userAgent := clientInfo(c)
	result, err := h.auth.Login(c.Request().Context(), ports.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        ip,
		UserAgent: userAgent,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newAuthResponse(result))
}

// Refresh exchanges a refresh token for a new token pair.
//
// @Summary      Rotate a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "The refresh token"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrMissingToken
	}

	ip, userAgent := clientInfo(c)
	pair, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken, ip, userAgent)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

// Logout terminates the session the bearer token belongs to. Logging out a
// token that grants nothing already is still a success.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return domain.ErrMissingToken
	}

	ip, userAgent := clientInfo(c)
	if err := h.auth.Logout(c.Request().Context(), token, ip, userAgent); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// ChangePassword verifies the current password, sets the new one, and
// revokes the caller's other sessions.
//
// @Summary      Change the caller's password
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /profile/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrMissingFields
	}

	ip, userAgent := clientInfo(c)
	err = h.auth.ChangePassword(c.Request().Context(), ports.ChangePasswordInput{
		UserID:          actor.UserID,
		SessionID:       actor.SessionID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		IP:              ip,
		UserAgent:       userAgent,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password changed"})
}

func newAuthResponse(result *ports.AuthResult) authResponse {
	return authResponse{
		User:         result.User,
		Token:        result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresAt:    result.Tokens.ExpiresAt,
	}
}
