package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn          func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error)
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	refreshFn        func(ctx context.Context, token, ip, ua string) (*ports.TokenPair, error)
	logoutFn         func(ctx context.Context, token, ip, ua string) error
	changePasswordFn func(ctx context.Context, in ports.ChangePasswordInput) error
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Refresh(ctx context.Context, token, ip, ua string) (*ports.TokenPair, error) {
	return s.refreshFn(ctx, token, ip, ua)
}

func (s *stubAuthService) Logout(ctx context.Context, token, ip, ua string) error {
	return s.logoutFn(ctx, token, ip, ua)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	return s.changePasswordFn(ctx, in)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.Actor, error) {
	panic("not used")
}

func testResult(email string) *ports.AuthResult {
	return &ports.AuthResult{
		User: &domain.User{
			ID:     "user-1",
			Email:  email,
			Name:   "Alice",
			Role:   domain.RoleUser,
			Status: domain.StatusActive,
		},
		Tokens: ports.TokenPair{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresAt:    time.Now().Add(7 * 24 * time.Hour).UTC(),
		},
	}
}

func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Email != "alice@example.com" || in.Password != "Secret123!" || in.Name != "Alice" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return testResult(in.Email), nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"Secret123!","name":"Alice"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "access-token" || resp["refresh_token"] != "refresh-token" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}

	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash serialized to client")
	}
}

func TestAuthHandler_Register_ServiceError(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/register",
		`{"email":"bob@example.com","password":"x","name":"Bob"}`)

	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/register", "not-json")

	if err := h.Register(c); !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
			if in.Email != "alice@example.com" || in.Password != "Secret123!" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return testResult(in.Email), nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"Secret123!"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "access-token" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (*ports.AuthResult, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/login", "{")

	if err := h.Login(c); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, token, _, _ string) (*ports.TokenPair, error) {
			if token != "old-refresh" {
				t.Fatalf("unexpected token: %q", token)
			}
			return &ports.TokenPair{
				AccessToken:  "new-access",
				RefreshToken: "new-refresh",
				ExpiresAt:    time.Now().Add(7 * 24 * time.Hour),
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"old-refresh"}`)

	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "new-access" || resp["refresh_token"] != "new-refresh" {
		t.Fatalf("unexpected pair: %+v", resp)
	}
}

func TestAuthHandler_Logout_MissingHeader(t *testing.T) {
	stub := &stubAuthService{
		logoutFn: func(context.Context, string, string, string) error {
			t.Fatal("should not be called")
			return nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/logout", "")

	if err := h.Logout(c); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	var seen string
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, token, _, _ string) error {
			seen = token
			return nil
		},
	}
	h := NewAuthHandler(stub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer some-access-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen != "some-access-token" {
		t.Fatalf("service saw token %q", seen)
	}
}
