package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

// stubAuthService only implements Authenticate; the other transactions are
// never reached from the middleware.
type stubAuthService struct {
	actor *domain.Actor
	err   error
	seen  string
}

func (s *stubAuthService) Authenticate(_ context.Context, token string) (*domain.Actor, error) {
	s.seen = token
	if s.err != nil {
		return nil, s.err
	}
	return s.actor, nil
}

func (s *stubAuthService) Login(context.Context, ports.LoginInput) (*ports.AuthResult, error) {
	panic("not used")
}

func (s *stubAuthService) Register(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
	panic("not used")
}

func (s *stubAuthService) Refresh(context.Context, string, string, string) (*ports.TokenPair, error) {
	panic("not used")
}

func (s *stubAuthService) Logout(context.Context, string, string, string) error {
	panic("not used")
}

func (s *stubAuthService) ChangePassword(context.Context, ports.ChangePasswordInput) error {
	panic("not used")
}

func newAuthContext(header string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestAuth_ValidToken(t *testing.T) {
	stub := &stubAuthService{actor: &domain.Actor{
		UserID:    "user-1",
		Email:     "alice@example.com",
		Role:      domain.RoleUser,
		SessionID: "sess-1",
	}}

	c := newAuthContext("Bearer the-token")

	called := false
	handler := Auth(stub)(func(c echo.Context) error {
		called = true
		actor, _ := c.Get(ActorKey).(*domain.Actor)
		if actor == nil {
			t.Fatal("actor not set in context")
		}
		if actor.UserID != "user-1" || actor.SessionID != "sess-1" {
			t.Fatalf("unexpected actor: %+v", actor)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("next not called")
	}
	if stub.seen != "the-token" {
		t.Fatalf("service saw token %q", stub.seen)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	stub := &stubAuthService{}
	c := newAuthContext("")

	err := Auth(stub)(func(echo.Context) error {
		t.Fatal("next should not run")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	for _, header := range []string{"the-token", "Basic abc", "Bearer "} {
		stub := &stubAuthService{}
		c := newAuthContext(header)

		err := Auth(stub)(func(echo.Context) error { return nil })(c)
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("header %q: expected ErrUnauthorized, got %v", header, err)
		}
	}
}

func TestAuth_ServiceRejects(t *testing.T) {
	stub := &stubAuthService{err: domain.ErrTokenExpired}
	c := newAuthContext("Bearer stale")

	err := Auth(stub)(func(echo.Context) error {
		t.Fatal("next should not run")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
