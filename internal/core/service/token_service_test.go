package service

import (
	"errors"
	"testing"
	"time"

	"github.com/chatforge/console-api/internal/core/domain"
)

func tokenTestUser() *domain.User {
	return &domain.User{
		ID:    "user-1",
		Email: "alice@example.com",
		Role:  domain.RoleUser,
	}
}

func TestTokenService_IssueIsUniquePerCall(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, 24*time.Hour)
	user := tokenTestUser()

	// Back-to-back issuance lands within the same second, where the
	// registered timestamp claims cannot tell the two tokens apart.
	first, _, err := svc.IssueRefreshToken(user, "session-1")
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	second, _, err := svc.IssueRefreshToken(user, "session-1")
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}
	if first == second {
		t.Fatal("two issuances for the same session must never produce the same token")
	}

	// Both still verify and name the same session and user.
	for _, token := range []string{first, second} {
		claims, err := svc.VerifyRefreshToken(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.UserID() != "user-1" || claims.SessionID() != "session-1" {
			t.Fatalf("claims lost identity: user=%q session=%q", claims.UserID(), claims.SessionID())
		}
	}
}

func TestTokenService_AccessAndRefreshDiffer(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, 24*time.Hour)

	access, _, err := svc.IssueAccessToken(tokenTestUser(), "session-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	if _, err := svc.VerifyRefreshToken(access); !errors.Is(err, domain.ErrWrongTokenKind) {
		t.Fatalf("access token as refresh: expected ErrWrongTokenKind, got %v", err)
	}
}

func TestTokenService_ZeroTTLFallsBackToDefault(t *testing.T) {
	svc := NewTokenService("test-secret", 0, 0)

	_, accessExp, err := svc.IssueAccessToken(tokenTestUser(), "session-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if got := time.Until(accessExp); got < 23*time.Hour || got > 25*time.Hour {
		t.Fatalf("expected the 24h default access TTL, got %v", got)
	}

	_, refreshExp, err := svc.IssueRefreshToken(tokenTestUser(), "session-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if got := time.Until(refreshExp); got < 167*time.Hour || got > 169*time.Hour {
		t.Fatalf("expected the 7-day default refresh TTL, got %v", got)
	}
}

func TestTokenService_NegativeTTLMintsExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute, -time.Minute)

	token, _, err := svc.IssueAccessToken(tokenTestUser(), "session-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if _, err := svc.VerifyAccessToken(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
