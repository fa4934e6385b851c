package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
)

const (
	defaultAccessTTL  = 24 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

type tokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService returns a TokenService signing HS256 tokens with secret.
// Zero TTLs fall back to the defaults (24h access, 7 days refresh); negative
// TTLs are honored as-is so already-expired tokens can be minted.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) ports.TokenService {
	if accessTTL == 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL == 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &tokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *tokenService) IssueAccessToken(user *domain.User, sessionID string) (string, time.Time, error) {
	return s.issue(user, sessionID, domain.TokenKindAccess, s.accessTTL)
}

func (s *tokenService) IssueRefreshToken(user *domain.User, sessionID string) (string, time.Time, error) {
	return s.issue(user, sessionID, domain.TokenKindRefresh, s.refreshTTL)
}

func (s *tokenService) issue(user *domain.User, sessionID, kind string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := &domain.TokenClaims{
		Email:     user.Email,
		Role:      user.Role,
		TokenType: kind,
		Nonce:     uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

func (s *tokenService) VerifyAccessToken(token string) (*domain.TokenClaims, error) {
	return s.verify(token, domain.TokenKindAccess)
}

func (s *tokenService) VerifyRefreshToken(token string) (*domain.TokenClaims, error) {
	return s.verify(token, domain.TokenKindRefresh)
}

func (s *tokenService) verify(token, kind string) (*domain.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &domain.TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*domain.TokenClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenMalformed
	}
	if claims.TokenType != kind {
		return nil, domain.ErrWrongTokenKind
	}
	return claims, nil
}
