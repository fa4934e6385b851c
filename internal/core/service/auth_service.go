package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
	"github.com/chatforge/console-api/internal/obs"
)

type authService struct {
	creds    ports.CredentialStore
	tokens   ports.TokenService
	sessions ports.SessionRepository
	activity ports.ActivityRecorder
	log      zerolog.Logger
}

// NewAuthService wires the auth transactions from their collaborators.
func NewAuthService(
	creds ports.CredentialStore,
	tokens ports.TokenService,
	sessions ports.SessionRepository,
	activity ports.ActivityRecorder,
	log zerolog.Logger,
) ports.AuthService {
	return &authService{
		creds:    creds,
		tokens:   tokens,
		sessions: sessions,
		activity: activity,
		log:      log,
	}
}

func (s *authService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	// 1. Both fields are required before any lookup happens.
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrMissingCredentials
	}

	// 2. Unknown email and wrong password must be indistinguishable.
	user, err := s.creds.VerifyCredentials(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			obs.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		obs.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: verify credentials: %w", err)
	}

	// 3. Correct password on a suspended or deactivated account still fails.
	if !user.IsActive() {
		obs.LoginsTotal.WithLabelValues("inactive").Inc()
		return nil, domain.ErrAccountInactive
	}

	result, err := s.openSession(ctx, user, in.IP, in.UserAgent, domain.ActionLogin)
	if err != nil {
		obs.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	obs.LoginsTotal.WithLabelValues("success").Inc()
	return result, nil
}

func (s *authService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	// 1. Email, password, and name are all required.
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, domain.ErrMissingFields
	}

	// 2. Pre-check for a clean 409; the unique index remains the arbiter.
	if _, err := s.creds.FindByEmail(ctx, in.Email); err == nil {
		obs.RegistrationsTotal.WithLabelValues("exists").Inc()
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		obs.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: find by email: %w", err)
	}

	// 3. Role and status are never caller-supplied: every signup lands as an
	// active regular user.
	user, err := s.creds.CreateUser(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			// Lost the race between the pre-check and the insert.
			obs.RegistrationsTotal.WithLabelValues("exists").Inc()
			return nil, domain.ErrUserExists
		}
		obs.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	// 4. Same tail as login, audited as a registration.
	result, err := s.openSession(ctx, user, in.IP, in.UserAgent, domain.ActionRegister)
	if err != nil {
		obs.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	obs.RegistrationsTotal.WithLabelValues("success").Inc()
	return result, nil
}

// openSession is the shared tail of login and registration: mint a token
// pair, bump last_login, register the session, and append the audit entry.
// Only token issuance can fail the call; later steps are logged and skipped
// because the login itself has already succeeded.
func (s *authService) openSession(ctx context.Context, user *domain.User, ip, userAgent, action string) (*ports.AuthResult, error) {
	// 4. Tokens are minted only after credential and status checks passed.
	// Both carry the session id as jti so misuse can name its session later.
	sessionID := uuid.NewString()
	accessToken, _, err := s.tokens.IssueAccessToken(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, refreshExp, err := s.tokens.IssueRefreshToken(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	// 5. Best-effort timestamp bump.
	if err := s.creds.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	}

	// 6. Register the session. Insert failure is logged, not returned.
	now := time.Now().UTC()
	sess := &domain.Session{
		ID:           sessionID,
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IPAddress:    ip,
		UserAgent:    userAgent,
		Status:       domain.SessionActive,
		ExpiresAt:    refreshExp,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Str("session_id", sessionID).Msg("failed to create session")
	}

	// 7. Audit trail.
	s.record(user.ID, action, ip, userAgent, map[string]any{"session_id": sessionID})

	s.log.Info().Str("user_id", user.ID).Str("session_id", sessionID).Str("action", action).Msg("session opened")

	return &ports.AuthResult{
		User: user,
		Tokens: ports.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    refreshExp,
		},
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*ports.TokenPair, error) {
	// 1.
	if refreshToken == "" {
		return nil, domain.ErrMissingToken
	}

	// 2. The session row, not the token's own claims, is the binding
	// authority on whether this refresh token still grants anything.
	sess, err := s.sessions.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		obs.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("refresh: find session: %w", err)
	}
	if sess == nil {
		return nil, s.rejectUnknownRefreshToken(ctx, refreshToken)
	}
	if sess.Status != domain.SessionActive {
		obs.TokenRefreshesTotal.WithLabelValues("invalid_token").Inc()
		return nil, domain.ErrInvalidToken
	}
	if sess.Expired(time.Now().UTC()) {
		if err := s.sessions.Expire(ctx, sess.ID); err != nil {
			s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to expire session")
		}
		obs.TokenRefreshesTotal.WithLabelValues("invalid_token").Inc()
		return nil, domain.ErrInvalidToken
	}

	// 3. Signature, expiry, kind, and user binding. Any failure terminates
	// the session, and the termination completes before the error goes out.
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil || claims.UserID() != sess.UserID {
		if terr := s.terminate(ctx, sess.ID, "token_misuse"); terr != nil {
			obs.TokenRefreshesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("refresh: terminate on token misuse: %w", terr)
		}
		obs.TokenRefreshesTotal.WithLabelValues("invalid_token").Inc()
		return nil, domain.ErrInvalidToken
	}

	// 4. The account must still exist and be active.
	user, err := s.creds.FindByID(ctx, sess.UserID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		obs.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("refresh: load user: %w", err)
	}
	if err != nil || !user.IsActive() {
		if terr := s.terminate(ctx, sess.ID, "user_inactive"); terr != nil {
			obs.TokenRefreshesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("refresh: terminate session of inactive user: %w", terr)
		}
		obs.TokenRefreshesTotal.WithLabelValues("user_inactive").Inc()
		return nil, domain.ErrUserInactive
	}

	// 5. Rotation: a brand-new pair under the same session id.
	accessToken, _, err := s.tokens.IssueAccessToken(user, sess.ID)
	if err != nil {
		obs.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("refresh: issue access token: %w", err)
	}
	newRefresh, refreshExp, err := s.tokens.IssueRefreshToken(user, sess.ID)
	if err != nil {
		obs.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("refresh: issue refresh token: %w", err)
	}

	// 6. Guarded overwrite: of two concurrent refreshes presenting the same
	// token, exactly one wins the row; the loser fails closed.
	rotated, err := s.sessions.Rotate(ctx, sess.ID, refreshToken, accessToken, newRefresh, refreshExp)
	if err != nil {
		obs.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("refresh: rotate session: %w", err)
	}
	if !rotated {
		obs.TokenRefreshesTotal.WithLabelValues("invalid_token").Inc()
		return nil, domain.ErrInvalidToken
	}

	// 7.
	s.record(user.ID, domain.ActionTokenRefresh, ip, userAgent, map[string]any{"session_id": sess.ID})

	obs.TokenRefreshesTotal.WithLabelValues("success").Inc()
	return &ports.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    refreshExp,
	}, nil
}

// rejectUnknownRefreshToken handles a refresh token with no session row. A
// token that still verifies as one of ours was rotated out of its session;
// replaying it terminates the session named by its jti.
func (s *authService) rejectUnknownRefreshToken(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		obs.TokenRefreshesTotal.WithLabelValues("invalid_token").Inc()
		return domain.ErrInvalidToken
	}

	if sid := claims.SessionID(); sid != "" {
		s.log.Warn().Str("session_id", sid).Str("user_id", claims.UserID()).Msg("rotated-out refresh token replayed")
		if terr := s.terminate(ctx, sid, "token_misuse"); terr != nil {
			obs.TokenRefreshesTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("refresh: terminate replayed session: %w", terr)
		}
	}

	obs.TokenRefreshesTotal.WithLabelValues("invalid_token").Inc()
	return domain.ErrInvalidToken
}

func (s *authService) Logout(ctx context.Context, accessToken, ip, userAgent string) error {
	// 1.
	if accessToken == "" {
		return domain.ErrMissingToken
	}

	// 2. Idempotent: an unknown token already grants nothing, so logout
	// reports success either way.
	sess, err := s.sessions.FindByAccessToken(ctx, accessToken)
	if err != nil {
		return fmt.Errorf("logout: find session: %w", err)
	}
	if sess != nil {
		if err := s.terminate(ctx, sess.ID, "logout"); err != nil {
			return fmt.Errorf("logout: terminate session: %w", err)
		}
		s.record(sess.UserID, domain.ActionLogout, ip, userAgent, map[string]any{"session_id": sess.ID})
		s.log.Info().Str("user_id", sess.UserID).Str("session_id", sess.ID).Msg("logged out")
		return nil
	}

	// 3. No session row. Audit anyway when the token still names a caller.
	if claims, verr := s.tokens.VerifyAccessToken(accessToken); verr == nil {
		s.record(claims.UserID(), domain.ActionLogout, ip, userAgent, nil)
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	// 1. Identity comes from the middleware; both passwords are required.
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return domain.ErrMissingFields
	}

	// 2.
	user, err := s.creds.FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("change password: load user: %w", err)
	}

	// 3. A wrong current password gets its own code: the caller is already
	// authenticated, so there is nothing left to enumerate.
	if _, err := s.creds.VerifyCredentials(ctx, user.Email, in.CurrentPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return domain.ErrInvalidPassword
		}
		return fmt.Errorf("change password: verify current password: %w", err)
	}

	// 4.
	if err := s.creds.UpdatePassword(ctx, in.UserID, in.NewPassword); err != nil {
		return fmt.Errorf("change password: update: %w", err)
	}

	// 5. Every other device re-authenticates; the caller's session survives.
	// Best-effort: the password is already changed.
	revoked, err := s.sessions.TerminateAllExcept(ctx, in.UserID, in.SessionID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("failed to revoke other sessions after password change")
	} else if revoked > 0 {
		obs.SessionsTerminatedTotal.WithLabelValues("password_change").Add(float64(revoked))
	}

	// 6.
	s.record(in.UserID, domain.ActionPasswordChange, in.IP, in.UserAgent, map[string]any{"sessions_revoked": revoked})

	s.log.Info().Str("user_id", in.UserID).Int64("sessions_revoked", revoked).Msg("password changed")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.Actor, error) {
	if accessToken == "" {
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}

	// A verified signature is not enough: the session must still be live,
	// and it must belong to the user the token names.
	sess, err := s.sessions.FindByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("authenticate: find session: %w", err)
	}
	if sess == nil || sess.Status != domain.SessionActive || sess.UserID != claims.UserID() {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Actor{
		UserID:    claims.UserID(),
		Email:     claims.Email,
		Role:      claims.Role,
		SessionID: sess.ID,
	}, nil
}

func (s *authService) terminate(ctx context.Context, sessionID, reason string) error {
	if err := s.sessions.Terminate(ctx, sessionID); err != nil {
		return err
	}
	obs.SessionsTerminatedTotal.WithLabelValues(reason).Inc()
	return nil
}

func (s *authService) record(userID, action, ip, userAgent string, details map[string]any) {
	s.activity.Record(domain.NewActivityRecord(userID, action, ip, userAgent, details))
}
