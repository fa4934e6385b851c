package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
	"github.com/chatforge/console-api/internal/obs"
)

type sessionService struct {
	sessions ports.SessionRepository
	activity ports.ActivityRecorder
	log      zerolog.Logger
}

// NewSessionService returns the session-management surface over the registry.
func NewSessionService(sessions ports.SessionRepository, activity ports.ActivityRecorder, log zerolog.Logger) ports.SessionService {
	return &sessionService{sessions: sessions, activity: activity, log: log}
}

func (s *sessionService) ListForUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	sessions, err := s.sessions.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) Terminate(ctx context.Context, actor *domain.Actor, sessionID string) error {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("terminate session: find: %w", err)
	}
	if sess == nil {
		return domain.ErrSessionNotFound
	}

	// Owner or admin only.
	if !domain.CanAccess(actor, sess.UserID, "") {
		return domain.ErrForbidden
	}

	if err := s.sessions.Terminate(ctx, sessionID); err != nil {
		return fmt.Errorf("terminate session: %w", err)
	}

	reason := "revoke"
	if actor.UserID != sess.UserID {
		reason = "admin"
	}
	obs.SessionsTerminatedTotal.WithLabelValues(reason).Inc()

	s.activity.Record(domain.NewActivityRecord(sess.UserID, domain.ActionSessionsRevoked, "", "", map[string]any{
		"session_id": sessionID,
		"by":         actor.UserID,
	}))

	s.log.Info().Str("session_id", sessionID).Str("user_id", sess.UserID).Str("by", actor.UserID).Msg("session terminated")
	return nil
}

func (s *sessionService) RevokeOthers(ctx context.Context, actor *domain.Actor) (int64, error) {
	if actor == nil {
		return 0, domain.ErrUnauthorized
	}

	revoked, err := s.sessions.TerminateAllExcept(ctx, actor.UserID, actor.SessionID)
	if err != nil {
		return 0, fmt.Errorf("revoke other sessions: %w", err)
	}
	if revoked > 0 {
		obs.SessionsTerminatedTotal.WithLabelValues("revoke_others").Add(float64(revoked))
	}

	s.activity.Record(domain.NewActivityRecord(actor.UserID, domain.ActionSessionsRevoked, "", "", map[string]any{
		"sessions_revoked": revoked,
		"kept":             actor.SessionID,
	}))

	s.log.Info().Str("user_id", actor.UserID).Int64("revoked", revoked).Msg("other sessions revoked")
	return revoked, nil
}

func (s *sessionService) TerminateAllForUser(ctx context.Context, userID string) (int64, error) {
	terminated, err := s.sessions.TerminateAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("terminate all sessions: %w", err)
	}
	if terminated > 0 {
		obs.SessionsTerminatedTotal.WithLabelValues("admin").Add(float64(terminated))
	}

	s.activity.Record(domain.NewActivityRecord(userID, domain.ActionSessionsRevoked, "", "", map[string]any{
		"sessions_revoked": terminated,
		"by_admin":         true,
	}))
	return terminated, nil
}

func (s *sessionService) Cleanup(ctx context.Context) (int64, error) {
	expired, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	if expired > 0 {
		obs.SessionsExpiredTotal.Add(float64(expired))
		s.log.Info().Int64("expired", expired).Msg("expired sessions cleaned up")
	}
	return expired, nil
}
