package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chatforge/console-api/internal/core/domain"
	"github.com/chatforge/console-api/internal/core/ports"
	"github.com/chatforge/console-api/internal/obs"
)

const (
	defaultActivityPage = 50
	maxActivityPage     = 200
)

type userService struct {
	creds    ports.CredentialStore
	sessions ports.SessionRepository
	activity ports.ActivityRepository
	recorder ports.ActivityRecorder
	log      zerolog.Logger
}

// NewUserService returns the profile and account-administration surface.
func NewUserService(
	creds ports.CredentialStore,
	sessions ports.SessionRepository,
	activity ports.ActivityRepository,
	recorder ports.ActivityRecorder,
	log zerolog.Logger,
) ports.UserService {
	return &userService{
		creds:    creds,
		sessions: sessions,
		activity: activity,
		recorder: recorder,
		log:      log,
	}
}

func (s *userService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.creds.FindByID(ctx, userID)
}

func (s *userService) SetStatus(ctx context.Context, userID, status string) (int64, error) {
	if !domain.ValidStatus(status) {
		return 0, domain.ErrInvalidStatus
	}

	user, err := s.creds.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.creds.UpdateStatus(ctx, userID, status); err != nil {
		return 0, fmt.Errorf("set status: %w", err)
	}

	// Leaving active means the user's live sessions must die with the
	// account. This is the one termination that is fatal on failure: a
	// deactivated account must not keep an open door.
	var terminated int64
	if status != domain.StatusActive {
		terminated, err = s.sessions.TerminateAllForUser(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("set status: terminate sessions: %w", err)
		}
		if terminated > 0 {
			obs.SessionsTerminatedTotal.WithLabelValues("status_change").Add(float64(terminated))
		}
	}

	s.recorder.Record(domain.NewActivityRecord(userID, domain.ActionStatusChange, "", "", map[string]any{
		"from": user.Status,
		"to":   status,
	}))

	s.log.Info().
		Str("user_id", userID).
		Str("from", user.Status).
		Str("to", status).
		Int64("sessions_terminated", terminated).
		Msg("account status changed")
	return terminated, nil
}

func (s *userService) Activity(ctx context.Context, userID string, limit, offset int) ([]*domain.ActivityRecord, error) {
	if _, err := s.creds.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > maxActivityPage {
		limit = defaultActivityPage
	}
	if offset < 0 {
		offset = 0
	}
	return s.activity.ListByUser(ctx, userID, limit, offset)
}
