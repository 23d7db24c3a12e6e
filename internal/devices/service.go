// Package devices tracks logged-in device sessions. Each login creates a
// session token persisted in Postgres and mirrored into Redis with a TTL;
// the Redis key is the liveness check consulted on every authenticated
// request, so revoking a session takes effect immediately.
package devices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"prism/internal/session"

	"github.com/google/uuid"
)

// SessionTTL bounds how long a device session stays valid without a refresh.
const SessionTTL = 7 * 24 * time.Hour

// Service defines the device session operations.
type Service interface {
	Register(ctx context.Context, userID string, info Info) (*Device, error)
	List(ctx context.Context, userID, currentToken string) ([]Device, error)
	Active(ctx context.Context, sessionToken string) (bool, error)
	Renew(ctx context.Context, sessionToken string) error
	Logout(ctx context.Context, userID string, deviceID int64) error
	LogoutByToken(ctx context.Context, sessionToken string) error
	LogoutOthers(ctx context.Context, userID, keepToken string) (int, error)
}

type service struct {
	repo  *Repository
	store session.Store
	log   *slog.Logger
}

// NewService creates a device session service.
func NewService(repo *Repository, store session.Store, log *slog.Logger) Service {
	return &service{repo: repo, store: store, log: log}
}

func livenessKey(token string) string {
	return fmt.Sprintf("device:%s", token)
}

// LivenessChecker answers session liveness from Redis alone. The gateway
// uses it so token validation never needs a database round trip.
type LivenessChecker struct {
	store session.Store
}

// NewLivenessChecker creates a Redis-only liveness checker.
func NewLivenessChecker(store session.Store) *LivenessChecker {
	return &LivenessChecker{store: store}
}

// Active reports whether the session token is still live.
func (l *LivenessChecker) Active(ctx context.Context, sessionToken string) (bool, error) {
	return l.store.Exists(ctx, livenessKey(sessionToken))
}

// Register creates a new device session for the user and marks it live.
func (s *service) Register(ctx context.Context, userID string, info Info) (*Device, error) {
	token := uuid.New().String()
	if info.DeviceName == "" {
		info.DeviceName = "unknown device"
	}

	d, err := s.repo.Create(ctx, userID, token, info)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, livenessKey(token), userID, SessionTTL); err != nil {
		return nil, fmt.Errorf("failed to mark device session live: %w", err)
	}
	return d, nil
}

// List returns the user's active sessions, flagging the current one.
func (s *service) List(ctx context.Context, userID, currentToken string) ([]Device, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i].Current = all[i].SessionToken == currentToken
	}
	return all, nil
}

// Active reports whether the session token is still live.
func (s *service) Active(ctx context.Context, sessionToken string) (bool, error) {
	return s.store.Exists(ctx, livenessKey(sessionToken))
}

// Renew extends the liveness window for a session, used on token refresh.
func (s *service) Renew(ctx context.Context, sessionToken string) error {
	ok, err := s.store.Exists(ctx, livenessKey(sessionToken))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := s.store.Set(ctx, livenessKey(sessionToken), "1", SessionTTL); err != nil {
		return fmt.Errorf("failed to renew device session: %w", err)
	}
	if err := s.repo.Touch(ctx, sessionToken); err != nil {
		s.log.Warn("failed to touch device session", "error", err)
	}
	return nil
}

// Logout retires a specific device session owned by the user.
func (s *service) Logout(ctx context.Context, userID string, deviceID int64) error {
	token, err := s.repo.Deactivate(ctx, userID, deviceID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, livenessKey(token)); err != nil && !errors.Is(err, session.ErrNotFound) {
		s.log.Warn("failed to drop device liveness key", "error", err)
	}
	return nil
}

// LogoutByToken retires the session identified by its own token.
func (s *service) LogoutByToken(ctx context.Context, sessionToken string) error {
	if err := s.repo.DeactivateByToken(ctx, sessionToken); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, livenessKey(sessionToken)); err != nil && !errors.Is(err, session.ErrNotFound) {
		s.log.Warn("failed to drop device liveness key", "error", err)
	}
	return nil
}

// LogoutOthers retires every session of the user except the current one
// and returns how many sessions were closed.
func (s *service) LogoutOthers(ctx context.Context, userID, keepToken string) (int, error) {
	tokens, err := s.repo.DeactivateAllExcept(ctx, userID, keepToken)
	if err != nil {
		return 0, err
	}
	for _, t := range tokens {
		if err := s.store.Delete(ctx, livenessKey(t)); err != nil && !errors.Is(err, session.ErrNotFound) {
			s.log.Warn("failed to drop device liveness key", "error", err)
		}
	}
	return len(tokens), nil
}
