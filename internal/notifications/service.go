// Package notifications records user-facing events produced by the follow,
// likes and comments services and serves the notification feed.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
)

// Service is the notification emitter plus the feed operations.
type Service interface {
	// Emit appends a notification. Appends always succeed against a
	// healthy store; there is no uniqueness constraint.
	Emit(ctx context.Context, recipientID, actorID string, typ Type, message string, postID *int64) error

	List(ctx context.Context, ownerID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id, ownerID string) error
	MarkAllRead(ctx context.Context, ownerID string) (int64, error)
	MarkPairRead(ctx context.Context, recipientID, actorID string, typ Type) error
}

type service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{store: store, logger: logger}
}

func (s *service) Emit(ctx context.Context, recipientID, actorID string, typ Type, message string, postID *int64) error {
	n := &Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        typ,
		Message:     message,
		PostID:      postID,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("emit notification: %w", err)
	}
	s.logger.Debug("notification emitted",
		"recipient", recipientID,
		"actor", actorID,
		"type", typ)
	return nil
}

func (s *service) List(ctx context.Context, ownerID string, unreadOnly bool) ([]Notification, error) {
	return s.store.ListByRecipient(ctx, ownerID, unreadOnly)
}

func (s *service) MarkRead(ctx context.Context, id, ownerID string) error {
	return s.store.MarkRead(ctx, id, ownerID)
}

func (s *service) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	return s.store.MarkAllRead(ctx, ownerID)
}

func (s *service) MarkPairRead(ctx context.Context, recipientID, actorID string, typ Type) error {
	return s.store.MarkPairRead(ctx, recipientID, actorID, typ)
}
