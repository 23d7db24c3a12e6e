package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"prism/internal/database"
)

// ErrNotFound covers both a missing notification and one owned by another
// user: cross-user reads are indistinguishable from absence.
var ErrNotFound = errors.New("notification not found")

// Store is the persistence interface for the notification log.
type Store interface {
	Insert(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id, ownerID string) error
	MarkAllRead(ctx context.Context, ownerID string) (int64, error)
	// MarkPairRead flags notifications of one type for a (recipient, actor)
	// pair as read. Used when a follow request is accepted or rejected.
	MarkPairRead(ctx context.Context, recipientID, actorID string, typ Type) error
}

// Repository is the PostgreSQL notification store.
type Repository struct {
	db database.Service
}

func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO notifications (id, recipient_id, actor_id, type, post_id, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, n.ID, n.RecipientID, n.ActorID, n.Type, n.PostID, n.Message).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *Repository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error) {
	query := `
		SELECT id, recipient_id, actor_id, type, post_id, message, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
	`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.Type, &n.PostID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) MarkRead(ctx context.Context, id, ownerID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND recipient_id = $2
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE recipient_id = $1 AND is_read = FALSE
	`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) MarkPairRead(ctx context.Context, recipientID, actorID string, typ Type) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE recipient_id = $1 AND actor_id = $2 AND type = $3 AND is_read = FALSE
	`, recipientID, actorID, typ)
	if err != nil {
		return fmt.Errorf("mark pair read: %w", err)
	}
	return nil
}
