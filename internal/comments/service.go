// Package comments implements the comments service.
package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"prism/internal/database"
	"prism/internal/notifications"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrPostNotFound is returned when the post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when no comment matches the given id.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrForbidden is returned when the user may not delete the comment.
	ErrForbidden = errors.New("not allowed to delete this comment")
)

// Notifier is the slice of the notifications service used here.
type Notifier interface {
	Emit(ctx context.Context, recipientID, actorID string, typ notifications.Type, message string, postID *int64) error
}

// Service defines the comments operations.
type Service interface {
	Create(ctx context.Context, userID string, postID int64, req CreateCommentRequest) (*Comment, error)
	Delete(ctx context.Context, userID string, commentID int64) error
	ListByPost(ctx context.Context, postID int64) ([]Comment, error)
}

type service struct {
	db       database.Service
	notifier Notifier
	log      *slog.Logger
}

// NewService creates a comments service.
func NewService(db database.Service, notifier Notifier, log *slog.Logger) Service {
	return &service{db: db, notifier: notifier, log: log}
}

// Create adds a comment and notifies the post author.
func (s *service) Create(ctx context.Context, userID string, postID int64, req CreateCommentRequest) (*Comment, error) {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE post_id = $1`, postID).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post author: %w", err)
	}

	c := &Comment{
		PostID:  postID,
		UserID:  userID,
		Content: req.Content,
	}

	const q = `
		INSERT INTO comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING comment_id, created_at`

	if err := s.db.QueryRow(ctx, q, c.PostID, c.UserID, c.Content).Scan(&c.ID, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	s.notifyAuthor(ctx, authorID, userID, postID)
	return c, nil
}

// Delete removes a comment. The comment author and the post owner may
// both delete it.
func (s *service) Delete(ctx context.Context, userID string, commentID int64) error {
	var commentOwner string
	var postOwner string
	err := s.db.QueryRow(ctx, `
		SELECT c.user_id, p.user_id
		FROM comments c
		JOIN posts p ON p.post_id = c.post_id
		WHERE c.comment_id = $1`, commentID).Scan(&commentOwner, &postOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("get comment: %w", err)
	}

	if userID != commentOwner && userID != postOwner {
		return ErrForbidden
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE comment_id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// ListByPost returns a post's comments, oldest first.
func (s *service) ListByPost(ctx context.Context, postID int64) ([]Comment, error) {
	const q = `
		SELECT c.comment_id, c.post_id, c.user_id, u.username, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC`

	rows, err := s.db.Query(ctx, q, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *service) notifyAuthor(ctx context.Context, authorID, actorID string, postID int64) {
	if s.notifier == nil || authorID == actorID {
		return
	}

	var actorName string
	if err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, actorID).Scan(&actorName); err != nil {
		s.log.Warn("failed to resolve actor username", "error", err)
		return
	}

	message := fmt.Sprintf("%s commented on your post", actorName)
	if err := s.notifier.Emit(ctx, authorID, actorID, notifications.TypeComment, message, &postID); err != nil {
		s.log.Warn("failed to emit comment notification", "error", err)
	}
}
