// Package likes implements the likes service. Liking is transactional:
// the like row and the denormalized likes_count on the post move together
// or not at all.
package likes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"prism/internal/database"
	"prism/internal/notifications"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrPostNotFound is returned when the post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrAlreadyLiked is returned when the user has already liked the post.
	ErrAlreadyLiked = errors.New("already liked")
	// ErrNotLiked is returned when unliking a post the user never liked.
	ErrNotLiked = errors.New("not liked")
)

// Notifier is the slice of the notifications service the likes service uses.
type Notifier interface {
	Emit(ctx context.Context, recipientID, actorID string, typ notifications.Type, message string, postID *int64) error
}

// Service defines the likes operations.
type Service interface {
	Like(ctx context.Context, userID string, postID int64) (*Like, error)
	Unlike(ctx context.Context, userID string, postID int64) error
	Count(ctx context.Context, postID int64) (int64, error)
	IsLiked(ctx context.Context, userID string, postID int64) (bool, error)
}

type service struct {
	db       database.Service
	notifier Notifier
	cache    *redis.Client
	log      *slog.Logger
}

// NewService creates a likes service. The cache client, when present, is
// used to drop the stale single-post entry after a count change.
func NewService(db database.Service, notifier Notifier, cache *redis.Client, log *slog.Logger) Service {
	return &service{db: db, notifier: notifier, cache: cache, log: log}
}

// Like records a like and bumps the post's counter in one transaction.
func (s *service) Like(ctx context.Context, userID string, postID int64) (*Like, error) {
	authorID, err := s.postAuthor(ctx, postID)
	if err != nil {
		return nil, err
	}

	l := &Like{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO likes (id, post_id, user_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, post_id) DO NOTHING`,
			l.ID, l.PostID, l.UserID, l.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert like: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyLiked
		}

		_, err = tx.Exec(ctx, `UPDATE posts SET likes_count = likes_count + 1 WHERE post_id = $1`, postID)
		if err != nil {
			return fmt.Errorf("increment likes_count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePostCache(ctx, postID)
	s.notifyAuthor(ctx, authorID, userID, postID)
	return l, nil
}

// Unlike removes a like and decrements the post's counter.
func (s *service) Unlike(ctx context.Context, userID string, postID int64) error {
	if _, err := s.postAuthor(ctx, postID); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotLiked
		}

		_, err = tx.Exec(ctx, `
			UPDATE posts SET likes_count = GREATEST(likes_count - 1, 0) WHERE post_id = $1`, postID)
		if err != nil {
			return fmt.Errorf("decrement likes_count: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidatePostCache(ctx, postID)
	return nil
}

// Count returns how many likes a post has.
func (s *service) Count(ctx context.Context, postID int64) (int64, error) {
	var cnt int64
	err := s.db.QueryRow(ctx, `SELECT likes_count FROM posts WHERE post_id = $1`, postID).Scan(&cnt)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return cnt, nil
}

// IsLiked reports whether the user has liked the post.
func (s *service) IsLiked(ctx context.Context, userID string, postID int64) (bool, error) {
	var one int
	err := s.db.QueryRow(ctx, `SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2 LIMIT 1`, userID, postID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return true, nil
}

func (s *service) postAuthor(ctx context.Context, postID int64) (string, error) {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE post_id = $1`, postID).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrPostNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get post author: %w", err)
	}
	return authorID, nil
}

// notifyAuthor tells the post author about the like. Self-likes stay
// silent, and a failed notification never fails the like.
func (s *service) notifyAuthor(ctx context.Context, authorID, actorID string, postID int64) {
	if s.notifier == nil || authorID == actorID {
		return
	}

	var actorName string
	err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, actorID).Scan(&actorName)
	if err != nil {
		s.log.Warn("failed to resolve actor username", "error", err)
		return
	}

	message := fmt.Sprintf("%s liked your post", actorName)
	if err := s.notifier.Emit(ctx, authorID, actorID, notifications.TypeLike, message, &postID); err != nil {
		s.log.Warn("failed to emit like notification", "error", err)
	}
}

func (s *service) invalidatePostCache(ctx context.Context, postID int64) {
	if s.cache != nil {
		s.cache.Del(ctx, fmt.Sprintf("post:%d", postID))
	}
}
