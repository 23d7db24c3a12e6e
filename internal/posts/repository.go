package posts

import (
	"context"
	"errors"
	"fmt"

	"prism/internal/database"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrPostNotFound is returned when no post matches the given id.
	ErrPostNotFound = errors.New("post not found")
	// ErrNotOwner is returned when a user tries to modify someone else's post.
	ErrNotOwner = errors.New("not the post owner")
)

const postColumns = "post_id, user_id, caption, image_url, likes_count, created_at, updated_at"

// Repository handles all database operations for posts.
type Repository struct {
	db database.Service
}

// NewRepository creates a posts repository.
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// Create inserts a new post.
func (r *Repository) Create(ctx context.Context, userID, caption, imageURL string) (*Post, error) {
	query := `
		INSERT INTO posts (user_id, caption, image_url)
		VALUES ($1, $2, $3)
		RETURNING ` + postColumns

	post := &Post{}
	err := r.db.QueryRow(ctx, query, userID, caption, imageURL).Scan(
		&post.PostID, &post.UserID, &post.Caption, &post.ImageURL,
		&post.LikesCount, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// GetByID retrieves a single post.
func (r *Repository) GetByID(ctx context.Context, postID int64) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE post_id = $1`

	post := &Post{}
	err := r.db.QueryRow(ctx, query, postID).Scan(
		&post.PostID, &post.UserID, &post.Caption, &post.ImageURL,
		&post.LikesCount, &post.CreatedAt, &post.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Feed returns posts visible to the viewer, newest first: the viewer's own
// posts, posts from public accounts, and posts from accounts the viewer
// follows.
func (r *Repository) Feed(ctx context.Context, viewerID string, page, pageSize int) ([]Post, int64, error) {
	page, pageSize = clampPage(page, pageSize)
	offset := (page - 1) * pageSize

	visible := `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
		   OR NOT u.is_private
		   OR EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = $1 AND f.followed_id = p.user_id)`

	var totalCount int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) `+visible, viewerID).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := `
		SELECT p.post_id, p.user_id, p.caption, p.image_url, p.likes_count, p.created_at, p.updated_at ` +
		visible + `
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`

	posts, err := r.queryRows(ctx, query, viewerID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return posts, totalCount, nil
}

// GetByUserID returns one user's posts with pagination, newest first.
// Visibility is the service's concern, this lists unconditionally.
func (r *Repository) GetByUserID(ctx context.Context, userID string, page, pageSize int) ([]Post, int64, error) {
	page, pageSize = clampPage(page, pageSize)
	offset := (page - 1) * pageSize

	var totalCount int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = $1`, userID).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	posts, err := r.queryRows(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return posts, totalCount, nil
}

// Update edits a post's caption or image. Only the owner may update.
func (r *Repository) Update(ctx context.Context, postID int64, userID string, caption, imageURL *string) (*Post, error) {
	existing, err := r.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrNotOwner
	}

	query := `
		UPDATE posts
		SET caption = COALESCE($3, caption),
		    image_url = COALESCE($4, image_url),
		    updated_at = NOW()
		WHERE post_id = $1 AND user_id = $2
		RETURNING ` + postColumns

	post := &Post{}
	err = r.db.QueryRow(ctx, query, postID, userID, caption, imageURL).Scan(
		&post.PostID, &post.UserID, &post.Caption, &post.ImageURL,
		&post.LikesCount, &post.CreatedAt, &post.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

// Delete removes a post. Only the owner may delete.
func (r *Repository) Delete(ctx context.Context, postID int64, userID string) error {
	existing, err := r.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return ErrNotOwner
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *Repository) queryRows(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		err := rows.Scan(&p.PostID, &p.UserID, &p.Caption, &p.ImageURL,
			&p.LikesCount, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
