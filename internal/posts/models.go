package posts

import "time"

// Post is a piece of content published by a user.
type Post struct {
	PostID     int64     `json:"post_id"`
	UserID     string    `json:"user_id"`
	Caption    string    `json:"caption"`
	ImageURL   string    `json:"image_url"`
	LikesCount int64     `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreatePostRequest is the request body for creating a post. The author
// comes from the X-User-ID header set by the gateway, never the body.
type CreatePostRequest struct {
	Caption  string `json:"caption" binding:"max=1000"`
	ImageURL string `json:"image_url" binding:"required"`
}

// UpdatePostRequest is the request body for editing a post.
type UpdatePostRequest struct {
	Caption  *string `json:"caption,omitempty" binding:"omitempty,max=1000"`
	ImageURL *string `json:"image_url,omitempty"`
}

// PaginatedPostsResponse is a page of posts with pagination metadata.
type PaginatedPostsResponse struct {
	Posts      []Post `json:"posts"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalCount int64  `json:"total_count"`
	TotalPages int    `json:"total_pages"`
}
