package comments

import "time"

// Comment is one user's comment on a post. Username is joined in for
// list responses so clients don't need a second lookup.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest is the request body for adding a comment.
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}
