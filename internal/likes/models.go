package likes

import "time"

// Like is one user's like on one post.
type Like struct {
	ID        string    `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CountResponse reports how many likes a post has.
type CountResponse struct {
	PostID int64 `json:"post_id"`
	Count  int64 `json:"count"`
}

// LikedResponse reports whether the viewer has liked a post.
type LikedResponse struct {
	PostID int64 `json:"post_id"`
	Liked  bool  `json:"liked"`
}
