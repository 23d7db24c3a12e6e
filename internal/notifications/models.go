package notifications

import "time"

// Type classifies a notification.
type Type string

const (
	TypeFollowRequest Type = "follow_request"
	TypeFollowAccept  Type = "follow_accept"
	TypeLike          Type = "like"
	TypeComment       Type = "comment"
	TypeMention       Type = "mention"
)

// Notification is a recorded user-facing event. Only the read flag is ever
// mutated after creation.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	ActorID     string    `json:"actor_id"`
	Type        Type      `json:"type"`
	PostID      *int64    `json:"post_id,omitempty"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
