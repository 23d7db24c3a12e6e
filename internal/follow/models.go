package follow

import "time"

// Status describes the follow relationship for an ordered (actor, target) pair.
type Status string

const (
	StatusSelf         Status = "self"
	StatusFollowing    Status = "following"
	StatusRequested    Status = "requested"
	StatusNotFollowing Status = "not_following"
)

// Account is the slice of a user the follow service needs: identity plus
// the privacy flag the visibility policy is built on.
type Account struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IsPrivate bool   `json:"is_private"`
}

// Edge is a confirmed, directional follow relationship.
type Edge struct {
	ID         string    `json:"id"`
	FollowerID string    `json:"follower_id"`
	FollowedID string    `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Request is a pending ask to follow a private account.
type Request struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	RecipientID string    `json:"recipient_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventType identifies a side effect produced by a workflow transition.
type EventType string

const (
	// EventRequested: a follow request was filed against a private account.
	EventRequested EventType = "follow_requested"
	// EventFollowed: an edge was created directly against a public account.
	EventFollowed EventType = "followed"
	// EventAccepted: the recipient of a pending request confirmed it.
	EventAccepted EventType = "follow_accepted"
	// EventRejected: a pending request was declined.
	EventRejected EventType = "follow_rejected"
)

// Event is emitted by workflow transitions and consumed by a dispatcher.
// Transitions never talk to the notification store directly.
type Event struct {
	Type        EventType
	RecipientID string
	ActorID     string
	ActorName   string
}

// Outcome reports which transition Unfollow performed.
type Outcome string

const (
	OutcomeUnfollowed       Outcome = "unfollowed"
	OutcomeRequestCancelled Outcome = "request_cancelled"
)

// FollowRequestBody is the JSON body accepted by POST /users/:user_id/follow
// when the target id travels in the body instead of the path.
type FollowRequestBody struct {
	TargetID string `json:"target_id" binding:"required"`
}

// StatusResponse is the payload of the follow-status endpoint.
type StatusResponse struct {
	UserID string `json:"user_id"`
	Status Status `json:"status"`
}

// CountsResponse carries follower/following counts for a user.
type CountsResponse struct {
	UserID    string `json:"user_id"`
	Followers int64  `json:"followers"`
	Following int64  `json:"following"`
}
