package follow

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned when the referenced account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfFollow is returned when actor and target are the same account.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrAlreadyFollowing is returned when the edge already exists.
	ErrAlreadyFollowing = errors.New("already following this user")
	// ErrAlreadyRequested is returned when a pending request already exists.
	ErrAlreadyRequested = errors.New("follow request already sent")
	// ErrRequestNotFound is returned when no pending request exists for the pair.
	ErrRequestNotFound = errors.New("no follow request found")
	// ErrNotFollowingOrRequested is returned by unfollow when there is
	// nothing to undo for the pair.
	ErrNotFollowingOrRequested = errors.New("not following or requested")
)

// Ledger is the relationship store: confirmed edges plus pending requests.
// Implementations must keep the two sets mutually exclusive per ordered pair
// and enforce pair uniqueness even under concurrent calls.
type Ledger interface {
	// CreateEdge inserts the (follower, followed) edge.
	// Returns ErrAlreadyFollowing if it already exists.
	CreateEdge(ctx context.Context, followerID, followedID string) error

	// DeleteEdge removes the edge. Returns ErrNotFollowingOrRequested if
	// it does not exist.
	DeleteEdge(ctx context.Context, followerID, followedID string) error

	// CreateRequest files a pending request. It must not create one when
	// the corresponding edge exists (ErrAlreadyFollowing) or when a
	// request is already pending (ErrAlreadyRequested), and the check and
	// insert must be atomic.
	CreateRequest(ctx context.Context, requesterID, recipientID string) error

	// DeleteRequest removes a pending request. Returns ErrRequestNotFound
	// if absent.
	DeleteRequest(ctx context.Context, requesterID, recipientID string) error

	// PromoteRequest atomically consumes the pending request and creates
	// the edge: no interleaving may observe both or neither.
	// Returns ErrRequestNotFound when there is nothing to promote.
	PromoteRequest(ctx context.Context, requesterID, recipientID string) error

	HasEdge(ctx context.Context, followerID, followedID string) (bool, error)
	HasRequest(ctx context.Context, requesterID, recipientID string) (bool, error)

	Followers(ctx context.Context, userID string) ([]Account, error)
	Following(ctx context.Context, userID string) ([]Account, error)
	PendingRequests(ctx context.Context, recipientID string) ([]Request, error)
	Counts(ctx context.Context, userID string) (followers, following int64, err error)
}

// Directory resolves accounts for the workflow and the visibility policy.
type Directory interface {
	// GetAccount returns ErrUserNotFound for unknown ids.
	GetAccount(ctx context.Context, id string) (*Account, error)
}

// Notifier consumes the events produced by workflow transitions.
type Notifier interface {
	Dispatch(ctx context.Context, events []Event)
}

// NopNotifier discards events. Used when the notification store is not wired.
type NopNotifier struct{}

func (NopNotifier) Dispatch(context.Context, []Event) {}
