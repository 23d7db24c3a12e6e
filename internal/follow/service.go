// Package follow implements the follow workflow: the state machine per
// ordered (actor, target) pair with states none, requested and following,
// plus the visibility policy gating cross-account reads.
package follow

import (
	"context"
	"log/slog"
)

// Service is the follow workflow consumed by the HTTP layer and by the
// users and posts services for visibility decisions.
type Service interface {
	// RequestFollow asks actor to follow target. Private target: a pending
	// request is filed (followed=false). Public target: the edge is created
	// immediately (followed=true).
	RequestFollow(ctx context.Context, actorID, targetID string) (followed bool, err error)

	// AcceptRequest lets recipient confirm requester's pending request.
	AcceptRequest(ctx context.Context, recipientID, requesterID string) error

	// RejectRequest declines a pending request without creating an edge.
	RejectRequest(ctx context.Context, recipientID, requesterID string) error

	// Unfollow removes the edge, or cancels the pending request when no
	// edge exists. ErrNotFollowingOrRequested when there is neither.
	Unfollow(ctx context.Context, actorID, targetID string) (Outcome, error)

	// Status is a pure read of the pair's state.
	Status(ctx context.Context, actorID, targetID string) (Status, error)

	// Followers and Following apply the visibility policy: a viewer who may
	// not see target gets an empty list, not an error.
	Followers(ctx context.Context, viewerID, targetID string) ([]Account, error)
	Following(ctx context.Context, viewerID, targetID string) ([]Account, error)

	PendingRequests(ctx context.Context, recipientID string) ([]Request, error)
	Counts(ctx context.Context, userID string) (followers, following int64, err error)

	// CanView exposes the visibility predicate to the other services.
	CanView(ctx context.Context, viewerID string, target *Account) (bool, error)
	// Account resolves a target for callers that need the privacy flag.
	Account(ctx context.Context, id string) (*Account, error)
}

type service struct {
	ledger   Ledger
	accounts Directory
	notifier Notifier
	logger   *slog.Logger
}

func NewService(ledger Ledger, accounts Directory, notifier Notifier, logger *slog.Logger) Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		ledger:   ledger,
		accounts: accounts,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *service) RequestFollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, ErrSelfFollow
	}

	target, err := s.accounts.GetAccount(ctx, targetID)
	if err != nil {
		return false, err
	}
	actor, err := s.accounts.GetAccount(ctx, actorID)
	if err != nil {
		return false, err
	}

	if !target.IsPrivate {
		// Public target: none -> following in one step.
		if err := s.ledger.CreateEdge(ctx, actorID, targetID); err != nil {
			return false, err
		}
		s.dispatch(ctx, Event{
			Type:        EventFollowed,
			RecipientID: targetID,
			ActorID:     actorID,
			ActorName:   actor.Username,
		})
		return true, nil
	}

	// Private target: none -> requested. The ledger refuses duplicates and
	// pairs that already carry an edge.
	if err := s.ledger.CreateRequest(ctx, actorID, targetID); err != nil {
		return false, err
	}
	s.dispatch(ctx, Event{
		Type:        EventRequested,
		RecipientID: targetID,
		ActorID:     actorID,
		ActorName:   actor.Username,
	})
	return false, nil
}

func (s *service) AcceptRequest(ctx context.Context, recipientID, requesterID string) error {
	recipient, err := s.accounts.GetAccount(ctx, recipientID)
	if err != nil {
		return err
	}
	if _, err := s.accounts.GetAccount(ctx, requesterID); err != nil {
		return err
	}

	// requested -> following, atomically.
	if err := s.ledger.PromoteRequest(ctx, requesterID, recipientID); err != nil {
		return err
	}
	s.dispatch(ctx, Event{
		Type:        EventAccepted,
		RecipientID: requesterID,
		ActorID:     recipientID,
		ActorName:   recipient.Username,
	})
	return nil
}

func (s *service) RejectRequest(ctx context.Context, recipientID, requesterID string) error {
	if _, err := s.accounts.GetAccount(ctx, requesterID); err != nil {
		return err
	}

	// requested -> none. No edge side effect.
	if err := s.ledger.DeleteRequest(ctx, requesterID, recipientID); err != nil {
		return err
	}
	s.dispatch(ctx, Event{
		Type:        EventRejected,
		RecipientID: requesterID,
		ActorID:     recipientID,
	})
	return nil
}

func (s *service) Unfollow(ctx context.Context, actorID, targetID string) (Outcome, error) {
	if _, err := s.accounts.GetAccount(ctx, targetID); err != nil {
		return "", err
	}

	err := s.ledger.DeleteEdge(ctx, actorID, targetID)
	if err == nil {
		return OutcomeUnfollowed, nil
	}
	if err != ErrNotFollowingOrRequested {
		return "", err
	}

	// No edge: cancelling a pending request counts as unfollow too.
	if err := s.ledger.DeleteRequest(ctx, actorID, targetID); err != nil {
		if err == ErrRequestNotFound {
			return "", ErrNotFollowingOrRequested
		}
		return "", err
	}
	return OutcomeRequestCancelled, nil
}

func (s *service) Status(ctx context.Context, actorID, targetID string) (Status, error) {
	if actorID == targetID {
		return StatusSelf, nil
	}
	if _, err := s.accounts.GetAccount(ctx, targetID); err != nil {
		return "", err
	}

	following, err := s.ledger.HasEdge(ctx, actorID, targetID)
	if err != nil {
		return "", err
	}
	if following {
		return StatusFollowing, nil
	}

	requested, err := s.ledger.HasRequest(ctx, actorID, targetID)
	if err != nil {
		return "", err
	}
	if requested {
		return StatusRequested, nil
	}
	return StatusNotFollowing, nil
}

func (s *service) Followers(ctx context.Context, viewerID, targetID string) ([]Account, error) {
	return s.visibleList(ctx, viewerID, targetID, s.ledger.Followers)
}

func (s *service) Following(ctx context.Context, viewerID, targetID string) ([]Account, error) {
	return s.visibleList(ctx, viewerID, targetID, s.ledger.Following)
}

func (s *service) PendingRequests(ctx context.Context, recipientID string) ([]Request, error) {
	return s.ledger.PendingRequests(ctx, recipientID)
}

func (s *service) Counts(ctx context.Context, userID string) (int64, int64, error) {
	return s.ledger.Counts(ctx, userID)
}

func (s *service) Account(ctx context.Context, id string) (*Account, error) {
	return s.accounts.GetAccount(ctx, id)
}

// visibleList fetches a connection list, collapsing a visibility denial
// into an empty result instead of an error.
func (s *service) visibleList(
	ctx context.Context,
	viewerID, targetID string,
	fetch func(context.Context, string) ([]Account, error),
) ([]Account, error) {
	target, err := s.accounts.GetAccount(ctx, targetID)
	if err != nil {
		return nil, err
	}

	ok, err := s.CanView(ctx, viewerID, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Account{}, nil
	}
	return fetch(ctx, targetID)
}

func (s *service) dispatch(ctx context.Context, events ...Event) {
	s.notifier.Dispatch(ctx, events)
}
