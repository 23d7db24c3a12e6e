package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"prism/internal/follow"
)

// Dispatcher translates follow workflow events into notification log writes.
// It implements follow.Notifier, keeping the workflow transitions free of
// any direct dependency on this package's store.
type Dispatcher struct {
	svc    Service
	logger *slog.Logger
}

func NewDispatcher(svc Service, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{svc: svc, logger: logger}
}

// Dispatch records each event. Emission failures are logged, not propagated:
// a lost notification must not roll back a completed state transition.
func (d *Dispatcher) Dispatch(ctx context.Context, events []follow.Event) {
	for _, e := range events {
		if err := d.dispatchOne(ctx, e); err != nil {
			d.logger.Error("failed to dispatch follow event",
				"type", e.Type,
				"recipient", e.RecipientID,
				"actor", e.ActorID,
				"error", err)
		}
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, e follow.Event) error {
	switch e.Type {
	case follow.EventRequested:
		msg := fmt.Sprintf("%s requested to follow you", e.ActorName)
		return d.svc.Emit(ctx, e.RecipientID, e.ActorID, TypeFollowRequest, msg, nil)

	case follow.EventFollowed:
		msg := fmt.Sprintf("%s started following you", e.ActorName)
		return d.svc.Emit(ctx, e.RecipientID, e.ActorID, TypeFollowAccept, msg, nil)

	case follow.EventAccepted:
		// The requester learns about the acceptance, and the original
		// follow_request notification on the recipient's side is retired.
		msg := fmt.Sprintf("%s accepted your follow request", e.ActorName)
		if err := d.svc.Emit(ctx, e.RecipientID, e.ActorID, TypeFollowAccept, msg, nil); err != nil {
			return err
		}
		return d.svc.MarkPairRead(ctx, e.ActorID, e.RecipientID, TypeFollowRequest)

	case follow.EventRejected:
		// No notification for a rejection; just retire the request entry.
		return d.svc.MarkPairRead(ctx, e.ActorID, e.RecipientID, TypeFollowRequest)

	default:
		return fmt.Errorf("unknown follow event type %q", e.Type)
	}
}
