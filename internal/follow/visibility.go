package follow

import "context"

// Visible is the visibility policy: the pure rules deciding whether viewer
// may read target's profile, posts and connection lists.
//
//  1. Self always sees own data.
//  2. Public accounts are visible to anyone, including anonymous viewers.
//  3. Private accounts are visible only through a confirmed follow edge;
//     anonymous viewers never pass this branch.
//
// viewerID is empty for anonymous viewers. follows reports whether the
// edge (viewer -> target) exists.
func Visible(viewerID string, target *Account, follows bool) bool {
	if viewerID != "" && viewerID == target.ID {
		return true
	}
	if !target.IsPrivate {
		return true
	}
	if viewerID == "" {
		return false
	}
	return follows
}

// CanView resolves the follow edge and applies Visible. Detail-style reads
// turn a false result into a 403; list-style reads turn it into an empty
// result set.
func (s *service) CanView(ctx context.Context, viewerID string, target *Account) (bool, error) {
	if viewerID == "" || viewerID == target.ID || !target.IsPrivate {
		return Visible(viewerID, target, false), nil
	}
	follows, err := s.ledger.HasEdge(ctx, viewerID, target.ID)
	if err != nil {
		return false, err
	}
	return Visible(viewerID, target, follows), nil
}
