// Package users serves account profiles with privacy gating and user search.
package users

import (
	"context"
	"errors"
	"fmt"

	"prism/internal/follow"
)

// ErrPrivateAccount is returned when the viewer may not see the target's
// profile. Detail reads surface it as 403; this package never swallows it.
var ErrPrivateAccount = errors.New("this account is private")

// Visibility is the slice of the follow service this package consults.
type Visibility interface {
	CanView(ctx context.Context, viewerID string, target *follow.Account) (bool, error)
	Counts(ctx context.Context, userID string) (followers, following int64, err error)
}

// Service exposes profile reads and updates.
type Service interface {
	// GetProfile returns target's profile if the visibility policy allows
	// viewerID (possibly empty for anonymous) to see it, else
	// ErrPrivateAccount.
	GetProfile(ctx context.Context, viewerID, targetID string) (*Profile, error)

	// OwnUser returns the caller's full account record.
	OwnUser(ctx context.Context, userID string) (*User, error)

	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error)
	Search(ctx context.Context, query string, limit int) ([]Summary, error)
}

type service struct {
	repo       *Repository
	visibility Visibility
}

func NewService(repo *Repository, visibility Visibility) Service {
	return &service{repo: repo, visibility: visibility}
}

func (s *service) GetProfile(ctx context.Context, viewerID, targetID string) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	acc := &follow.Account{ID: u.ID, Username: u.Username, IsPrivate: u.IsPrivate}
	ok, err := s.visibility.CanView(ctx, viewerID, acc)
	if err != nil {
		return nil, fmt.Errorf("visibility check: %w", err)
	}
	if !ok {
		return nil, ErrPrivateAccount
	}

	followers, following, err := s.visibility.Counts(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("follow counts: %w", err)
	}

	return &Profile{
		ID:             u.ID,
		Username:       u.Username,
		Bio:            u.Bio,
		ProfilePic:     u.ProfilePic,
		IsPrivate:      u.IsPrivate,
		FollowersCount: followers,
		FollowingCount: following,
		CreatedAt:      u.CreatedAt,
	}, nil
}

func (s *service) OwnUser(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error) {
	return s.repo.UpdateProfile(ctx, userID, req)
}

func (s *service) Search(ctx context.Context, query string, limit int) ([]Summary, error) {
	return s.repo.Search(ctx, query, limit)
}
