package users

import "time"

// User is a registered account.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Bio              string    `json:"bio"`
	ProfilePic       string    `json:"profile_pic"`
	IsVerified       bool      `json:"is_verified"`
	IsPrivate        bool      `json:"is_private"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Profile is the cross-user view of an account. Email never leaves the
// owner's own profile endpoint.
type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio"`
	ProfilePic     string    `json:"profile_pic"`
	IsPrivate      bool      `json:"is_private"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// UpdateProfileRequest is the PATCH /profile body. Pointer fields
// distinguish "absent" from zero values.
type UpdateProfileRequest struct {
	Bio              *string `json:"bio,omitempty"`
	ProfilePic       *string `json:"profile_pic,omitempty"`
	IsPrivate        *bool   `json:"is_private,omitempty"`
	TwoFactorEnabled *bool   `json:"two_factor_enabled,omitempty"`
}

// Summary is the search-result shape.
type Summary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
	IsPrivate  bool   `json:"is_private"`
}
