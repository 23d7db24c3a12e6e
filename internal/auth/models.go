package auth

// OTP purposes. The purpose is part of the Redis key so a code issued
// for one flow can never be replayed against another.
const (
	PurposeRegister = "register"
	PurposeLogin    = "login"
	PurposeReset    = "reset"
)

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// VerifyOTPRequest confirms the code sent to an email address after registration.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// LoginRequest is the payload for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Verify2FARequest completes a login that required a second factor.
type Verify2FARequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ResetRequest starts the password reset flow.
type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetConfirmRequest completes the password reset flow.
type ResetConfirmRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// TokenPair is an access/refresh token pair bound to one device session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult is what a login attempt produces. When the account has
// two-factor enabled the tokens are withheld until the code is verified.
type LoginResult struct {
	TwoFactorRequired bool       `json:"two_factor_required"`
	Tokens            *TokenPair `json:"tokens,omitempty"`
	UserID            string     `json:"user_id,omitempty"`
}
