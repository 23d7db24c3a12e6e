// Package auth implements password authentication for the auth service:
// registration with email verification, login with optional two-factor
// codes, password reset, and JWT pairs bound to device sessions.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"prism/internal/devices"
	"prism/internal/session"
	"prism/internal/users"

	"golang.org/x/crypto/bcrypt"
)

// OTPTTL defines how long one-time codes remain valid.
const OTPTTL = 10 * time.Minute

var (
	// ErrInvalidCode is returned when a one-time code is wrong or expired.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotVerified is returned when the account email is not yet confirmed.
	ErrNotVerified = errors.New("email not verified")
	// ErrSessionRevoked is returned when the device session behind a token is gone.
	ErrSessionRevoked = errors.New("device session revoked")
)

// UserStore is the slice of the users repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *users.User, passwordHash string) error
	GetByID(ctx context.Context, id string) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	PasswordHash(ctx context.Context, id string) (string, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	MarkVerified(ctx context.Context, id string) error
}

// Mailer delivers one-time codes, either directly or through the event bus.
type Mailer interface {
	SendOTP(ctx context.Context, email, code, purpose string) error
}

// Service defines the authentication operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*users.User, error)
	VerifyRegistration(ctx context.Context, email, code string) error
	Login(ctx context.Context, req LoginRequest, device devices.Info) (*LoginResult, error)
	Verify2FA(ctx context.Context, email, code string, device devices.Info) (*LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, req ResetConfirmRequest) error
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, sessionToken string) error
	LogoutOthers(ctx context.Context, userID, sessionToken string) (int, error)
}

type service struct {
	userStore UserStore
	codeStore session.Store
	devices   devices.Service
	tokens    *TokenManager
	mailer    Mailer
	log       *slog.Logger
}

// NewService creates an authentication service.
func NewService(userStore UserStore, codeStore session.Store, deviceSvc devices.Service, tokens *TokenManager, mailer Mailer, log *slog.Logger) Service {
	return &service{
		userStore: userStore,
		codeStore: codeStore,
		devices:   deviceSvc,
		tokens:    tokens,
		mailer:    mailer,
		log:       log,
	}
}

func otpKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

// Register creates an unverified account and emails a confirmation code.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &users.User{
		Username:  req.Username,
		Email:     req.Email,
		IsPrivate: true,
	}
	if err := s.userStore.Create(ctx, u, string(hash)); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, req.Email, PurposeRegister); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyRegistration checks the registration code and activates the account.
func (s *service) VerifyRegistration(ctx context.Context, email, code string) error {
	if err := s.consumeOTP(ctx, email, code, PurposeRegister); err != nil {
		return err
	}

	u, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.userStore.MarkVerified(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// Login checks the password. Accounts with two-factor enabled get a code
// by email and no tokens until Verify2FA; everyone else gets a token pair
// bound to a fresh device session.
func (s *service) Login(ctx context.Context, req LoginRequest, device devices.Info) (*LoginResult, error) {
	u, err := s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	hash, err := s.userStore.PasswordHash(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return nil, ErrNotVerified
	}

	if u.TwoFactorEnabled {
		if err := s.issueOTP(ctx, u.Email, PurposeLogin); err != nil {
			return nil, err
		}
		return &LoginResult{TwoFactorRequired: true}, nil
	}

	return s.startSession(ctx, u.ID, device)
}

// Verify2FA completes a two-factor login.
func (s *service) Verify2FA(ctx context.Context, email, code string, device devices.Info) (*LoginResult, error) {
	if err := s.consumeOTP(ctx, email, code, PurposeLogin); err != nil {
		return nil, err
	}

	u, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, u.ID, device)
}

// RequestPasswordReset emails a reset code. Unknown addresses succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.log.Debug("password reset requested for unknown email")
			return nil
		}
		return err
	}
	return s.issueOTP(ctx, email, PurposeReset)
}

// ConfirmPasswordReset checks the reset code and replaces the password.
// All other device sessions are closed since the password change usually
// means the old credential is considered compromised.
func (s *service) ConfirmPasswordReset(ctx context.Context, req ResetConfirmRequest) error {
	if err := s.consumeOTP(ctx, req.Email, req.Code, PurposeReset); err != nil {
		return err
	}

	u, err := s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userStore.SetPasswordHash(ctx, u.ID, string(hash)); err != nil {
		return err
	}

	if _, err := s.devices.LogoutOthers(ctx, u.ID, ""); err != nil {
		s.log.Warn("failed to close sessions after password reset", "error", err)
	}
	return nil
}

// Refresh validates a refresh token, renews its device session and mints
// a new pair. A revoked session rejects the refresh even when the token
// itself is still within its lifetime.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	alive, err := s.devices.Active(ctx, claims.SessionToken)
	if err != nil {
		return nil, err
	}
	if !alive {
		return nil, ErrSessionRevoked
	}

	if err := s.devices.Renew(ctx, claims.SessionToken); err != nil {
		if errors.Is(err, devices.ErrNotFound) {
			return nil, ErrSessionRevoked
		}
		return nil, err
	}
	return s.tokens.IssuePair(claims.UserID, claims.SessionToken)
}

// Logout closes the current device session.
func (s *service) Logout(ctx context.Context, sessionToken string) error {
	err := s.devices.LogoutByToken(ctx, sessionToken)
	if errors.Is(err, devices.ErrNotFound) {
		return nil
	}
	return err
}

// LogoutOthers closes every session except the current one.
func (s *service) LogoutOthers(ctx context.Context, userID, sessionToken string) (int, error) {
	return s.devices.LogoutOthers(ctx, userID, sessionToken)
}

func (s *service) startSession(ctx context.Context, userID string, device devices.Info) (*LoginResult, error) {
	d, err := s.devices.Register(ctx, userID, device)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(userID, d.SessionToken)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &LoginResult{Tokens: pair, UserID: userID}, nil
}

func (s *service) issueOTP(ctx context.Context, email, purpose string) error {
	code := generateSixDigitCode()

	if err := s.codeStore.Set(ctx, otpKey(purpose, email), code, OTPTTL); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	if err := s.mailer.SendOTP(ctx, email, code, purpose); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}
	return nil
}

func (s *service) consumeOTP(ctx context.Context, email, code, purpose string) error {
	key := otpKey(purpose, email)
	stored, err := s.codeStore.Get(ctx, key)
	if err != nil {
		return ErrInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	if err := s.codeStore.Delete(ctx, key); err != nil && !errors.Is(err, session.ErrNotFound) {
		s.log.Warn("failed to delete used code", "error", err)
	}
	return nil
}

// generateSixDigitCode returns a zero-padded random code in [000000, 999999].
func generateSixDigitCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("failed to generate code: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}
