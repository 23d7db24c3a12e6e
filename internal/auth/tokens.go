package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned when a token fails validation.
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	// AccessTTL bounds the lifetime of access tokens.
	AccessTTL = 30 * time.Minute
	// RefreshTTL bounds the lifetime of refresh tokens.
	RefreshTTL = 7 * 24 * time.Hour

	subjectAccess  = "access"
	subjectRefresh = "refresh"
)

// Claims carries the user and device session identity inside a JWT.
// SessionToken ties every issued token to one device session so that
// revoking the session invalidates the tokens minted for it.
type Claims struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 token pairs.
type TokenManager struct {
	secret []byte
}

// NewTokenManager creates a token manager with the given signing secret.
func NewTokenManager(secret []byte) *TokenManager {
	return &TokenManager{secret: secret}
}

// IssuePair mints an access/refresh pair bound to a device session.
func (m *TokenManager) IssuePair(userID, sessionToken string) (*TokenPair, error) {
	now := time.Now()

	access, err := m.sign(userID, sessionToken, subjectAccess, now, AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, sessionToken, subjectRefresh, now, RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) sign(userID, sessionToken, subject string, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:       userID,
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(m.secret)
}

// ParseAccess validates an access token and returns its claims.
func (m *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, subjectAccess)
}

// ParseRefresh validates a refresh token and returns its claims.
func (m *TokenManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, subjectRefresh)
}

func (m *TokenManager) parse(tokenStr, wantSubject string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject != wantSubject {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
