package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssuePair_RoundTrip(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret-test-secret-test-1234"))

	pair, err := tm.IssuePair("user-1", "session-1")
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("Expected both tokens to be issued")
	}

	claims, err := tm.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", claims.UserID)
	}
	if claims.SessionToken != "session-1" {
		t.Errorf("Expected session-1, got %s", claims.SessionToken)
	}

	claims, err = tm.ParseRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ParseRefresh failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", claims.UserID)
	}
}

func TestParseAccess_RejectsRefreshToken(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret-test-secret-test-1234"))

	pair, err := tm.IssuePair("user-1", "session-1")
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	if _, err := tm.ParseAccess(pair.RefreshToken); err != ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid for a refresh token, got %v", err)
	}
	if _, err := tm.ParseRefresh(pair.AccessToken); err != ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid for an access token, got %v", err)
	}
}

func TestParseAccess_RejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret-test-secret-test-1234"))
	other := NewTokenManager([]byte("another-secret-another-secret-99"))

	pair, err := tm.IssuePair("user-1", "session-1")
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	if _, err := other.ParseAccess(pair.AccessToken); err != ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid for wrong secret, got %v", err)
	}
}

func TestParseAccess_RejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret-test-secret-test-1234")
	tm := NewTokenManager(secret)

	claims := Claims{
		UserID:       "user-1",
		SessionToken: "session-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "access",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := tm.ParseAccess(token); err != ErrTokenExpired {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestParseAccess_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret-test-secret-test-1234"))

	if _, err := tm.ParseAccess("not-a-token"); err != ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid, got %v", err)
	}
}
