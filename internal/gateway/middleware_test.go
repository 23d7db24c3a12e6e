package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"prism/internal/auth"

	"github.com/gin-gonic/gin"
)

// Mock session checker for testing
type mockSessionChecker struct {
	activeFunc func(ctx context.Context, sessionToken string) (bool, error)
}

func (m *mockSessionChecker) Active(ctx context.Context, sessionToken string) (bool, error) {
	if m.activeFunc != nil {
		return m.activeFunc(ctx, sessionToken)
	}
	return true, nil
}

var testTokens = auth.NewTokenManager([]byte("test-secret-test-secret-test-1234"))

func newAuthRouter(sessions SessionChecker, required bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(testTokens, sessions, required))
	r.GET("/test", func(c *gin.Context) {
		userIDCtx, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{
			"user_id":        userIDCtx,
			"header_user":    c.Request.Header.Get("X-User-ID"),
			"header_session": c.Request.Header.Get("X-Session-Token"),
		})
	})
	return r
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	pair, err := testTokens.IssuePair("test-user-id", "session-token-1")
	if err != nil {
		t.Fatalf("Failed to issue tokens: %v", err)
	}

	r := newAuthRouter(&mockSessionChecker{}, true)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["user_id"] != "test-user-id" {
		t.Errorf("Expected user_id to be test-user-id, got %v", response["user_id"])
	}
	if response["header_user"] != "test-user-id" {
		t.Errorf("Expected X-User-ID to be injected, got %v", response["header_user"])
	}
	if response["header_session"] != "session-token-1" {
		t.Errorf("Expected X-Session-Token to be injected, got %v", response["header_session"])
	}
}

func TestJWTAuthMiddleware_MissingTokenRequired(t *testing.T) {
	r := newAuthRouter(&mockSessionChecker{}, true)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestJWTAuthMiddleware_MissingTokenOptional(t *testing.T) {
	r := newAuthRouter(&mockSessionChecker{}, false)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for anonymous pass-through, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["header_user"] != "" {
		t.Errorf("Anonymous request must carry no identity, got %v", response["header_user"])
	}
}

func TestJWTAuthMiddleware_StripsClientIdentityHeaders(t *testing.T) {
	r := newAuthRouter(&mockSessionChecker{}, false)

	// A client trying to impersonate by setting identity headers directly.
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-User-ID", "forged-user")
	req.Header.Set("X-Session-Token", "forged-session")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["header_user"] != "" {
		t.Errorf("Forged X-User-ID must be stripped, got %v", response["header_user"])
	}
	if response["header_session"] != "" {
		t.Errorf("Forged X-Session-Token must be stripped, got %v", response["header_session"])
	}
}

func TestJWTAuthMiddleware_InvalidToken(t *testing.T) {
	r := newAuthRouter(&mockSessionChecker{}, true)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestJWTAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	pair, err := testTokens.IssuePair("test-user-id", "session-token-1")
	if err != nil {
		t.Fatalf("Failed to issue tokens: %v", err)
	}

	r := newAuthRouter(&mockSessionChecker{}, true)

	// A refresh token is not valid as an access token.
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestJWTAuthMiddleware_RevokedSession(t *testing.T) {
	pair, err := testTokens.IssuePair("test-user-id", "session-token-1")
	if err != nil {
		t.Fatalf("Failed to issue tokens: %v", err)
	}

	sessions := &mockSessionChecker{
		activeFunc: func(ctx context.Context, sessionToken string) (bool, error) {
			return false, nil
		},
	}
	r := newAuthRouter(sessions, true)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["detail"] != "Session revoked" {
		t.Errorf("Unexpected detail: %v", response["detail"])
	}
}

func TestJWTAuthMiddleware_LivenessCheckError(t *testing.T) {
	pair, err := testTokens.IssuePair("test-user-id", "session-token-1")
	if err != nil {
		t.Fatalf("Failed to issue tokens: %v", err)
	}

	sessions := &mockSessionChecker{
		activeFunc: func(ctx context.Context, sessionToken string) (bool, error) {
			return false, errors.New("redis down")
		},
	}
	r := newAuthRouter(sessions, true)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	// Check CORS headers
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("Expected CORS Allow-Origin header")
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("Expected CORS Allow-Credentials header")
	}
}

func TestCORSMiddleware_OPTIONS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware())
	r.OPTIONS("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	// OPTIONS should return 204 No Content
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 for OPTIONS, got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id")})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID response header")
	}
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
