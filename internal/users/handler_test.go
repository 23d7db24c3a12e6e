package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakeService struct {
	getProfileFunc func(ctx context.Context, viewerID, targetID string) (*Profile, error)
	ownUserFunc    func(ctx context.Context, userID string) (*User, error)
}

func (f *fakeService) GetProfile(ctx context.Context, viewerID, targetID string) (*Profile, error) {
	if f.getProfileFunc != nil {
		return f.getProfileFunc(ctx, viewerID, targetID)
	}
	return nil, ErrNotFound
}

func (f *fakeService) OwnUser(ctx context.Context, userID string) (*User, error) {
	if f.ownUserFunc != nil {
		return f.ownUserFunc(ctx, userID)
	}
	return nil, ErrNotFound
}

func (f *fakeService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error) {
	return nil, ErrNotFound
}

func (f *fakeService) Search(ctx context.Context, query string, limit int) ([]Summary, error) {
	return []Summary{}, nil
}

func serveGetUser(svc Service, userID, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.GET("/users/:user_id", h.GetUser)
	r.GET("/profile", h.GetOwnProfile)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetUser_PrivateAccountReturns403(t *testing.T) {
	svc := &fakeService{
		getProfileFunc: func(ctx context.Context, viewerID, targetID string) (*Profile, error) {
			return nil, ErrPrivateAccount
		},
	}

	w := serveGetUser(svc, "stranger", "/users/private-user")

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["detail"] != "This account is private" {
		t.Errorf("Unexpected detail: %v", body["detail"])
	}
}

func TestGetUser_UnknownUserReturns404(t *testing.T) {
	svc := &fakeService{}

	w := serveGetUser(svc, "viewer", "/users/ghost")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetUser_VisibleProfile(t *testing.T) {
	svc := &fakeService{
		getProfileFunc: func(ctx context.Context, viewerID, targetID string) (*Profile, error) {
			return &Profile{
				ID:             targetID,
				Username:       "alice",
				FollowersCount: 3,
				FollowingCount: 5,
			}, nil
		},
	}

	w := serveGetUser(svc, "", "/users/alice-id")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var profile Profile
	if err := json.NewDecoder(w.Body).Decode(&profile); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if profile.Username != "alice" {
		t.Errorf("Expected username alice, got %s", profile.Username)
	}
	if profile.FollowersCount != 3 || profile.FollowingCount != 5 {
		t.Errorf("Wrong counts: %d/%d", profile.FollowersCount, profile.FollowingCount)
	}
}

func TestGetOwnProfile_RequiresAuth(t *testing.T) {
	svc := &fakeService{}

	w := serveGetUser(svc, "", "/profile")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}
