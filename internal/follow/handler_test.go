package follow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(accounts ...*Account) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(accounts...)
	r := gin.New()
	h := NewHandler(svc)

	r.POST("/users/:user_id/follow", h.Follow)
	r.DELETE("/users/:user_id/follow", h.Unfollow)
	r.GET("/users/:user_id/follow-status", h.Status)
	r.GET("/users/:user_id/followers", h.Followers)
	r.GET("/users/:user_id/following", h.Following)
	r.GET("/users/:user_id/follow-counts", h.Counts)
	r.GET("/follow-requests/pending", h.Pending)
	r.POST("/follow-requests/accept/:requester_id", h.Accept)
	r.POST("/follow-requests/reject/:requester_id", h.Reject)

	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, userID string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return w, body
}

func TestFollowEndpoint_PublicTarget(t *testing.T) {
	r := newTestRouter(alice, bob)

	w, body := doRequest(t, r, http.MethodPost, "/users/alice/follow", "bob")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body["followed"] != true {
		t.Errorf("Expected followed=true, got %v", body["followed"])
	}
}

func TestFollowEndpoint_PrivateTarget(t *testing.T) {
	r := newTestRouter(alice, bob)

	w, body := doRequest(t, r, http.MethodPost, "/users/bob/follow", "alice")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body["detail"] != "Follow request sent" {
		t.Errorf("Expected follow request detail, got %v", body["detail"])
	}
}

func TestFollowEndpoint_RequiresAuth(t *testing.T) {
	r := newTestRouter(alice, bob)

	w, _ := doRequest(t, r, http.MethodPost, "/users/alice/follow", "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestFollowEndpoint_SelfFollow(t *testing.T) {
	r := newTestRouter(alice)

	w, body := doRequest(t, r, http.MethodPost, "/users/alice/follow", "alice")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if body["detail"] != "You cannot follow yourself" {
		t.Errorf("Unexpected detail: %v", body["detail"])
	}
}

func TestFollowEndpoint_UnknownTarget(t *testing.T) {
	r := newTestRouter(alice)

	w, body := doRequest(t, r, http.MethodPost, "/users/ghost/follow", "alice")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if body["detail"] != "User not found" {
		t.Errorf("Unexpected detail: %v", body["detail"])
	}
}

func TestFollowEndpoint_DuplicateRequest(t *testing.T) {
	r := newTestRouter(alice, bob)

	doRequest(t, r, http.MethodPost, "/users/bob/follow", "alice")
	w, body := doRequest(t, r, http.MethodPost, "/users/bob/follow", "alice")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if body["detail"] != "Follow request already sent" {
		t.Errorf("Unexpected detail: %v", body["detail"])
	}
}

func TestAcceptEndpoint(t *testing.T) {
	r := newTestRouter(alice, bob)

	doRequest(t, r, http.MethodPost, "/users/bob/follow", "alice")
	w, body := doRequest(t, r, http.MethodPost, "/follow-requests/accept/alice", "bob")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body["detail"] != "Follow request accepted" {
		t.Errorf("Unexpected detail: %v", body["detail"])
	}

	w, body = doRequest(t, r, http.MethodGet, "/users/bob/follow-status", "alice")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body["status"] != "following" {
		t.Errorf("Expected status following, got %v", body["status"])
	}
}

func TestAcceptEndpoint_NoPending(t *testing.T) {
	r := newTestRouter(alice, bob)

	w, body := doRequest(t, r, http.MethodPost, "/follow-requests/accept/alice", "bob")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if body["detail"] != "No follow request found" {
		t.Errorf("Unexpected detail: %v", body["detail"])
	}
}

func TestRejectEndpoint(t *testing.T) {
	r := newTestRouter(alice, bob)

	doRequest(t, r, http.MethodPost, "/users/bob/follow", "alice")
	w, body := doRequest(t, r, http.MethodPost, "/follow-requests/reject/alice", "bob")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body["detail"] != "Follow request rejected" {
		t.Errorf("Unexpected detail: %v", body["detail"])
	}

	_, body = doRequest(t, r, http.MethodGet, "/users/bob/follow-status", "alice")
	if body["status"] != "not_following" {
		t.Errorf("Expected status not_following after reject, got %v", body["status"])
	}
}

func TestUnfollowEndpoint_CancelsRequest(t *testing.T) {
	r := newTestRouter(alice, bob)

	doRequest(t, r, http.MethodPost, "/users/bob/follow", "alice")
	w, body := doRequest(t, r, http.MethodDelete, "/users/bob/follow", "alice")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body["detail"] != "Follow request cancelled" {
		t.Errorf("Unexpected detail: %v", body["detail"])
	}
}

func TestUnfollowEndpoint_NothingToUndo(t *testing.T) {
	r := newTestRouter(alice, bob)

	w, body := doRequest(t, r, http.MethodDelete, "/users/alice/follow", "bob")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if body["detail"] != "Not following or requested" {
		t.Errorf("Unexpected detail: %v", body["detail"])
	}
}

func TestPendingEndpoint(t *testing.T) {
	r := newTestRouter(alice, bob, carol)

	doRequest(t, r, http.MethodPost, "/users/bob/follow", "alice")
	doRequest(t, r, http.MethodPost, "/users/bob/follow", "carol")

	w, body := doRequest(t, r, http.MethodGet, "/follow-requests/pending", "bob")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	requests, ok := body["requests"].([]interface{})
	if !ok {
		t.Fatalf("Expected requests array, got %T", body["requests"])
	}
	if len(requests) != 2 {
		t.Errorf("Expected 2 pending requests, got %d", len(requests))
	}
}

func TestFollowersEndpoint_EmptyForBlockedViewer(t *testing.T) {
	r := newTestRouter(alice, bob, carol)

	doRequest(t, r, http.MethodPost, "/users/bob/follow", "alice")
	doRequest(t, r, http.MethodPost, "/follow-requests/accept/alice", "bob")

	// carol may not see bob: empty list, status 200.
	w, body := doRequest(t, r, http.MethodGet, "/users/bob/followers", "carol")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	followers, ok := body["followers"].([]interface{})
	if !ok {
		t.Fatalf("Expected followers array, got %T", body["followers"])
	}
	if len(followers) != 0 {
		t.Errorf("Expected empty followers for blocked viewer, got %d", len(followers))
	}

	// Anonymous viewers are blocked the same way.
	w, body = doRequest(t, r, http.MethodGet, "/users/bob/followers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	followers, _ = body["followers"].([]interface{})
	if len(followers) != 0 {
		t.Errorf("Expected empty followers for anonymous viewer, got %d", len(followers))
	}
}

func TestCountsEndpoint_PublicForAnyone(t *testing.T) {
	r := newTestRouter(alice, bob)

	doRequest(t, r, http.MethodPost, "/users/bob/follow", "alice")
	doRequest(t, r, http.MethodPost, "/follow-requests/accept/alice", "bob")

	w, body := doRequest(t, r, http.MethodGet, "/users/bob/follow-counts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body["followers"] != float64(1) {
		t.Errorf("Expected 1 follower, got %v", body["followers"])
	}
	if body["following"] != float64(0) {
		t.Errorf("Expected 0 following, got %v", body["following"])
	}
}
