package follow

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes the follow workflow over HTTP. The gateway injects
// X-User-ID for authenticated callers; list endpoints also accept anonymous
// requests and let the visibility policy decide.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Follow handles POST /users/:user_id/follow.
func (h *Handler) Follow(c *gin.Context) {
	actorID := c.GetHeader("X-User-ID")
	if actorID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}
	targetID := c.Param("user_id")

	followed, err := h.svc.RequestFollow(c.Request.Context(), actorID, targetID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if followed {
		c.JSON(http.StatusOK, gin.H{"followed": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Follow request sent"})
}

// Unfollow handles DELETE /users/:user_id/follow. It also cancels a pending
// request when no edge exists yet.
func (h *Handler) Unfollow(c *gin.Context) {
	actorID := c.GetHeader("X-User-ID")
	if actorID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}
	targetID := c.Param("user_id")

	outcome, err := h.svc.Unfollow(c.Request.Context(), actorID, targetID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	switch outcome {
	case OutcomeRequestCancelled:
		c.JSON(http.StatusOK, gin.H{"detail": "Follow request cancelled"})
	default:
		c.JSON(http.StatusOK, gin.H{"detail": "Unfollowed"})
	}
}

// Accept handles POST /follow-requests/accept/:requester_id.
func (h *Handler) Accept(c *gin.Context) {
	recipientID := c.GetHeader("X-User-ID")
	if recipientID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}
	requesterID := c.Param("requester_id")

	if err := h.svc.AcceptRequest(c.Request.Context(), recipientID, requesterID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Follow request accepted"})
}

// Reject handles POST /follow-requests/reject/:requester_id.
func (h *Handler) Reject(c *gin.Context) {
	recipientID := c.GetHeader("X-User-ID")
	if recipientID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}
	requesterID := c.Param("requester_id")

	if err := h.svc.RejectRequest(c.Request.Context(), recipientID, requesterID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Follow request rejected"})
}

// Pending handles GET /follow-requests/pending.
func (h *Handler) Pending(c *gin.Context) {
	recipientID := c.GetHeader("X-User-ID")
	if recipientID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	reqs, err := h.svc.PendingRequests(c.Request.Context(), recipientID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// Status handles GET /users/:user_id/follow-status.
func (h *Handler) Status(c *gin.Context) {
	actorID := c.GetHeader("X-User-ID")
	if actorID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}
	targetID := c.Param("user_id")

	status, err := h.svc.Status(c.Request.Context(), actorID, targetID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{UserID: targetID, Status: status})
}

// Followers handles GET /users/:user_id/followers. Anonymous viewers are
// allowed; a blocked viewer gets an empty list, never an error.
func (h *Handler) Followers(c *gin.Context) {
	viewerID := c.GetHeader("X-User-ID")
	targetID := c.Param("user_id")

	accounts, err := h.svc.Followers(c.Request.Context(), viewerID, targetID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": accounts})
}

// Following handles GET /users/:user_id/following.
func (h *Handler) Following(c *gin.Context) {
	viewerID := c.GetHeader("X-User-ID")
	targetID := c.Param("user_id")

	accounts, err := h.svc.Following(c.Request.Context(), viewerID, targetID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": accounts})
}

// Counts handles GET /users/:user_id/follow-counts.
func (h *Handler) Counts(c *gin.Context) {
	targetID := c.Param("user_id")

	followers, following, err := h.svc.Counts(c.Request.Context(), targetID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountsResponse{UserID: targetID, Followers: followers, Following: following})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "follow-service",
	})
}

// writeError maps workflow errors onto the wire contract: not-found 404,
// conflicts and invalid transitions 400, everything else 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
	case errors.Is(err, ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "No follow request found"})
	case errors.Is(err, ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "You cannot follow yourself"})
	case errors.Is(err, ErrAlreadyFollowing):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Already following this user"})
	case errors.Is(err, ErrAlreadyRequested):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Follow request already sent"})
	case errors.Is(err, ErrNotFollowingOrRequested):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Not following or requested"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}
