package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// GetUser handles GET /users/:user_id. Anonymous viewers are allowed; the
// visibility policy decides whether the profile is served or rejected.
func (h *Handler) GetUser(c *gin.Context) {
	viewerID := c.GetHeader("X-User-ID")
	targetID := c.Param("user_id")

	profile, err := h.svc.GetProfile(c.Request.Context(), viewerID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		case errors.Is(err, ErrPrivateAccount):
			c.JSON(http.StatusForbidden, gin.H{"detail": "This account is private"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetOwnProfile handles GET /profile.
func (h *Handler) GetOwnProfile(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	u, err := h.svc.OwnUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateProfile handles PATCH /profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	u, err := h.svc.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// Search handles GET /users?q=...&limit=...
func (h *Handler) Search(c *gin.Context) {
	if c.GetHeader("X-User-ID") == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.svc.Search(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": results})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "users-service",
	})
}
