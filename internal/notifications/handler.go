package notifications

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /notifications. ?unread=true filters to unread entries.
func (h *Handler) List(c *gin.Context) {
	ownerID := c.GetHeader("X-User-ID")
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	unreadOnly := c.Query("unread") == "true"
	items, err := h.svc.List(c.Request.Context(), ownerID, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkRead handles POST /notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	ownerID := c.GetHeader("X-User-ID")
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	err := h.svc.MarkRead(c.Request.Context(), c.Param("id"), ownerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Notification marked as read"})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *Handler) MarkAllRead(c *gin.Context) {
	ownerID := c.GetHeader("X-User-ID")
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return
	}

	updated, err := h.svc.MarkAllRead(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "All notifications marked as read", "updated": updated})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "notifications-service",
	})
}
