package likes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Post not found"})
	case errors.Is(err, ErrAlreadyLiked):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Already liked"})
	case errors.Is(err, ErrNotLiked):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Not liked"})
	default:
		h.log.Error("likes request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

func postIDParam(c *gin.Context) (int64, bool) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid post id"})
		return 0, false
	}
	return postID, true
}

// POST /posts/:post_id/like
func (h *Handler) Like(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	like, err := h.svc.Like(c.Request.Context(), userID, postID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, like)
}

// DELETE /posts/:post_id/like
func (h *Handler) Unlike(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.Unlike(c.Request.Context(), userID, postID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Unliked"})
}

// GET /posts/:post_id/likes/count
func (h *Handler) Count(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	cnt, err := h.svc.Count(c.Request.Context(), postID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{PostID: postID, Count: cnt})
}

// GET /posts/:post_id/likes/me
func (h *Handler) IsLiked(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	liked, err := h.svc.IsLiked(c.Request.Context(), userID, postID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, LikedResponse{PostID: postID, Liked: liked})
}

// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "likes-service",
	})
}
