package posts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"prism/internal/follow"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for posts.
type Handler struct {
	service *Service
	log     *slog.Logger
}

// NewHandler creates a posts handler.
func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Post not found"})
	case errors.Is(err, follow.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not own this post"})
	case errors.Is(err, ErrPrivate):
		c.JSON(http.StatusForbidden, gin.H{"detail": "This account is private"})
	default:
		h.log.Error("posts request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

// CreatePost handles POST /posts.
func (h *Handler) CreatePost(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost handles GET /posts/:id.
func (h *Handler) GetPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid post id"})
		return
	}

	viewerID, _ := GetUserID(c)
	post, err := h.service.GetPost(c.Request.Context(), viewerID, postID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Feed handles GET /posts.
func (h *Handler) Feed(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	response, err := h.service.Feed(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetUserPosts handles GET /users/:user_id/posts.
func (h *Handler) GetUserPosts(c *gin.Context) {
	viewerID, _ := GetUserID(c)
	targetID := c.Param("user_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	response, err := h.service.GetUserPosts(c.Request.Context(), viewerID, targetID, page, pageSize)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// UpdatePost handles PATCH /posts/:id.
func (h *Handler) UpdatePost(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid post id"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Caption == nil && req.ImageURL == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Nothing to update"})
		return
	}

	post, err := h.service.UpdatePost(c.Request.Context(), postID, userID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /posts/:id.
func (h *Handler) DeletePost(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid post id"})
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), postID, userID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Post deleted"})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
