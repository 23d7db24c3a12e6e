package files

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the files service.
type Handler struct {
	service *Service
}

// NewHandler creates a files handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GenerateUploadURL handles POST /files/upload-url.
func (h *Handler) GenerateUploadURL(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	var req GenerateUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	response, err := h.service.GenerateUploadURL(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

// GenerateDownloadURL handles POST /files/download-url.
func (h *Handler) GenerateDownloadURL(c *gin.Context) {
	var req GenerateDownloadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	response, err := h.service.GenerateDownloadURL(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

// DeleteFile handles DELETE /files/:key.
func (h *Handler) DeleteFile(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	if err := h.service.DeleteFile(c.Request.Context(), userID, c.Param("key")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "File deleted"})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	if err := h.service.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "files-service",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "files-service",
	})
}
