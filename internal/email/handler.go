package email

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handler exposes health and stats endpoints for the email worker.
type Handler struct {
	redis  *redis.Client
	store  *IdempotencyStore
	logger *slog.Logger
}

// NewHandler creates an email service handler.
func NewHandler(redisClient *redis.Client, store *IdempotencyStore, logger *slog.Logger) *Handler {
	return &Handler{
		redis:  redisClient,
		store:  store,
		logger: logger,
	}
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	redisStatus := "connected"
	if err := h.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "disconnected"
		h.logger.Error("redis health check failed", "error", err)
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if redisStatus != "connected" {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"service": "email-service",
		"redis":   redisStatus,
	})
}

// Stats handles GET /stats.
func (h *Handler) Stats(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"idempotency_records": count,
		"ttl_hours":           24,
	})
}

// SetupRouter builds the email worker's HTTP surface.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()
	r.GET("/health", h.HealthCheck)
	r.GET("/stats", h.Stats)
	return r
}

// NewHTTPServer wires the email service router into an http.Server.
func NewHTTPServer(h *Handler) *http.Server {
	port := os.Getenv("EMAIL_SERVICE_PORT")
	if port == "" {
		port = "8088"
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      SetupRouter(h),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
