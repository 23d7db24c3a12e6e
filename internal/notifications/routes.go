package notifications

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

func SetupRouter(svc Service) *gin.Engine {
	r := gin.Default()
	h := NewHandler(svc)

	r.GET("/health", h.Health)

	n := r.Group("/notifications")
	{
		n.GET("", h.List)
		n.POST("/:id/read", h.MarkRead)
		n.POST("/read-all", h.MarkAllRead)
	}

	return r
}

// NewHTTPServer wraps the router in an http.Server with shared timeouts.
func NewHTTPServer(svc Service) *http.Server {
	port := os.Getenv("NOTIFICATIONS_SERVICE_PORT")
	if port == "" {
		port = "8087"
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      SetupRouter(svc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
