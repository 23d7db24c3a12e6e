package likes

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

func SetupRouter(svc Service, log *slog.Logger) *gin.Engine {
	r := gin.Default()
	h := NewHandler(svc, log)

	r.GET("/health", h.Health)

	posts := r.Group("/posts")
	{
		posts.POST("/:post_id/like", h.Like)
		posts.DELETE("/:post_id/like", h.Unlike)
		posts.GET("/:post_id/likes/count", h.Count)
		posts.GET("/:post_id/likes/me", h.IsLiked)
	}

	return r
}

// NewHTTPServer wires the likes service router into an http.Server.
func NewHTTPServer(svc Service, log *slog.Logger) *http.Server {
	port := os.Getenv("LIKES_SERVICE_PORT")
	if port == "" {
		port = "8085"
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      SetupRouter(svc, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
