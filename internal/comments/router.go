package comments

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

	r.POST("/posts/:post_id/comments", h.Create)
	r.GET("/posts/:post_id/comments", h.ListByPost)
	r.DELETE("/comments/:comment_id", h.Delete)

	return r
}

// NewHTTPServer wires the comments service router into an http.Server.
func NewHTTPServer(svc Service, log *slog.Logger) *http.Server {
	port := os.Getenv("COMMENTS_SERVICE_PORT")
	if port == "" {
		port = "8086"
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      SetupRouter(svc, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
