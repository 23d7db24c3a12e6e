package posts

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the posts service HTTP surface.
func SetupRouter(service *Service, log *slog.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	h := NewHandler(service, log)

	r.GET("/health", h.Health)

	postsGroup := r.Group("/posts")
	postsGroup.Use(AuthMiddleware())
	{
		postsGroup.GET("", h.Feed)
		postsGroup.POST("", h.CreatePost)
		postsGroup.PATCH("/:id", h.UpdatePost)
		postsGroup.DELETE("/:id", h.DeletePost)
	}

	// single post reads allow anonymous viewers, public content stays public
	r.GET("/posts/:id", OptionalAuthMiddleware(), h.GetPost)

	users := r.Group("/users")
	users.Use(OptionalAuthMiddleware())
	{
		users.GET("/:user_id/posts", h.GetUserPosts)
	}

	return r
}

// NewHTTPServer wires the posts service router into an http.Server.
func NewHTTPServer(service *Service, log *slog.Logger) *http.Server {
	port := getEnv("POSTS_SERVICE_PORT", "8084")

	return &http.Server{
		Addr:         ":" + port,
		Handler:      SetupRouter(service, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
