package users

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

	r.GET("/profile", h.GetOwnProfile)
	r.PATCH("/profile", h.UpdateProfile)

	r.GET("/users", h.Search)
	r.GET("/users/:user_id", h.GetUser)

	return r
}

// NewHTTPServer wraps the router in an http.Server with shared timeouts.
func NewHTTPServer(svc Service) *http.Server {
	port := os.Getenv("USERS_SERVICE_PORT")
	if port == "" {
		port = "8082"
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      SetupRouter(svc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
