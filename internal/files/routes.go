package files

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the files service HTTP surface.
func SetupRouter(service *Service) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	h := NewHandler(service)

	r.GET("/health", h.Health)

	filesGroup := r.Group("/files")
	{
		filesGroup.POST("/upload-url", h.GenerateUploadURL)
		filesGroup.POST("/download-url", h.GenerateDownloadURL)
		filesGroup.DELETE("/:key", h.DeleteFile)
	}

	return r
}

// NewHTTPServer wires the files service router into an http.Server.
func NewHTTPServer(service *Service) *http.Server {
	port := os.Getenv("FILES_SERVICE_PORT")
	if port == "" {
		port = "8089"
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      SetupRouter(service),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
