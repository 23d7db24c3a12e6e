package follow

import (
	"net/http"
	"os"
	"time"
)

// NewHTTPServer wires the follow service router into an http.Server with
// the shared timeout defaults.
func NewHTTPServer(svc Service) *http.Server {
	port := getEnv("FOLLOW_SERVICE_PORT", "8083")

	return &http.Server{
		Addr:         ":" + port,
		Handler:      SetupRouter(svc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
