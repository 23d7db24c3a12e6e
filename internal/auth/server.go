package auth

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"prism/internal/devices"
)

// NewHTTPServer wires the auth service router into an http.Server with
// the shared timeout defaults.
func NewHTTPServer(svc Service, deviceSvc devices.Service, log *slog.Logger) *http.Server {
	port := getEnv("AUTH_SERVICE_PORT", "8081")

	return &http.Server{
		Addr:         ":" + port,
		Handler:      SetupRouter(svc, deviceSvc, log),
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
