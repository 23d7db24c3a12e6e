// Package server holds the shared service lifecycle: Consul registration,
// HTTP serving and graceful shutdown, used by every service main.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"prism/internal/consul"
)

// Options describes how a service registers itself.
type Options struct {
	// Name is the Consul service name, e.g. "posts-service".
	Name string
	// Host is the address other services reach this one at.
	Host string
	// Tags are attached to the Consul registration.
	Tags []string
}

// Run registers the service with Consul, serves HTTP until SIGINT/SIGTERM,
// then deregisters and shuts down gracefully.
func Run(srv *http.Server, consulClient *consul.Client, opts Options, log *slog.Logger) error {
	port, err := portOf(srv)
	if err != nil {
		return err
	}

	// static service ID so a restart replaces the old registration
	serviceID := fmt.Sprintf("%s-%s", opts.Name, opts.Host)
	_ = consulClient.Deregister(serviceID)

	err = consulClient.Register(consul.Registration{
		ID:        serviceID,
		Name:      opts.Name,
		Address:   opts.Host,
		Port:      port,
		Tags:      opts.Tags,
		HealthURL: fmt.Sprintf("http://%s:%d/health", opts.Host, port),
	})
	if err != nil {
		return fmt.Errorf("failed to register with consul: %w", err)
	}
	log.Info("registered with consul", "service_id", serviceID)

	done := make(chan error, 1)
	go func() {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		log.Info("shutting down gracefully")

		if err := consulClient.Deregister(serviceID); err != nil {
			log.Warn("failed to deregister from consul", "error", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	if err := <-done; err != nil {
		log.Warn("server forced to shutdown", "error", err)
	}
	log.Info("server exiting")
	return nil
}

// Host returns the advertised host for a service, defaulting to localhost.
func Host(envKey string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return "localhost"
}

func portOf(srv *http.Server) (int, error) {
	addr := srv.Addr
	for i := 0; i < len(addr); i++ {
		if addr[i] == ':' {
			port, err := strconv.Atoi(addr[i+1:])
			if err != nil {
				return 0, fmt.Errorf("invalid server addr %q", addr)
			}
			return port, nil
		}
	}
	return 0, fmt.Errorf("server addr %q has no port", addr)
}
