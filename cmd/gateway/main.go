package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"prism/internal/auth"
	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/devices"
	"prism/internal/gateway"
	"prism/internal/logger"
	"prism/internal/server"
	"prism/internal/session"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log := logger.New("api-gateway")
	logger.SetDefault(log)

	if err := config.ValidateJWTSecret(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	consulClient, err := consul.NewClient(
		config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500"),
		os.Getenv("CONSUL_HTTP_TOKEN"),
	)
	if err != nil {
		log.Error("failed to create consul client", "error", err)
		os.Exit(1)
	}

	store := session.NewRedisStore(
		config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)

	tokens := auth.NewTokenManager([]byte(config.MustGetEnv("JWT_SECRET")))
	sessions := devices.NewLivenessChecker(store)

	router := gateway.SetupRouter(consulClient, tokens, sessions)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", config.GetEnvOrDefault("GATEWAY_PORT", "8080")),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	err = server.Run(srv, consulClient, server.Options{
		Name: "api-gateway",
		Host: server.Host("GATEWAY_HOST"),
		Tags: []string{"gateway", "edge"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
