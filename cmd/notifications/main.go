package main

import (
	"os"

	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/database"
	"prism/internal/logger"
	"prism/internal/notifications"
	"prism/internal/server"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log := logger.New("notifications-service")
	logger.SetDefault(log)

	consulClient, err := consul.NewClient(
		config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500"),
		os.Getenv("CONSUL_HTTP_TOKEN"),
	)
	if err != nil {
		log.Error("failed to create consul client", "error", err)
		os.Exit(1)
	}

	db := database.New()
	defer db.Close()

	svc := notifications.NewService(notifications.NewRepository(db), log)

	srv := notifications.NewHTTPServer(svc)

	err = server.Run(srv, consulClient, server.Options{
		Name: "notifications-service",
		Host: server.Host("NOTIFICATIONS_SERVICE_HOST"),
		Tags: []string{"notifications", "api"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
