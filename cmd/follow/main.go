package main

import (
	"os"

	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/database"
	"prism/internal/follow"
	"prism/internal/logger"
	"prism/internal/notifications"
	"prism/internal/server"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log := logger.New("follow-service")
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

	repo := follow.NewRepository(db)
	dispatcher := notifications.NewDispatcher(
		notifications.NewService(notifications.NewRepository(db), log),
		log,
	)
	svc := follow.NewService(repo, repo, dispatcher, log)

	srv := follow.NewHTTPServer(svc)

	err = server.Run(srv, consulClient, server.Options{
		Name: "follow-service",
		Host: server.Host("FOLLOW_SERVICE_HOST"),
		Tags: []string{"follow", "social", "api"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
