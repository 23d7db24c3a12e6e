package main

import (
	"os"

	"prism/internal/comments"
	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/database"
	"prism/internal/logger"
	"prism/internal/notifications"
	"prism/internal/server"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log := logger.New("comments-service")
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

	notifSvc := notifications.NewService(notifications.NewRepository(db), log)
	svc := comments.NewService(db, notifSvc, log)

	srv := comments.NewHTTPServer(svc, log)

	err = server.Run(srv, consulClient, server.Options{
		Name: "comments-service",
		Host: server.Host("COMMENTS_SERVICE_HOST"),
		Tags: []string{"comments", "engagement", "api"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
