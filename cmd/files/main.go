package main

import (
	"context"
	"os"

	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/files"
	"prism/internal/logger"
	"prism/internal/server"
	"prism/internal/storage"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log := logger.New("files-service")
	logger.SetDefault(log)

	if err := config.ValidateEnv([]string{"S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET_NAME"}); err != nil {
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

	store, err := storage.New(context.Background(), log)
	if err != nil {
		log.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	svc := files.NewService(store)

	srv := files.NewHTTPServer(svc)

	err = server.Run(srv, consulClient, server.Options{
		Name: "files-service",
		Host: server.Host("FILES_SERVICE_HOST"),
		Tags: []string{"files", "storage", "api"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
