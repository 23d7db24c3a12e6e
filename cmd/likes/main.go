package main

import (
	"os"

	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/database"
	"prism/internal/likes"
	"prism/internal/logger"
	"prism/internal/notifications"
	"prism/internal/server"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := logger.New("likes-service")
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

	cache := redis.NewClient(&redis.Options{
		Addr:     config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	defer cache.Close()

	notifSvc := notifications.NewService(notifications.NewRepository(db), log)
	svc := likes.NewService(db, notifSvc, cache, log)

	srv := likes.NewHTTPServer(svc, log)

	err = server.Run(srv, consulClient, server.Options{
		Name: "likes-service",
		Host: server.Host("LIKES_SERVICE_HOST"),
		Tags: []string{"likes", "engagement", "api"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
