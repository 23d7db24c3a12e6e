package main

import (
	"os"

	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/database"
	"prism/internal/follow"
	"prism/internal/logger"
	"prism/internal/posts"
	"prism/internal/server"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := logger.New("posts-service")
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

	followRepo := follow.NewRepository(db)
	followSvc := follow.NewService(followRepo, followRepo, follow.NopNotifier{}, log)

	svc := posts.NewService(posts.NewRepository(db), followSvc, cache, log)

	srv := posts.NewHTTPServer(svc, log)

	err = server.Run(srv, consulClient, server.Options{
		Name: "posts-service",
		Host: server.Host("POSTS_SERVICE_HOST"),
		Tags: []string{"posts", "content", "api"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
