package main

import (
	"os"

	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/database"
	"prism/internal/follow"
	"prism/internal/logger"
	"prism/internal/server"
	"prism/internal/users"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log := logger.New("users-service")
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

	followRepo := follow.NewRepository(db)
	followSvc := follow.NewService(followRepo, followRepo, follow.NopNotifier{}, log)

	svc := users.NewService(users.NewRepository(db), followSvc)

	srv := users.NewHTTPServer(svc)

	err = server.Run(srv, consulClient, server.Options{
		Name: "users-service",
		Host: server.Host("USERS_SERVICE_HOST"),
		Tags: []string{"users", "profiles", "api"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
