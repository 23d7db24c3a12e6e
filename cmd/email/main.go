package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/email"
	"prism/internal/kafka"
	"prism/internal/logger"
	"prism/internal/server"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := logger.New("email-service")
	logger.SetDefault(log)

	consulClient, err := consul.NewClient(
		config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500"),
		os.Getenv("CONSUL_HTTP_TOKEN"),
	)
	if err != nil {
		log.Error("failed to create consul client", "error", err)
		os.Exit(1)
	}

	kafkaCfg, err := kafka.LoadConfig()
	if err != nil {
		log.Error("invalid kafka configuration", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	defer redisClient.Close()

	idempotency := email.NewIdempotencyStore(redisClient, log)
	sender := email.NewSender(email.NewConfig())

	consumer, err := email.NewConsumer(&email.ConsumerConfig{
		Brokers:       kafkaCfg.Brokers,
		Topic:         kafkaCfg.EmailEventsTopic,
		DLQTopic:      kafkaCfg.EmailDLQTopic,
		ConsumerGroup: kafkaCfg.ConsumerGroup,
	}, sender, idempotency, log)
	if err != nil {
		log.Error("failed to create kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error("consumer stopped", "error", err)
		}
	}()

	srv := email.NewHTTPServer(email.NewHandler(redisClient, idempotency, log))

	err = server.Run(srv, consulClient, server.Options{
		Name: "email-service",
		Host: server.Host("EMAIL_SERVICE_HOST"),
		Tags: []string{"email", "notifications", "worker"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
