package main

import (
	"os"

	"prism/internal/auth"
	"prism/internal/config"
	"prism/internal/consul"
	"prism/internal/database"
	"prism/internal/devices"
	"prism/internal/email"
	"prism/internal/kafka"
	"prism/internal/logger"
	"prism/internal/server"
	"prism/internal/session"
	"prism/internal/users"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log := logger.New("auth-service")
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

	db := database.New()
	defer db.Close()

	store := session.NewRedisStore(
		config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)

	deviceSvc := devices.NewService(devices.NewRepository(db), store, log)
	tokens := auth.NewTokenManager([]byte(config.MustGetEnv("JWT_SECRET")))

	// Codes go through Kafka when a broker is configured, otherwise they
	// are sent directly from this process.
	var mailer auth.Mailer
	sender := email.NewSender(email.NewConfig())
	if kafkaCfg, err := kafka.LoadConfig(); err != nil {
		log.Warn("kafka not configured, sending email directly", "error", err)
		mailer = email.NewDirectMailer(sender)
	} else {
		producer, err := kafka.NewProducer(kafkaCfg, log)
		if err != nil {
			log.Warn("failed to create kafka producer, sending email directly", "error", err)
			mailer = email.NewDirectMailer(sender)
		} else {
			defer producer.Close()
			mailer = email.NewKafkaMailer(producer, kafkaCfg.EmailEventsTopic, sender, log)
		}
	}

	svc := auth.NewService(users.NewRepository(db), store, deviceSvc, tokens, mailer, log)

	srv := auth.NewHTTPServer(svc, deviceSvc, log)

	err = server.Run(srv, consulClient, server.Options{
		Name: "auth-service",
		Host: server.Host("AUTH_SERVICE_HOST"),
		Tags: []string{"auth", "security", "api"},
	}, log)
	if err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
