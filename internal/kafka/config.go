package kafka

import (
	"fmt"
	"os"

	"prism/internal/config"
)

// Config carries the broker address and the topics of the email pipeline.
type Config struct {
	Brokers          string
	EmailEventsTopic string
	EmailDLQTopic    string
	ConsumerGroup    string
}

// LoadConfig reads the Kafka settings from the environment. KAFKA_BROKERS
// is mandatory; topics and the consumer group have service defaults.
func LoadConfig() (*Config, error) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	return &Config{
		Brokers:          brokers,
		EmailEventsTopic: config.GetEnvOrDefault("KAFKA_TOPIC_EMAIL_EVENTS", "email-events"),
		EmailDLQTopic:    config.GetEnvOrDefault("KAFKA_TOPIC_EMAIL_DLQ", "email-events-dlq"),
		ConsumerGroup:    config.GetEnvOrDefault("KAFKA_CONSUMER_GROUP", "email-service-group"),
	}, nil
}
