package email

import (
	"context"
	"log/slog"
	"time"

	"prism/internal/kafka"

	"github.com/google/uuid"
)

// DirectMailer sends codes synchronously through a Sender. Used when the
// auth service runs without a Kafka connection.
type DirectMailer struct {
	sender Sender
}

// NewDirectMailer creates a mailer that bypasses the event bus.
func NewDirectMailer(sender Sender) *DirectMailer {
	return &DirectMailer{sender: sender}
}

func (m *DirectMailer) SendOTP(_ context.Context, email, code, purpose string) error {
	return m.sender.SendOTP(email, code, purpose)
}

// KafkaMailer publishes code emails to the email-events topic. When the
// publish fails it falls back to sending directly so a broker outage does
// not lock users out of registration or login.
type KafkaMailer struct {
	producer *kafka.Producer
	topic    string
	fallback Sender
	log      *slog.Logger
}

// NewKafkaMailer creates a mailer backed by the event bus.
func NewKafkaMailer(producer *kafka.Producer, topic string, fallback Sender, log *slog.Logger) *KafkaMailer {
	return &KafkaMailer{producer: producer, topic: topic, fallback: fallback, log: log}
}

func (m *KafkaMailer) SendOTP(_ context.Context, email, code, purpose string) error {
	event := Event{
		MessageID: uuid.New().String(),
		EventType: EventTypeOTP,
		Timestamp: time.Now(),
		Recipient: email,
		Data: map[string]interface{}{
			"code":       code,
			"purpose":    purpose,
			"expires_in": "10m",
		},
	}

	if err := m.producer.Publish(m.topic, event); err != nil {
		m.log.Warn("failed to publish email event, sending directly",
			"messageID", event.MessageID,
			"error", err)
		return m.fallback.SendOTP(email, code, purpose)
	}
	return nil
}
