package email

import (
	"time"
)

// EventType represents the kind of email to be sent.
type EventType string

const (
	// EventTypeOTP is for one-time codes (registration, login, reset).
	EventTypeOTP EventType = "otp"
	// EventTypeWelcome is for welcome emails after verification.
	EventTypeWelcome EventType = "welcome"
)

// Event is an email job published to Kafka. MessageID is a UUID used for
// deduplication so a redelivered event never sends a second email.
type Event struct {
	MessageID string                 `json:"message_id"`
	EventType EventType              `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Recipient string                 `json:"recipient"`
	Data      map[string]interface{} `json:"data"`
}

// OTPData is the payload for one-time code emails.
type OTPData struct {
	Code      string `json:"code"`
	Purpose   string `json:"purpose"`
	ExpiresIn string `json:"expires_in"`
}

// Metadata is what the idempotency store keeps per processed event.
type Metadata struct {
	SentAt    time.Time `json:"sent_at"`
	Recipient string    `json:"recipient"`
	EventType EventType `json:"event_type"`
}
