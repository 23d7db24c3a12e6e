// Package email delivers transactional mail. Senders support a log-only
// development mode and SMTP for production; the consumer drains the Kafka
// email-events topic with retries, deduplication and a dead letter queue.
package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strconv"
)

// Sender defines the interface for sending emails.
type Sender interface {
	SendOTP(email, code, purpose string) error
	SendEvent(event Event) error
}

// Config holds email transport configuration.
type Config struct {
	Mode     string // "log" or "smtp"
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// NewConfig creates email configuration from environment variables.
func NewConfig() *Config {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	return &Config{
		Mode:     getEnvOrDefault("EMAIL_MODE", "log"),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getEnvOrDefault("SMTP_FROM", "noreply@example.com"),
		FromName: getEnvOrDefault("SMTP_FROM_NAME", "Prism"),
	}
}

// NewSender creates an email sender based on configuration.
func NewSender(cfg *Config) Sender {
	if cfg.Mode == "smtp" {
		return &smtpSender{config: cfg}
	}
	return &logSender{}
}

func subjectFor(purpose string) string {
	switch purpose {
	case "register":
		return "Confirm your email"
	case "login":
		return "Your login code"
	case "reset":
		return "Reset your password"
	default:
		return "Your verification code"
	}
}

// logSender logs emails to console (development mode).
type logSender struct{}

func (s *logSender) SendOTP(email, code, purpose string) error {
	log.Printf("[DEV] %s code for %s: %s (expires in 10 minutes)", purpose, email, code)
	return nil
}

func (s *logSender) SendEvent(event Event) error {
	switch event.EventType {
	case EventTypeOTP:
		code, ok := event.Data["code"].(string)
		if !ok {
			return fmt.Errorf("invalid otp data")
		}
		purpose, _ := event.Data["purpose"].(string)
		return s.SendOTP(event.Recipient, code, purpose)
	default:
		log.Printf("[DEV] Email event for %s: type=%s, data=%v", event.Recipient, event.EventType, event.Data)
		return nil
	}
}

// smtpSender sends emails via SMTP (production mode).
type smtpSender struct {
	config *Config
}

func (s *smtpSender) SendOTP(email, code, purpose string) error {
	subject := subjectFor(purpose)
	body := s.buildOTPBody(code)

	message := fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From)
	message += fmt.Sprintf("To: %s\r\n", email)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	if err := smtp.SendMail(addr, auth, s.config.From, []string{email}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Code sent to %s via SMTP", email)
	return nil
}

func (s *smtpSender) SendEvent(event Event) error {
	switch event.EventType {
	case EventTypeOTP:
		code, ok := event.Data["code"].(string)
		if !ok {
			return fmt.Errorf("invalid otp data")
		}
		purpose, _ := event.Data["purpose"].(string)
		return s.SendOTP(event.Recipient, code, purpose)
	default:
		return fmt.Errorf("unsupported email type: %s", event.EventType)
	}
}

func (s *smtpSender) buildOTPBody(code string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Verification Code</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #1f2933; padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
        <h1 style="color: white; margin: 0;">Verification Code</h1>
    </div>

    <div style="background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
        <p style="font-size: 16px;">Hello,</p>

        <p style="font-size: 16px;">Your verification code is:</p>

        <div style="background: white; border: 2px solid #1f2933; border-radius: 8px; padding: 20px; text-align: center; margin: 20px 0;">
            <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #1f2933;">%s</span>
        </div>

        <p style="font-size: 14px; color: #666;">
            This code will expire in <strong>10 minutes</strong>.
        </p>

        <p style="font-size: 14px; color: #666;">
            If you didn't request this code, you can safely ignore this email.
        </p>
    </div>
</body>
</html>
`, code)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
