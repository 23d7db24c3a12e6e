package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Consumer drains the email-events topic and sends the mail.
type Consumer struct {
	consumer         *kafka.Consumer
	sender           Sender
	idempotencyStore *IdempotencyStore
	dlqProducer      *kafka.Producer
	config           *ConsumerConfig
	logger           *slog.Logger
}

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	Brokers       string
	Topic         string
	DLQTopic      string
	ConsumerGroup string
	MaxRetries    int
}

// NewConsumer creates a Kafka consumer with manual offset commits.
func NewConsumer(
	config *ConsumerConfig,
	sender Sender,
	idempotencyStore *IdempotencyStore,
	logger *slog.Logger,
) (*Consumer, error) {
	consumerConfig := &kafka.ConfigMap{
		"bootstrap.servers":  config.Brokers,
		"group.id":           config.ConsumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	}

	c, err := kafka.NewConsumer(consumerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	dlqProducerConfig := &kafka.ConfigMap{
		"bootstrap.servers": config.Brokers,
	}
	dlqProducer, err := kafka.NewProducer(dlqProducerConfig)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create DLQ producer: %w", err)
	}

	consumer := &Consumer{
		consumer:         c,
		sender:           sender,
		idempotencyStore: idempotencyStore,
		dlqProducer:      dlqProducer,
		config:           config,
		logger:           logger,
	}

	logger.Info("kafka consumer initialized",
		"brokers", config.Brokers,
		"topic", config.Topic,
		"group", config.ConsumerGroup)

	return consumer, nil
}

// Start consumes messages until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.consumer.Subscribe(c.config.Topic, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	c.logger.Info("starting to consume messages", "topic", c.config.Topic)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer shutting down")
			return nil

		default:
			msg, err := c.consumer.ReadMessage(1 * time.Second)
			if err != nil {
				if err.(kafka.Error).Code() == kafka.ErrTimedOut {
					continue
				}
				c.logger.Error("error reading message", "error", err)
				continue
			}

			c.processMessage(ctx, msg)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg *kafka.Message) {
	c.logger.Info("received email event",
		"topic", *msg.TopicPartition.Topic,
		"partition", msg.TopicPartition.Partition,
		"offset", msg.TopicPartition.Offset)

	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("failed to parse email event",
			"error", err,
			"raw_value", string(msg.Value))
		c.commitMessage(msg) // skip the malformed message
		return
	}

	if event.MessageID == "" {
		c.logger.Error("email event missing message_id",
			"recipient", event.Recipient,
			"type", event.EventType)
		c.commitMessage(msg)
		return
	}

	isProcessed, err := c.idempotencyStore.IsProcessed(ctx, event.MessageID)
	if err != nil {
		c.logger.Error("failed to check idempotency",
			"messageID", event.MessageID,
			"error", err)
		// no commit, the message will be redelivered
		return
	}

	if isProcessed {
		c.logger.Warn("duplicate email event, skipping",
			"messageID", event.MessageID,
			"recipient", event.Recipient)
		c.commitMessage(msg)
		return
	}

	if err := c.processWithRetry(event); err != nil {
		c.logger.Error("failed to process email event after retries",
			"messageID", event.MessageID,
			"error", err)
		c.sendToDLQ(event, err)
		c.commitMessage(msg)
		return
	}

	success, err := c.idempotencyStore.MarkAsProcessed(ctx, event)
	if err != nil {
		c.logger.Error("failed to mark as processed",
			"messageID", event.MessageID,
			"error", err)
		return
	}
	if !success {
		c.logger.Warn("message was processed by another consumer",
			"messageID", event.MessageID)
	}

	c.commitMessage(msg)

	c.logger.Info("email event processed",
		"messageID", event.MessageID,
		"recipient", event.Recipient,
		"type", event.EventType)
}

func (c *Consumer) processWithRetry(event Event) error {
	maxRetries := c.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := c.sender.SendEvent(event)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("email sent after retry",
					"messageID", event.MessageID,
					"attempt", attempt)
			}
			return nil
		}

		lastErr = err
		c.logger.Warn("failed to send email, will retry",
			"messageID", event.MessageID,
			"attempt", attempt,
			"maxRetries", maxRetries,
			"error", err)

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Consumer) sendToDLQ(event Event, processingError error) {
	dlqEvent := map[string]interface{}{
		"original_event": event,
		"error":          processingError.Error(),
		"failed_at":      time.Now(),
		"consumer_group": c.config.ConsumerGroup,
	}

	jsonData, err := json.Marshal(dlqEvent)
	if err != nil {
		c.logger.Error("failed to marshal DLQ event",
			"messageID", event.MessageID,
			"error", err)
		return
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &c.config.DLQTopic,
			Partition: kafka.PartitionAny,
		},
		Value: jsonData,
	}

	if err := c.dlqProducer.Produce(msg, nil); err != nil {
		c.logger.Error("failed to send to DLQ",
			"messageID", event.MessageID,
			"error", err)
		return
	}

	c.logger.Warn("email event sent to DLQ",
		"messageID", event.MessageID,
		"recipient", event.Recipient,
		"dlq_topic", c.config.DLQTopic)
}

func (c *Consumer) commitMessage(msg *kafka.Message) {
	if _, err := c.consumer.CommitMessage(msg); err != nil {
		c.logger.Error("failed to commit offset",
			"topic", *msg.TopicPartition.Topic,
			"partition", msg.TopicPartition.Partition,
			"offset", msg.TopicPartition.Offset,
			"error", err)
	}
}

// Close shuts down the consumer and its DLQ producer.
func (c *Consumer) Close() {
	c.logger.Info("closing kafka consumer")
	c.dlqProducer.Flush(5000)
	c.dlqProducer.Close()
	c.consumer.Close()
}
