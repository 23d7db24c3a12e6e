// Package kafka wraps the confluent client with the producer and consumer
// settings shared by every service that touches the event bus.
package kafka

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Producer wraps a Kafka producer with JSON publishing helpers.
type Producer struct {
	producer *kafka.Producer
	config   *Config
	logger   *slog.Logger
}

// NewProducer creates an idempotent Kafka producer.
func NewProducer(config *Config, logger *slog.Logger) (*Producer, error) {
	// idempotence plus acks=all gives exactly-once delivery per partition
	producerConfig := &kafka.ConfigMap{
		"bootstrap.servers":                     config.Brokers,
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 5,
		"retries":                               2147483647,
	}

	p, err := kafka.NewProducer(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	producer := &Producer{
		producer: p,
		config:   config,
		logger:   logger,
	}

	go producer.handleDeliveryReports()

	logger.Info("kafka producer initialized", "brokers", config.Brokers)

	return producer, nil
}

// Publish serializes the event to JSON and produces it asynchronously.
// Delivery failures surface through the delivery report handler.
func (p *Producer) Publish(topic string, event interface{}) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Value: jsonData,
	}

	if err := p.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	p.logger.Debug("event published",
		"topic", topic,
		"size", len(jsonData))

	return nil
}

// PublishSync publishes an event and blocks until the broker confirms it.
func (p *Producer) PublishSync(topic string, event interface{}) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Value: jsonData,
	}

	deliveryChan := make(chan kafka.Event)

	if err := p.producer.Produce(msg, deliveryChan); err != nil {
		close(deliveryChan)
		return fmt.Errorf("failed to produce message: %w", err)
	}

	e := <-deliveryChan
	close(deliveryChan)

	m := e.(*kafka.Message)
	if m.TopicPartition.Error != nil {
		return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
	}

	p.logger.Info("event published",
		"topic", *m.TopicPartition.Topic,
		"partition", m.TopicPartition.Partition,
		"offset", m.TopicPartition.Offset)

	return nil
}

func (p *Producer) handleDeliveryReports() {
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				p.logger.Error("delivery failed",
					"topic", *ev.TopicPartition.Topic,
					"error", ev.TopicPartition.Error)
			} else {
				p.logger.Debug("message delivered",
					"topic", *ev.TopicPartition.Topic,
					"partition", ev.TopicPartition.Partition,
					"offset", ev.TopicPartition.Offset)
			}
		case kafka.Error:
			p.logger.Error("kafka producer error", "error", ev)
		}
	}
}

// Close flushes pending messages and shuts the producer down.
func (p *Producer) Close() {
	remaining := p.producer.Flush(int((5 * time.Second).Milliseconds()))
	if remaining > 0 {
		p.logger.Warn("closing producer with undelivered messages", "count", remaining)
	}
	p.producer.Close()
}
