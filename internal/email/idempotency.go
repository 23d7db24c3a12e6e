package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore handles deduplication of email events.
type IdempotencyStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewIdempotencyStore creates a new idempotency store. Deduplication
// records outlive the longest plausible redelivery window.
func NewIdempotencyStore(redisClient *redis.Client, logger *slog.Logger) *IdempotencyStore {
	return &IdempotencyStore{
		redis:  redisClient,
		ttl:    24 * time.Hour,
		logger: logger,
	}
}

func (s *IdempotencyStore) keyPrefix() string {
	return "email:sent:"
}

func (s *IdempotencyStore) buildKey(messageID string) string {
	return fmt.Sprintf("%s%s", s.keyPrefix(), messageID)
}

// IsProcessed checks if an email event has already been processed.
func (s *IdempotencyStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	exists, err := s.redis.Exists(ctx, s.buildKey(messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if message is processed: %w", err)
	}
	return exists > 0, nil
}

// MarkAsProcessed marks an email event as processed. Returns true when this
// call won the SET NX race, false when another consumer got there first.
func (s *IdempotencyStore) MarkAsProcessed(ctx context.Context, event Event) (bool, error) {
	key := s.buildKey(event.MessageID)

	metadata := Metadata{
		SentAt:    time.Now(),
		Recipient: event.Recipient,
		EventType: event.EventType,
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return false, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	success, err := s.redis.SetNX(ctx, key, metadataJSON, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processed: %w", err)
	}

	if success {
		s.logger.Info("marked email as processed",
			"messageID", event.MessageID,
			"recipient", event.Recipient,
			"type", event.EventType)
	} else {
		s.logger.Warn("email already processed, duplicate detected",
			"messageID", event.MessageID,
			"recipient", event.Recipient,
			"type", event.EventType)
	}

	return success, nil
}

// GetMetadata retrieves the metadata for a processed email.
func (s *IdempotencyStore) GetMetadata(ctx context.Context, messageID string) (*Metadata, error) {
	data, err := s.redis.Get(ctx, s.buildKey(messageID)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("message not found: %s", messageID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal([]byte(data), &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &metadata, nil
}

// Count reports how many deduplication records are currently live. Redis
// TTL handles expiry, this exists for the stats endpoint.
func (s *IdempotencyStore) Count(ctx context.Context) (int64, error) {
	pattern := s.keyPrefix() + "*"

	var cursor uint64
	var count int64

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return count, fmt.Errorf("failed to scan keys: %w", err)
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return count, nil
}
