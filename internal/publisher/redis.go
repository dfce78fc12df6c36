// Package publisher fans enriched records out to downstream consumers
// over Redis pub/sub. Publishing is best-effort: a failed publish is
// logged and counted, never blocks persistence.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sercanai/screenaso/internal/config"
	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/logger"
)

// Publisher delivers enriched records to the fan-out channel.
type Publisher interface {
	Publish(ctx context.Context, rec *domain.EnrichedReview) error
	Close() error
}

// RedisPublisher publishes JSON-encoded enriched records to one channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*RedisPublisher, error) {
	if log == nil {
		log = logger.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.Database,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPublisher{
		client:  client,
		channel: cfg.Channel,
		log:     log,
	}, nil
}

// Publish sends one enriched record to the channel.
func (p *RedisPublisher) Publish(ctx context.Context, rec *domain.EnrichedReview) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal enriched review: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish enriched review: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Nop discards every record. Used when the fan-out channel is disabled.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, *domain.EnrichedReview) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }
