package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/zezva802/Banking-system/pkg/domain/events"
	"github.com/zezva802/Banking-system/pkg/eventbus"
)

// RedisEventBus appends events to a Redis stream for out-of-process consumers.
type RedisEventBus struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewWithRedis creates a Redis Streams publisher on an existing client.
func NewWithRedis(client *redis.Client, stream string, logger *slog.Logger) (*RedisEventBus, error) {
	if client == nil || stream == "" {
		return nil, fmt.Errorf("redis event bus: client and stream are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisEventBus{
		client: client,
		stream: stream,
		maxLen: 100000,
		logger: logger.With("component", "redis-event-bus", "stream", stream),
	}, nil
}

// Emit publishes an event to the Redis stream.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	envBytes, err := buildEnvelope(event)
	if err != nil {
		b.logger.Error("failed to marshal event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: %w", err)
	}

	id, err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		MaxLen: b.maxLen,
		Approx: true,
		Values: map[string]any{
			"type":  string(event.Type()),
			"key":   partitionKey(event),
			"event": string(envBytes),
		},
	}).Result()
	if err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}

	b.logger.Debug("event emitted", "type", event.Type(), "id", id)
	return nil
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
