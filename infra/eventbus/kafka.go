package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/zezva802/Banking-system/pkg/domain/events"
	"github.com/zezva802/Banking-system/pkg/eventbus"
)

// KafkaEventBus publishes events to a single Kafka topic. Messages are keyed
// by account so a consumer sees one account's events in order.
type KafkaEventBus struct {
	writer *kafka.Writer
	topic  string
	logger *slog.Logger
}

// NewWithKafka creates a Kafka publisher.
// brokers: Comma-separated brokers list (e.g. "localhost:9092,localhost:9093").
func NewWithKafka(brokers, topic string, logger *slog.Logger) (*KafkaEventBus, error) {
	parsedBrokers := parseBrokers(brokers)
	if len(parsedBrokers) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("kafka event bus: topic is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(parsedBrokers...),
		Topic:                  topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
	}

	logger.Info("Kafka event bus initialized", "brokers", parsedBrokers, "topic", topic)
	return &KafkaEventBus{
		writer: writer,
		topic:  topic,
		logger: logger.With("bus", "kafka", "topic", topic),
	}, nil
}

// Emit publishes an event to Kafka.
func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	if b == nil || b.writer == nil {
		return fmt.Errorf("kafka event bus: writer not initialized")
	}

	envBytes, err := buildEnvelope(event)
	if err != nil {
		return fmt.Errorf("kafka event bus: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(partitionKey(event)),
		Value: envBytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type())},
		},
		Time: time.Now().UTC(),
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("kafka event bus: emit failed: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes network resources.
func (b *KafkaEventBus) Close() error {
	if b == nil || b.writer == nil {
		return nil
	}
	return b.writer.Close()
}

func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
