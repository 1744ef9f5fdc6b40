// Command kafka_smoketest publishes one ledger event through the Kafka event
// bus and reads it back, to check a local broker end to end.
//
//	BROKERS=localhost:9092 TOPIC=ledger.events go run ./scripts/kafka_smoketest
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	infra_eventbus "github.com/zezva802/Banking-system/infra/eventbus"
	"github.com/zezva802/Banking-system/pkg/domain/events"
)

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// RunSmokeTest emits a WithdrawalCompleted event and waits until it is
// consumed from the topic with the expected partition key.
func RunSmokeTest(ctx context.Context, logger *slog.Logger) error {
	brokers := envOr("BROKERS", "localhost:9092")
	topic := envOr("TOPIC", "ledger.events")

	bus, err := infra_eventbus.NewWithKafka(brokers, topic, logger)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	event := events.WithdrawalCompleted{
		OperationID:   uuid.New(),
		CardID:        uuid.New(),
		AccountID:     uuid.New(),
		Amount:        "1.00",
		Currency:      "GEL",
		Commission:    "0.02",
		TotalDeducted: "1.02",
		OccurredAt:    time.Now().UTC(),
	}
	if err := bus.Emit(ctx, event); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	logger.Info("produced", "topic", topic, "operation_id", event.OperationID)

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     strings.Split(brokers, ","),
		GroupID:     envOr("GROUP_ID", "ledger-smoketest"),
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})
	defer func() { _ = r.Close() }()

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		_ = r.CommitMessages(ctx, msg)

		var env struct {
			Type    events.EventType           `json:"type"`
			Payload events.WithdrawalCompleted `json:"payload"`
		}
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			logger.Warn("skipping undecodable message", "offset", msg.Offset, "error", err)
			continue
		}
		if env.Payload.OperationID != event.OperationID {
			continue
		}
		if string(msg.Key) != event.AccountID.String() {
			return errors.New("message keyed by something other than the account")
		}
		logger.Info("consumed", "type", env.Type, "offset", msg.Offset)
		return nil
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := RunSmokeTest(ctx, logger); err != nil {
		logger.Error("kafka smoke test failed", "error", err)
		os.Exit(1)
	}
	logger.Info("kafka smoke test passed")
}
