//go:build kafka

package eventbus

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testcontainerskafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/zezva802/Banking-system/pkg/domain/events"
)

const kafkaTestTopic = "ledger.events.test"

// setupKafkaBus starts a Kafka container and returns a bus plus the broker
// list for building readers.
func setupKafkaBus(tb testing.TB) (*KafkaEventBus, []string) {
	tb.Helper()
	if !dockerIsReachable() {
		tb.Skip("docker is not reachable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	container, err := testcontainerskafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(tb, err)

	bus, err := NewWithKafka(strings.Join(brokers, ","), kafkaTestTopic, discardLogger())
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = bus.Close() })
	return bus, brokers
}

func dockerIsReachable() bool {
	host := os.Getenv("DOCKER_HOST")
	if strings.HasPrefix(host, "unix://") {
		return canDialUnix(strings.TrimPrefix(host, "unix://"))
	}
	if host != "" {
		return true
	}
	return canDialUnix("/var/run/docker.sock")
}

func canDialUnix(path string) bool {
	conn, err := net.DialTimeout("unix", path, 300*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func TestKafkaEventBus_KeysByAccount(t *testing.T) {
	bus, brokers := setupKafkaBus(t)

	sender := uuid.New()
	evt := events.TransferFinalized{
		TransactionID:   uuid.New(),
		TransferType:    "OWN_ACCOUNT",
		Status:          "COMPLETED",
		SenderAccountID: sender,
		Amount:          "10.00",
		Currency:        "GEL",
		Commission:      "0.00",
		OccurredAt:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, bus.Emit(context.Background(), evt))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       kafkaTestTopic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})
	defer func() { _ = reader.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	msg, err := reader.FetchMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, sender.String(), string(msg.Key))
	var env envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, events.EventTypeTransferCompleted, env.Type)
}
