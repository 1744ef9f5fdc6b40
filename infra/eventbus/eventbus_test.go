package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zezva802/Banking-system/pkg/domain/events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryEventBus_DispatchesByType(t *testing.T) {
	bus := NewWithMemory(discardLogger())
	var completed, failed int
	bus.Register(events.EventTypeTransferCompleted, func(ctx context.Context, e events.Event) error {
		completed++
		return nil
	})
	bus.Register(events.EventTypeTransferFailed, func(ctx context.Context, e events.Event) error {
		failed++
		return errors.New("handler error is logged, not returned")
	})

	require.NoError(t, bus.Emit(context.Background(), events.TransferFinalized{Status: "COMPLETED"}))
	require.NoError(t, bus.Emit(context.Background(), events.TransferFinalized{Status: "FAILED"}))
	require.NoError(t, bus.Emit(context.Background(), events.WithdrawalCompleted{}))

	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)
	assert.Len(t, bus.Published(), 3)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}

func TestMemoryEventBus_RecoversHandlerPanic(t *testing.T) {
	bus := NewWithMemory(discardLogger())
	var after bool
	bus.Register(events.EventTypeWithdrawalCompleted, func(ctx context.Context, e events.Event) error {
		panic("boom")
	})
	bus.Register(events.EventTypeWithdrawalCompleted, func(ctx context.Context, e events.Event) error {
		after = true
		return nil
	})

	assert.NotPanics(t, func() {
		_ = bus.Emit(context.Background(), events.WithdrawalCompleted{})
	})
	assert.True(t, after)
}

func TestBuildEnvelope(t *testing.T) {
	sender := uuid.New()
	evt := events.TransferFinalized{
		TransactionID:   uuid.New(),
		TransferType:    "OTHER_ACCOUNT",
		Status:          "COMPLETED",
		SenderAccountID: sender,
		Amount:          "100.00",
		Currency:        "GEL",
		Commission:      "1.00",
		OccurredAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := buildEnvelope(evt)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, events.EventTypeTransferCompleted, env.Type)

	var payload events.TransferFinalized
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, evt, payload)
	assert.Equal(t, sender.String(), partitionKey(evt))
}

func TestPartitionKey_Withdrawal(t *testing.T) {
	account := uuid.New()
	assert.Equal(t, account.String(), partitionKey(events.WithdrawalCompleted{AccountID: account}))
	assert.Equal(t, account.String(), partitionKey(&events.WithdrawalCompleted{AccountID: account}))
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, parseBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, parseBrokers(""))
}

func TestNewWithKafka_Validation(t *testing.T) {
	_, err := NewWithKafka("", "ledger.events", discardLogger())
	assert.Error(t, err)
	_, err = NewWithKafka("localhost:9092", " ", discardLogger())
	assert.Error(t, err)

	bus, err := NewWithKafka("localhost:9092", "ledger.events", discardLogger())
	require.NoError(t, err)
	assert.NoError(t, bus.Close())
}

func TestNewWithRedis_Validation(t *testing.T) {
	_, err := NewWithRedis(nil, "ledger:events", discardLogger())
	assert.Error(t, err)
}
