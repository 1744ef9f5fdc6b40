package app

import (
	"context"
	"log/slog"

	"github.com/zezva802/Banking-system/pkg/domain/events"
	"github.com/zezva802/Banking-system/pkg/eventbus"
)

// setupEventBus attaches the in-process subscribers. Buses that publish to an
// external broker have no local handlers.
func (a *App) setupEventBus() {
	sub, ok := a.Deps.EventBus.(eventbus.Subscriber)
	if !ok {
		return
	}
	logger := a.Deps.Logger.With("subscriber", "ledger-audit")

	for _, t := range []events.EventType{
		events.EventTypeTransferCompleted,
		events.EventTypeTransferFailed,
		events.EventTypeWithdrawalCompleted,
	} {
		sub.Register(t, auditHandler(logger))
	}
}

// auditHandler writes every finalized movement to the log.
func auditHandler(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		switch ev := e.(type) {
		case events.TransferFinalized:
			level := slog.LevelInfo
			if ev.Status != "COMPLETED" {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "Transfer finalized",
				"transaction_id", ev.TransactionID,
				"type", ev.TransferType,
				"status", ev.Status,
				"amount", ev.Amount,
				"currency", ev.Currency,
				"commission", ev.Commission,
				"reason", ev.Reason)
		case events.WithdrawalCompleted:
			logger.InfoContext(ctx, "Withdrawal completed",
				"operation_id", ev.OperationID,
				"card_id", ev.CardID,
				"amount", ev.Amount,
				"currency", ev.Currency,
				"total_deducted", ev.TotalDeducted)
		default:
			logger.DebugContext(ctx, "Unhandled event", "type", e.Type())
		}
		return nil
	}
}
