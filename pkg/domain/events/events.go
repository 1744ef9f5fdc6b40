// Package events defines the ledger facts published after a money movement
// has been finalized.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of an event in the system.
type EventType string

const (
	EventTypeTransferCompleted   EventType = "Transfer.Completed"
	EventTypeTransferFailed      EventType = "Transfer.Failed"
	EventTypeWithdrawalCompleted EventType = "Withdrawal.Completed"
)

// Event is anything the bus can carry.
type Event interface {
	Type() EventType
}

// TransferFinalized carries the outcome of a transfer. Amounts are decimal
// strings so the payload survives JSON round trips without float loss.
type TransferFinalized struct {
	TransactionID     uuid.UUID `json:"transaction_id"`
	TransferType      string    `json:"transfer_type"`
	Status            string    `json:"status"`
	SenderAccountID   uuid.UUID `json:"sender_account_id"`
	ReceiverAccountID uuid.UUID `json:"receiver_account_id"`
	Amount            string    `json:"amount"`
	Currency          string    `json:"currency"`
	Commission        string    `json:"commission"`
	Reason            string    `json:"reason,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

func (e TransferFinalized) Type() EventType {
	if e.Status == "COMPLETED" {
		return EventTypeTransferCompleted
	}
	return EventTypeTransferFailed
}

// WithdrawalCompleted is emitted after an ATM withdrawal commits.
type WithdrawalCompleted struct {
	OperationID   uuid.UUID `json:"operation_id"`
	CardID        uuid.UUID `json:"card_id"`
	AccountID     uuid.UUID `json:"account_id"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Commission    string    `json:"commission"`
	TotalDeducted string    `json:"total_deducted"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (e WithdrawalCompleted) Type() EventType { return EventTypeWithdrawalCompleted }
