package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/money"
)

// AtmOperationType enumerates what happened at the ATM.
type AtmOperationType string

const (
	AtmOperationAuthorization AtmOperationType = "AUTHORIZATION"
	AtmOperationBalanceCheck  AtmOperationType = "BALANCE_CHECK"
	AtmOperationWithdraw      AtmOperationType = "WITHDRAW"
	AtmOperationPINChange     AtmOperationType = "PIN_CHANGE"
)

// AtmOperation is an append-only audit fact. Only WITHDRAW carries an amount
// that counts toward the daily limit.
type AtmOperation struct {
	ID            uuid.UUID
	CardID        uuid.UUID
	Type          AtmOperationType
	Amount        *decimal.Decimal
	Commission    decimal.Decimal
	Currency      *money.Code
	CreatedAt     time.Time
	OperationDate time.Time
}

// NewAtmOperation stamps an operation with the current time and day.
func NewAtmOperation(cardID uuid.UUID, opType AtmOperationType, now time.Time) *AtmOperation {
	now = now.UTC()
	return &AtmOperation{
		ID:            uuid.New(),
		CardID:        cardID,
		Type:          opType,
		Commission:    decimal.Zero,
		CreatedAt:     now,
		OperationDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// NewWithdrawOperation records a withdrawal in the currency the customer asked for.
func NewWithdrawOperation(
	cardID uuid.UUID,
	amount, commission decimal.Decimal,
	currency money.Code,
	now time.Time,
) *AtmOperation {
	op := NewAtmOperation(cardID, AtmOperationWithdraw, now)
	op.Amount = &amount
	op.Commission = commission
	op.Currency = &currency
	return op
}
