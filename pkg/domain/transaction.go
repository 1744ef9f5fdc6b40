package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/money"
)

// TransactionType distinguishes same-owner from cross-owner transfers.
type TransactionType string

const (
	TransactionTypeOwnAccount   TransactionType = "OWN_ACCOUNT"
	TransactionTypeOtherAccount TransactionType = "OTHER_ACCOUNT"
)

// TransactionStatus is the lifecycle state of a transfer record.
// PENDING is transient; COMPLETED and FAILED are terminal.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Transaction is the audit record of a transfer. Amount and Currency are the
// values the requester asked to move, before any conversion. The commission is
// charged in the sender's currency, which CommissionCurrency records.
type Transaction struct {
	ID                 uuid.UUID
	Amount             decimal.Decimal
	Currency           money.Code
	Commission         decimal.Decimal
	CommissionCurrency money.Code
	CommissionRate     *decimal.Decimal
	Type               TransactionType
	Status             TransactionStatus
	SenderAccountID    uuid.UUID
	ReceiverAccountID  uuid.UUID
	CreatedAt          time.Time
}

// NewPendingTransaction builds a PENDING record ready to be persisted.
func NewPendingTransaction(
	txType TransactionType,
	senderID, receiverID uuid.UUID,
	amount decimal.Decimal,
	currency money.Code,
	commission money.Money,
	commissionRate *decimal.Decimal,
) *Transaction {
	return &Transaction{
		ID:                 uuid.New(),
		Amount:             amount,
		Currency:           currency,
		Commission:         commission.Amount(),
		CommissionCurrency: commission.Currency(),
		CommissionRate:     commissionRate,
		Type:               txType,
		Status:             TransactionStatusPending,
		SenderAccountID:    senderID,
		ReceiverAccountID:  receiverID,
		CreatedAt:          time.Now().UTC(),
	}
}

// CommissionIn returns the commission with its currency. An unset
// CommissionCurrency falls back to the transfer currency.
func (t *Transaction) CommissionIn() (decimal.Decimal, money.Code) {
	if t.CommissionCurrency != "" {
		return t.Commission, t.CommissionCurrency
	}
	return t.Commission, t.Currency
}
