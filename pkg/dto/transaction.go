package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRead is the transfer view returned to the requester. Amount and
// Currency are what was asked for, before conversion.
type TransactionRead struct {
	ID                 uuid.UUID        `json:"id"`
	Type               string           `json:"type"`
	Amount             decimal.Decimal  `json:"amount"`
	Currency           string           `json:"currency"`
	Commission         decimal.Decimal  `json:"commission"`
	CommissionCurrency string           `json:"commissionCurrency"`
	CommissionRate     *decimal.Decimal `json:"commissionRate,omitempty"`
	FromIBAN           string           `json:"from"`
	ToIBAN             string           `json:"to"`
	Status             string           `json:"status"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// TransferOwnCommand moves money between two accounts of the same owner.
type TransferOwnCommand struct {
	RequesterID   uuid.UUID
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Currency      string
}

// TransferOtherCommand moves money to an account held by someone else,
// addressed by IBAN.
type TransferOtherCommand struct {
	RequesterID   uuid.UUID
	FromAccountID uuid.UUID
	ToIBAN        string
	Amount        decimal.Decimal
	Currency      string
}
