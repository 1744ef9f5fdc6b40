package user

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferOwnInput moves money between two accounts of the caller.
type TransferOwnInput struct {
	FromAccountID uuid.UUID       `json:"fromAccountId" validate:"required"`
	ToAccountID   uuid.UUID       `json:"toAccountId" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"required,len=3"`
}

// TransferOtherInput sends money to another customer's IBAN.
type TransferOtherInput struct {
	FromAccountID uuid.UUID       `json:"fromAccountId" validate:"required"`
	ToIBAN        string          `json:"toIban" validate:"required,max=34"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"required,len=3"`
}
