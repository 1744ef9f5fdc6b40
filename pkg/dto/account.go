package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRead is the account view returned to its owner and to operators.
type AccountRead struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	IBAN      string          `json:"iban"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AccountCreate is the operator input for opening an account. An empty IBAN
// asks for a generated one.
type AccountCreate struct {
	UserID   uuid.UUID        `json:"userId" validate:"required"`
	Currency string           `json:"currency" validate:"required,oneof=GEL USD EUR"`
	IBAN     string           `json:"iban,omitempty"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
}

// CardRead never carries the PIN hash.
type CardRead struct {
	ID              uuid.UUID `json:"id"`
	AccountID       uuid.UUID `json:"accountId"`
	CardNumber      string    `json:"cardNumber"`
	CardholderName  string    `json:"cardholderName"`
	ExpirationMonth int       `json:"expirationMonth"`
	ExpirationYear  int       `json:"expirationYear"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CardCreate is the operator input for issuing a card.
type CardCreate struct {
	AccountID      uuid.UUID `json:"accountId" validate:"required"`
	CardholderName string    `json:"cardholderName,omitempty" validate:"omitempty,min=2,max=100"`
	PIN            string    `json:"pin" validate:"required,len=4,numeric"`
}
