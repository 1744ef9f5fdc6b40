package atm

import "github.com/shopspring/decimal"

// AuthorizeInput identifies a card at the terminal.
type AuthorizeInput struct {
	CardNumber string `json:"cardNumber" validate:"required,len=16,numeric"`
	PIN        string `json:"pin" validate:"required"`
}

// WithdrawInput is a cash request in any supported currency.
type WithdrawInput struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"required,len=3"`
}

// ChangePINInput carries the replacement PIN.
type ChangePINInput struct {
	NewPIN string `json:"newPin" validate:"required"`
}
