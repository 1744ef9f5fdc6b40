package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AtmSession is what a valid ATM session token carries.
type AtmSession struct {
	CardID    uuid.UUID
	AccountID uuid.UUID
}

type AtmAuthorization struct {
	SessionToken   string `json:"sessionToken"`
	CardholderName string `json:"cardholderName"`
	ExpiresIn      int    `json:"expiresIn"`
}

type AtmBalance struct {
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	AccountIBAN string          `json:"accountIban"`
}

// WithdrawalResult reports a committed withdrawal. Amount, Commission and
// TotalDeducted are in the requested currency; NewAccountBalance is in the
// account currency.
type WithdrawalResult struct {
	Message           string          `json:"message"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Commission        decimal.Decimal `json:"commission"`
	TotalDeducted     decimal.Decimal `json:"totalDeducted"`
	NewAccountBalance decimal.Decimal `json:"newAccountBalance"`
}
