package money

import "errors"

// Common money package errors
var (
	// ErrMismatchedCurrencies is returned when performing operations on money with
	// different currencies
	ErrMismatchedCurrencies = errors.New("mismatched currencies")

	// ErrInvalidCurrency is returned for codes outside the supported set
	ErrInvalidCurrency = errors.New("invalid currency code")
)
