// Package money provides a currency-tagged decimal amount with cent precision.
//
// Amounts are shopspring/decimal values. Rounding is always half-up (away
// from zero) to two fractional digits, which matches round(x*100)/100 for the
// non-negative amounts the ledger deals with.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for every supported currency.
const Places = 2

// Money is an immutable amount in a single currency.
type Money struct {
	amount   decimal.Decimal
	currency Code
}

// New creates Money rounded to cent precision.
func New(amount decimal.Decimal, currency Code) (Money, error) {
	if !currency.IsValid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return Money{amount: Round(amount), currency: currency}, nil
}

// Zero returns a zero amount in currency.
func Zero(currency Code) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() Code { return m.currency }

// Add returns m + other. Both must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrMismatchedCurrencies
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other. Both must share a currency.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrMismatchedCurrencies
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MultiplyRate applies rate and rounds the result to cents.
func (m Money) MultiplyRate(rate decimal.Decimal) Money {
	return Money{amount: Round(m.amount.Mul(rate)), currency: m.currency}
}

func (m Money) IsPositive() bool { return m.amount.IsPositive() }

func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, ErrMismatchedCurrencies
	}
	return m.amount.LessThan(other.amount), nil
}

// String renders "12.30 GEL".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", Format(m.amount), m.currency)
}

// Round rounds d half-up to cent precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format renders d with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
