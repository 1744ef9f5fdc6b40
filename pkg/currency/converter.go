// Package currency declares the conversion contract the ledger services use.
package currency

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/money"
)

// Converter converts amounts between supported currencies.
//
// A nil asOf asks for the current rate; otherwise the rate published for the
// UTC calendar day of *asOf is used.
type Converter interface {
	// Rate returns the value of one unit of from expressed in to.
	Rate(ctx context.Context, from, to money.Code, asOf *time.Time) (decimal.Decimal, error)

	// Convert returns amount*rate rounded half-up to cents.
	Convert(ctx context.Context, amount decimal.Decimal, from, to money.Code, asOf *time.Time) (decimal.Decimal, error)
}
