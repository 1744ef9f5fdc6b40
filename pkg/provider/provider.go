// Package provider declares contracts for external data sources.
package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/money"
)

// RateSource fetches conversion rates from an upstream service.
//
// Implementations report a missing date or currency as domain.ErrNotFound and
// every other failure, including malformed responses, as
// domain.ErrServiceUnavailable.
type RateSource interface {
	// PairRate returns the current rate for one unit of from in to.
	PairRate(ctx context.Context, from, to money.Code) (decimal.Decimal, error)

	// DailyRates returns every rate published for base on the given day,
	// keyed by ISO currency code.
	DailyRates(ctx context.Context, base money.Code, day time.Time) (map[string]decimal.Decimal, error)

	// Name identifies the source in logs.
	Name() string
}
