// Package cache declares the exchange-rate cache contract.
package cache

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateCache stores conversion rates keyed by currency pair and date.
type RateCache interface {
	// Get returns the cached rate and whether it was present and unexpired.
	Get(ctx context.Context, key string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, key string, rate decimal.Decimal, ttl time.Duration) error
	// Clear drops every entry owned by this cache.
	Clear(ctx context.Context) error
}
