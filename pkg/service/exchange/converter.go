// Package exchange converts money between currencies using a cached upstream
// rate source.
package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/cache"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/currency"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/provider"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCurrentTTL is how long a current rate is reused.
	DefaultCurrentTTL = time.Hour
	// DefaultHistoricalTTL is how long a historical rate is reused.
	DefaultHistoricalTTL = 24 * time.Hour

	currentKeySuffix = "current"
)

// Converter implements currency.Converter. The cache is owned by the
// instance; concurrent misses for the same key share one upstream call.
type Converter struct {
	source        provider.RateSource
	cache         cache.RateCache
	currentTTL    time.Duration
	historicalTTL time.Duration
	group         singleflight.Group
	logger        *slog.Logger
}

var _ currency.Converter = (*Converter)(nil)

// New creates a converter. A nil cfg uses the default TTLs.
func New(
	source provider.RateSource,
	rateCache cache.RateCache,
	cfg *config.ExchangeRateCache,
	logger *slog.Logger,
) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Converter{
		source:        source,
		cache:         rateCache,
		currentTTL:    DefaultCurrentTTL,
		historicalTTL: DefaultHistoricalTTL,
		logger:        logger.With("service", "exchange"),
	}
	if cfg != nil {
		if cfg.CurrentTTL > 0 {
			c.currentTTL = cfg.CurrentTTL
		}
		if cfg.HistoricalTTL > 0 {
			c.historicalTTL = cfg.HistoricalTTL
		}
	}
	return c
}

// CacheKey builds the (from, to, day|"current") key.
func CacheKey(from, to money.Code, asOf *time.Time) string {
	day := currentKeySuffix
	if asOf != nil {
		day = asOf.UTC().Format(time.DateOnly)
	}
	return fmt.Sprintf("%s:%s:%s", from, to, day)
}

// Rate implements currency.Converter.
func (c *Converter) Rate(ctx context.Context, from, to money.Code, asOf *time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if !from.IsValid() || !to.IsValid() {
		return decimal.Zero, domain.NewError(domain.ErrValidation, "Unsupported currency pair %s to %s", from, to)
	}

	key := CacheKey(from, to, asOf)
	logger := c.logger.With("key", key)

	rate, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Rate cache read failed, falling back to source", "error", err)
	} else if ok {
		logger.Debug("Using cached rate", "rate", rate)
		return rate, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// The fetch is shared; one caller going away must not fail the rest.
		fetchCtx := context.WithoutCancel(ctx)
		fetched, err := c.fetch(fetchCtx, from, to, asOf)
		if err != nil {
			return nil, err
		}
		ttl := c.currentTTL
		if asOf != nil {
			ttl = c.historicalTTL
		}
		if err := c.cache.Set(fetchCtx, key, fetched, ttl); err != nil {
			logger.Warn("Rate cache write failed", "error", err)
		}
		return fetched, nil
	})
	if err != nil {
		logger.Error("Failed to fetch exchange rate", "error", err)
		return decimal.Zero, err
	}

	rate = v.(decimal.Decimal)
	logger.Info("Fetched exchange rate", "rate", rate, "shared", shared)
	return rate, nil
}

func (c *Converter) fetch(ctx context.Context, from, to money.Code, asOf *time.Time) (decimal.Decimal, error) {
	if asOf == nil {
		return c.source.PairRate(ctx, from, to)
	}

	day := asOf.UTC()
	rates, err := c.source.DailyRates(ctx, from, day)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := rates[to.String()]
	if !ok {
		return decimal.Zero, domain.NewError(domain.ErrNotFound,
			"Exchange rate data not available for %s to %s on %s.", from, to, day.Format(time.DateOnly))
	}
	if !rate.IsPositive() {
		return decimal.Zero, domain.NewError(domain.ErrServiceUnavailable,
			"Unable to fetch exchange rates. Please try again later.")
	}
	return rate, nil
}

// Convert implements currency.Converter.
func (c *Converter) Convert(
	ctx context.Context,
	amount decimal.Decimal,
	from, to money.Code,
	asOf *time.Time,
) (decimal.Decimal, error) {
	rate, err := c.Rate(ctx, from, to, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Round(amount.Mul(rate)), nil
}

// ClearCache drops every cached rate.
func (c *Converter) ClearCache(ctx context.Context) error {
	if err := c.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear rate cache: %w", err)
	}
	c.logger.Info("Exchange rate caches cleared")
	return nil
}
