// Package mocks holds testify mocks for the ledger's outbound ports.
package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/zezva802/Banking-system/pkg/cache"
	"github.com/zezva802/Banking-system/pkg/currency"
	"github.com/zezva802/Banking-system/pkg/domain/events"
	"github.com/zezva802/Banking-system/pkg/eventbus"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/provider"
)

// RateSource is a mock of provider.RateSource.
type RateSource struct {
	mock.Mock
}

var _ provider.RateSource = (*RateSource)(nil)

func (m *RateSource) PairRate(ctx context.Context, from, to money.Code) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *RateSource) DailyRates(ctx context.Context, base money.Code, day time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, base, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *RateSource) Name() string { return "mock" }

// Converter is a mock of currency.Converter.
type Converter struct {
	mock.Mock
}

var _ currency.Converter = (*Converter)(nil)

func (m *Converter) Rate(ctx context.Context, from, to money.Code, asOf *time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *Converter) Convert(
	ctx context.Context,
	amount decimal.Decimal,
	from, to money.Code,
	asOf *time.Time,
) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, from, to, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// RateCache is a mock of cache.RateCache.
type RateCache struct {
	mock.Mock
}

var _ cache.RateCache = (*RateCache)(nil)

func (m *RateCache) Get(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *RateCache) Set(ctx context.Context, key string, rate decimal.Decimal, ttl time.Duration) error {
	return m.Called(ctx, key, rate, ttl).Error(0)
}

func (m *RateCache) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Bus is a mock of eventbus.Bus.
type Bus struct {
	mock.Mock
}

var _ eventbus.Bus = (*Bus)(nil)

func (m *Bus) Emit(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}
