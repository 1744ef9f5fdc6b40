package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/currency"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/money"
)

// figure is one amount to be reported, with the day its rate is taken from.
type figure struct {
	amount   decimal.Decimal
	currency money.Code
	at       time.Time
}

type rateKey struct {
	from, to money.Code
	day      string
}

// rateBook memoizes historical rates for the duration of one report so each
// (pair, day) is looked up once.
type rateBook struct {
	converter currency.Converter
	rates     map[rateKey]decimal.Decimal
}

func newRateBook(c currency.Converter) *rateBook {
	return &rateBook{converter: c, rates: make(map[rateKey]decimal.Decimal)}
}

func (b *rateBook) convert(ctx context.Context, e *figure, to money.Code) (decimal.Decimal, error) {
	if e.currency == to {
		return money.Round(e.amount), nil
	}
	at := e.at.UTC()
	key := rateKey{from: e.currency, to: to, day: at.Format(time.DateOnly)}
	rate, ok := b.rates[key]
	if !ok {
		var err error
		if rate, err = b.converter.Rate(ctx, e.currency, to, &at); err != nil {
			return decimal.Zero, err
		}
		b.rates[key] = rate
	}
	return money.Round(e.amount.Mul(rate)), nil
}

// totals sums entries in each report currency, converting item by item.
func (b *rateBook) totals(ctx context.Context, entries []*figure) (dto.CurrencyTotals, error) {
	sums := make(map[money.Code]decimal.Decimal, len(reportCurrencies))
	for _, cur := range reportCurrencies {
		sum := decimal.Zero
		for _, e := range entries {
			v, err := b.convert(ctx, e, cur)
			if err != nil {
				return dto.CurrencyTotals{}, err
			}
			sum = sum.Add(v)
		}
		sums[cur] = money.Round(sum)
	}
	return dto.CurrencyTotals{GEL: sums[money.GEL], USD: sums[money.USD], EUR: sums[money.EUR]}, nil
}
