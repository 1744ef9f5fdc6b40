// Package commission computes the fees charged on money movements.
package commission

import (
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/money"
)

var (
	// DefaultTransferRate applies to transfers between different owners.
	DefaultTransferRate = decimal.RequireFromString("0.01")
	// DefaultATMRate applies to ATM withdrawals.
	DefaultATMRate = decimal.RequireFromString("0.02")
)

// Quote is a commission together with the rate it was computed at.
type Quote struct {
	Commission decimal.Decimal
	Rate       decimal.Decimal
}

// Calculator applies the configured rates. It is stateless and safe for
// concurrent use.
type Calculator struct {
	transferRate decimal.Decimal
	atmRate      decimal.Decimal
}

// New creates a calculator from the ledger config. Zero or negative rates
// fall back to the defaults.
func New(cfg *config.Ledger) *Calculator {
	c := &Calculator{transferRate: DefaultTransferRate, atmRate: DefaultATMRate}
	if cfg == nil {
		return c
	}
	if cfg.TransferCommissionRate.IsPositive() {
		c.transferRate = cfg.TransferCommissionRate
	}
	if cfg.AtmCommissionRate.IsPositive() {
		c.atmRate = cfg.AtmCommissionRate
	}
	return c
}

// TransferOther prices a transfer to another owner's account.
func (c *Calculator) TransferOther(amount decimal.Decimal) Quote {
	return Quote{
		Commission: money.Round(amount.Mul(c.transferRate)),
		Rate:       c.transferRate,
	}
}

// TransferOwn is always free.
func (c *Calculator) TransferOwn(decimal.Decimal) Quote {
	return Quote{Commission: decimal.Zero, Rate: decimal.Zero}
}

// ATMWithdrawal prices a cash withdrawal.
func (c *Calculator) ATMWithdrawal(amount decimal.Decimal) decimal.Decimal {
	return money.Round(amount.Mul(c.atmRate))
}

// ATMRate returns the rate used by ATMWithdrawal.
func (c *Calculator) ATMRate() decimal.Decimal { return c.atmRate }
