// Package limit enforces the rolling daily ATM withdrawal ceiling.
package limit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/currency"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/repository"
)

// Window is the length of the rolling period.
const Window = 24 * time.Hour

var defaultCeiling = decimal.NewFromInt(10000)

// Enforcer checks a candidate withdrawal against what the card has already
// withdrawn inside the window. All amounts are compared in the reference
// currency at current rates.
type Enforcer struct {
	converter currency.Converter
	reference money.Code
	ceiling   decimal.Decimal
	now       func() time.Time
	logger    *slog.Logger
}

// New creates an enforcer from the ledger config.
func New(converter currency.Converter, cfg *config.Ledger, logger *slog.Logger) *Enforcer {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Enforcer{
		converter: converter,
		reference: money.GEL,
		ceiling:   defaultCeiling,
		now:       time.Now,
		logger:    logger.With("service", "limit"),
	}
	if cfg != nil {
		if code, err := money.ParseCode(cfg.ReferenceCurrency); err == nil {
			e.reference = code
		}
		if cfg.DailyWithdrawalLimit.IsPositive() {
			e.ceiling = cfg.DailyWithdrawalLimit
		}
	}
	return e
}

// WithClock replaces the time source. Intended for tests.
func (e *Enforcer) WithClock(now func() time.Time) *Enforcer {
	e.now = now
	return e
}

// Check returns a *domain.LimitExceededError when already + amount would
// exceed the ceiling. Reaching the ceiling exactly is allowed. ops should be
// bound to the caller's unit of work so the read sees the locked state.
func (e *Enforcer) Check(
	ctx context.Context,
	ops repository.AtmOperationRepository,
	cardID uuid.UUID,
	amount decimal.Decimal,
	cur money.Code,
) error {
	since := e.now().Add(-Window)
	logger := e.logger.With("card_id", cardID, "since", since)

	recent, err := ops.ListWithdrawalsSince(ctx, cardID, since)
	if err != nil {
		return fmt.Errorf("list recent withdrawals: %w", err)
	}

	already := decimal.Zero
	for _, op := range recent {
		if op.Amount == nil || op.Currency == nil {
			continue
		}
		inRef, err := e.converter.Convert(ctx, *op.Amount, *op.Currency, e.reference, nil)
		if err != nil {
			return err
		}
		already = already.Add(inRef)
	}

	candidate, err := e.converter.Convert(ctx, amount, cur, e.reference, nil)
	if err != nil {
		return err
	}

	if already.Add(candidate).GreaterThan(e.ceiling) {
		logger.Warn("Daily withdrawal limit exceeded",
			"already", already.StringFixed(2),
			"candidate", candidate.StringFixed(2),
			"ceiling", e.ceiling.String())
		return &domain.LimitExceededError{
			Attempted:         amount,
			AttemptedCurrency: cur,
			Limit:             e.ceiling,
			Reference:         e.reference,
			AlreadyWithdrawn:  already,
		}
	}

	logger.Debug("Daily limit check passed",
		"already", already.StringFixed(2),
		"candidate", candidate.StringFixed(2))
	return nil
}
