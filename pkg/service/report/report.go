// Package report computes the operator dashboards: user registrations and
// transaction activity. Money figures are converted at the historical rate
// of each record's day.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/currency"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/repository"
	"golang.org/x/sync/errgroup"
)

var (
	reportCurrencies = []money.Code{money.GEL, money.USD, money.EUR}
	minCommission    = decimal.RequireFromString("0.01")
)

// Service builds the reports.
type Service struct {
	uow       repository.UnitOfWork
	converter currency.Converter
	now       func() time.Time
	logger    *slog.Logger
}

func New(uow repository.UnitOfWork, converter currency.Converter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:       uow,
		converter: converter,
		now:       time.Now,
		logger:    logger.With("service", "report"),
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// UserStatistics counts registrations in the current calendar year, the
// previous one and the last 30 days. Soft-deleted users are not counted.
func (s *Service) UserStatistics(ctx context.Context) (*dto.UserStatistics, error) {
	now := s.now().UTC()
	thisYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	lastYear := thisYear.AddDate(-1, 0, 0)
	nextYear := thisYear.AddDate(1, 0, 0)
	users := s.uow.UserRepository()

	var out dto.UserStatistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.RegisteredThisYear, err = users.CountCreatedBetween(gctx, thisYear, nextYear)
		return
	})
	g.Go(func() (err error) {
		out.RegisteredLastYear, err = users.CountCreatedBetween(gctx, lastYear, thisYear)
		return
	})
	g.Go(func() (err error) {
		out.RegisteredLast30, err = users.CountCreatedBetween(gctx, now.AddDate(0, 0, -30), nextYear)
		return
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("UserStatistics failed", "error", err)
		return nil, fmt.Errorf("user statistics: %w", err)
	}
	return &out, nil
}

// TransactionStatistics reports completed transfer counts, commission
// income, average commission, daily activity and ATM withdrawal volume.
// Windows start at the first day of the month one, six or twelve months ago.
func (s *Service) TransactionStatistics(ctx context.Context) (*dto.TransactionStatistics, error) {
	now := s.now().UTC()
	lastMonth := monthsAgo(now, 1)
	lastHalf := monthsAgo(now, 6)
	lastYear := monthsAgo(now, 12)
	logger := s.logger.With("operation", "TransactionStatistics", "since", lastYear)

	txs := s.uow.TransactionRepository()
	ops := s.uow.AtmOperationRepository()

	var (
		out          dto.TransactionStatistics
		commissioned []*figure
		withdrawals  []*figure
		opFees       []*figure
		txDaily      []repository.DayCount
		opDaily      []repository.DayCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TransactionsLastMonth, err = txs.CountCompletedSince(gctx, lastMonth)
		return
	})
	g.Go(func() (err error) {
		out.TransactionsLast6Months, err = txs.CountCompletedSince(gctx, lastHalf)
		return
	})
	g.Go(func() (err error) {
		out.TransactionsLastYear, err = txs.CountCompletedSince(gctx, lastYear)
		return
	})
	g.Go(func() error {
		list, err := txs.ListCompletedWithCommissionSince(gctx, lastYear)
		for _, tx := range list {
			fee, cur := tx.CommissionIn()
			commissioned = append(commissioned, &figure{fee, cur, tx.CreatedAt})
		}
		return err
	})
	g.Go(func() error {
		list, err := ops.ListAllWithdrawalsSince(gctx, lastYear)
		for _, op := range list {
			if op.Currency == nil {
				continue
			}
			if op.Amount != nil {
				withdrawals = append(withdrawals, &figure{*op.Amount, *op.Currency, op.CreatedAt})
			}
			if op.Commission.GreaterThanOrEqual(minCommission) {
				opFees = append(opFees, &figure{op.Commission, *op.Currency, op.CreatedAt})
			}
		}
		return err
	})
	g.Go(func() (err error) {
		txDaily, err = txs.CountCompletedPerDaySince(gctx, lastMonth)
		return
	})
	g.Go(func() (err error) {
		opDaily, err = ops.CountWithdrawalsPerDaySince(gctx, lastMonth)
		return
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to load report data", "error", err)
		return nil, fmt.Errorf("transaction statistics: %w", err)
	}

	book := newRateBook(s.converter)
	fees := make([]*figure, 0, len(commissioned)+len(opFees))
	fees = append(fees, commissioned...)
	fees = append(fees, opFees...)
	income, err := book.totals(ctx, fees)
	if err != nil {
		logger.Error("Failed to convert commission income", "error", err)
		return nil, err
	}
	out.CommissionIncome = income
	out.AverageCommission = average(income, len(fees))

	if out.TotalAtmWithdrawalAmount, err = book.totals(ctx, withdrawals); err != nil {
		logger.Error("Failed to convert withdrawal volume", "error", err)
		return nil, err
	}

	out.DailyTransactions = zeroFill(lastMonth, now, txDaily, opDaily)
	logger.Info("Transaction statistics computed",
		"commissioned", len(fees),
		"withdrawals", len(withdrawals),
		"rate_lookups", len(book.rates))
	return &out, nil
}

// monthsAgo returns midnight UTC on the first day of the month n months
// before now.
func monthsAgo(now time.Time, n int) time.Time {
	return time.Date(now.Year(), now.Month()-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

func average(total dto.CurrencyTotals, n int) dto.CurrencyTotals {
	if n == 0 {
		return dto.CurrencyTotals{GEL: decimal.Zero, USD: decimal.Zero, EUR: decimal.Zero}
	}
	d := decimal.NewFromInt(int64(n))
	return dto.CurrencyTotals{
		GEL: money.Round(total.GEL.Div(d)),
		USD: money.Round(total.USD.Div(d)),
		EUR: money.Round(total.EUR.Div(d)),
	}
}

// zeroFill merges per-day buckets into one entry per day from since through
// the day of now.
func zeroFill(since, now time.Time, buckets ...[]repository.DayCount) []dto.DailyCount {
	counts := make(map[string]int64)
	for _, b := range buckets {
		for _, c := range b {
			counts[c.Day.UTC().Format(time.DateOnly)] += c.Count
		}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]dto.DailyCount, 0, 32)
	for d := since; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		out = append(out, dto.DailyCount{Date: key, Count: counts[key]})
	}
	return out
}
