// Package atm serves the card-present channel: session authorization, balance
// inquiry, cash withdrawal and PIN change. Every call leaves an AtmOperation
// audit record; a failed withdrawal leaves none.
package atm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/currency"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/domain/events"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/eventbus"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/repository"
	"github.com/zezva802/Banking-system/pkg/service/commission"
	"github.com/zezva802/Banking-system/pkg/utils"
)

const (
	withdrawalMessage = "Withdrawal successful"
	pinChangedMessage = "PIN changed successfully"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// ErrInvalidPINFormat rejects a new PIN that is not exactly four digits.
var ErrInvalidPINFormat = domain.NewError(domain.ErrValidation, "PIN must be exactly 4 digits")

// SessionIssuer signs ATM session tokens.
type SessionIssuer interface {
	IssueAtmSession(cardID, accountID uuid.UUID) (string, time.Duration, error)
}

// LimitChecker enforces the rolling daily withdrawal ceiling.
type LimitChecker interface {
	Check(
		ctx context.Context,
		ops repository.AtmOperationRepository,
		cardID uuid.UUID,
		amount decimal.Decimal,
		cur money.Code,
	) error
}

// Service implements the ATM operations.
type Service struct {
	uow        repository.UnitOfWork
	converter  currency.Converter
	commission *commission.Calculator
	limits     LimitChecker
	sessions   SessionIssuer
	bus        eventbus.Bus
	pinCost    int
	now        func() time.Time
	logger     *slog.Logger
}

// Deps groups the collaborators of Service.
type Deps struct {
	Uow          repository.UnitOfWork
	Converter    currency.Converter
	Commission   *commission.Calculator
	Limits       LimitChecker
	Sessions     SessionIssuer
	EventBus     eventbus.Bus
	Provisioning *config.Provisioning
	Logger       *slog.Logger
}

func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pinCost := 0
	if deps.Provisioning != nil {
		pinCost = deps.Provisioning.PinBcryptCost
	}
	return &Service{
		uow:        deps.Uow,
		converter:  deps.Converter,
		commission: deps.Commission,
		limits:     deps.Limits,
		sessions:   deps.Sessions,
		bus:        deps.EventBus,
		pinCost:    pinCost,
		now:        time.Now,
		logger:     logger.With("service", "atm"),
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Authorize opens an ATM session for a card. Soft-deleted and expired cards
// are refused without writing an operation.
func (s *Service) Authorize(ctx context.Context, cardNumber, pin string) (*dto.AtmAuthorization, error) {
	cardNumber = strings.TrimSpace(cardNumber)
	logger := s.logger.With("operation", "Authorize", "card", maskCardNumber(cardNumber))
	logger.Info("Authorize started")

	card, err := s.uow.CardRepository().GetByNumber(ctx, cardNumber)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrCardNotFound
	} else if err != nil {
		return nil, err
	}

	now := s.now()
	if !card.IsActive(now) {
		logger.Warn("Authorize refused: card inactive", "card_id", card.ID)
		return nil, domain.ErrCardInactive
	}
	if !utils.CheckPasswordHash(pin, card.PINHash) {
		logger.Warn("Authorize refused: invalid PIN", "card_id", card.ID)
		return nil, domain.ErrInvalidPIN
	}

	token, ttl, err := s.sessions.IssueAtmSession(card.ID, card.AccountID)
	if err != nil {
		return nil, err
	}
	op := domain.NewAtmOperation(card.ID, domain.AtmOperationAuthorization, now)
	if err := s.uow.AtmOperationRepository().Create(ctx, op); err != nil {
		return nil, fmt.Errorf("record authorization: %w", err)
	}

	logger.Info("Authorize successful", "card_id", card.ID)
	return &dto.AtmAuthorization{
		SessionToken:   token,
		CardholderName: card.CardholderName,
		ExpiresIn:      int(ttl.Seconds()),
	}, nil
}

// Balance reports the balance of the account behind the session.
func (s *Service) Balance(ctx context.Context, session dto.AtmSession) (*dto.AtmBalance, error) {
	logger := s.logger.With("operation", "Balance", "card_id", session.CardID)

	account, err := s.uow.AccountRepository().Get(ctx, session.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrAccountNotFound
	} else if err != nil {
		return nil, err
	}

	op := domain.NewAtmOperation(session.CardID, domain.AtmOperationBalanceCheck, s.now())
	cur := account.Currency
	op.Currency = &cur
	if err := s.uow.AtmOperationRepository().Create(ctx, op); err != nil {
		return nil, fmt.Errorf("record balance check: %w", err)
	}

	logger.Info("Balance served")
	return &dto.AtmBalance{
		Balance:     account.Balance,
		Currency:    account.Currency.String(),
		AccountIBAN: account.IBAN,
	}, nil
}

// Withdraw debits amount plus commission, converted into the account
// currency, and records the WITHDRAW operation. The whole sequence runs in one
// locked scope that survives request cancellation.
func (s *Service) Withdraw(
	ctx context.Context,
	session dto.AtmSession,
	amount decimal.Decimal,
	currencyCode string,
) (*dto.WithdrawalResult, error) {
	logger := s.logger.With(
		"operation", "Withdraw",
		"card_id", session.CardID,
		"account_id", session.AccountID,
	)
	logger.Info("Withdraw started", "amount", amount.String(), "currency", currencyCode)

	cur, err := money.ParseCode(currencyCode)
	if err != nil {
		return nil, domain.NewError(domain.ErrValidation, "Unsupported currency %q", currencyCode)
	}
	amount = money.Round(amount)
	if !amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	fee := s.commission.ATMWithdrawal(amount)
	total := amount.Add(fee)

	var (
		op      *domain.AtmOperation
		account *domain.Account
		debit   money.Money
	)
	scopeCtx := context.WithoutCancel(ctx)
	err = s.uow.Do(scopeCtx, func(uow repository.UnitOfWork) error {
		var err error
		account, err = uow.AccountRepository().LockForUpdate(scopeCtx, session.AccountID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAccountNotFound
		} else if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		converted, err := s.converter.Convert(scopeCtx, total, cur, account.Currency, nil)
		if err != nil {
			return err
		}
		if debit, err = money.New(converted, account.Currency); err != nil {
			return err
		}
		if account.Balance.LessThan(debit.Amount()) {
			return domain.ErrInsufficientBalance
		}

		if err := s.limits.Check(scopeCtx, uow.AtmOperationRepository(), session.CardID, amount, cur); err != nil {
			return err
		}

		if err := account.Debit(debit); err != nil {
			return err
		}
		if err := uow.AccountRepository().UpdateBalance(scopeCtx, account.ID, account.Balance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		op = domain.NewWithdrawOperation(session.CardID, amount, fee, cur, s.now())
		if err := uow.AtmOperationRepository().Create(scopeCtx, op); err != nil {
			return fmt.Errorf("record withdrawal: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Withdraw failed", "error", err)
		return nil, err
	}

	logger.Info("Withdraw completed",
		"debited", debit.String(),
		"account_currency", account.Currency,
		"commission", fee.StringFixed(2))
	s.publish(ctx, events.WithdrawalCompleted{
		OperationID:   op.ID,
		CardID:        session.CardID,
		AccountID:     account.ID,
		Amount:        money.Format(amount),
		Currency:      cur.String(),
		Commission:    money.Format(fee),
		TotalDeducted: money.Format(total),
		OccurredAt:    op.CreatedAt,
	})

	return &dto.WithdrawalResult{
		Message:           withdrawalMessage,
		Amount:            amount,
		Currency:          cur.String(),
		Commission:        fee,
		TotalDeducted:     total,
		NewAccountBalance: account.Balance,
	}, nil
}

// ChangePIN replaces the card's PIN and records the change in one scope.
func (s *Service) ChangePIN(ctx context.Context, session dto.AtmSession, newPIN string) (string, error) {
	logger := s.logger.With("operation", "ChangePIN", "card_id", session.CardID)

	if !pinPattern.MatchString(newPIN) {
		return "", ErrInvalidPINFormat
	}
	if _, err := s.uow.CardRepository().Get(ctx, session.CardID); errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrCardNotFound
	} else if err != nil {
		return "", err
	}

	hash, err := utils.HashPassword(newPIN, s.pinCost)
	if err != nil {
		return "", err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.CardRepository().UpdatePIN(ctx, session.CardID, hash); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrCardNotFound
			}
			return fmt.Errorf("update pin: %w", err)
		}
		op := domain.NewAtmOperation(session.CardID, domain.AtmOperationPINChange, s.now())
		return uow.AtmOperationRepository().Create(ctx, op)
	})
	if err != nil {
		logger.Error("ChangePIN failed", "error", err)
		return "", err
	}

	logger.Info("PIN changed")
	return pinChangedMessage, nil
}

func (s *Service) publish(ctx context.Context, event events.WithdrawalCompleted) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("Failed to publish withdrawal event", "operation_id", event.OperationID, "error", err)
	}
}

// maskCardNumber keeps the last four digits for logs.
func maskCardNumber(n string) string {
	if len(n) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}
