// Package transfer moves money between accounts.
//
// Every transfer follows the same lifecycle: a PENDING record is written on
// its own, both account rows are locked in ascending id order, balances are
// mutated and the record is marked COMPLETED inside that locked scope. When
// anything fails the scope rolls back and the record is marked FAILED in a
// separate write, so no record outlives the call in PENDING.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/currency"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/domain/events"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/eventbus"
	"github.com/zezva802/Banking-system/pkg/iban"
	"github.com/zezva802/Banking-system/pkg/mapper"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/repository"
	"github.com/zezva802/Banking-system/pkg/service/commission"
)

// Service orchestrates own-account and other-account transfers.
type Service struct {
	uow        repository.UnitOfWork
	converter  currency.Converter
	commission *commission.Calculator
	bus        eventbus.Bus
	logger     *slog.Logger
}

// New creates a transfer service. bus may be nil, in which case nothing is
// published.
func New(
	uow repository.UnitOfWork,
	converter currency.Converter,
	calc *commission.Calculator,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:        uow,
		converter:  converter,
		commission: calc,
		bus:        bus,
		logger:     logger.With("service", "transfer"),
	}
}

// TransferOwn moves money between two accounts held by the requester. No
// commission is charged. The sender is debited the amount converted into its
// currency and the receiver credited the amount converted into its own.
func (s *Service) TransferOwn(ctx context.Context, cmd dto.TransferOwnCommand) (*dto.TransactionRead, error) {
	logger := s.logger.With(
		"operation", "TransferOwn",
		"requester", cmd.RequesterID,
		"from", cmd.FromAccountID,
		"to", cmd.ToAccountID,
	)
	logger.Info("TransferOwn started", "amount", cmd.Amount.String(), "currency", cmd.Currency)

	amount, cur, err := parseAmount(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}
	if cmd.FromAccountID == cmd.ToAccountID {
		return nil, domain.ErrSameAccountTransfer
	}

	quote := s.commission.TransferOwn(amount)
	fee, err := money.New(quote.Commission, cur)
	if err != nil {
		return nil, err
	}
	tx := domain.NewPendingTransaction(
		domain.TransactionTypeOwnAccount,
		cmd.FromAccountID, cmd.ToAccountID,
		amount, cur, fee, nil,
	)
	if err := s.uow.TransactionRepository().Create(ctx, tx); err != nil {
		logger.Error("Failed to record pending transfer", "error", err)
		return nil, fmt.Errorf("create pending transaction: %w", err)
	}
	logger = logger.With("transaction_id", tx.ID)

	var sender, receiver *domain.Account
	scopeCtx := context.WithoutCancel(ctx)
	err = s.uow.Do(scopeCtx, func(uow repository.UnitOfWork) error {
		locked, err := lockInOrder(scopeCtx, uow.AccountRepository(), cmd.FromAccountID, cmd.ToAccountID)
		if err != nil {
			return err
		}
		sender, receiver = locked[cmd.FromAccountID], locked[cmd.ToAccountID]

		switch {
		case sender == nil:
			return domain.ErrSenderNotFound
		case !sender.OwnedBy(cmd.RequesterID):
			return domain.ErrNotAccountOwner
		case receiver == nil:
			return domain.ErrReceiverNotFound
		case !receiver.OwnedBy(cmd.RequesterID):
			return domain.ErrUseTransferOther
		}

		debit, err := s.convertTo(scopeCtx, amount, cur, sender.Currency)
		if err != nil {
			return err
		}
		credit, err := s.convertTo(scopeCtx, amount, cur, receiver.Currency)
		if err != nil {
			return err
		}
		return s.settle(scopeCtx, uow, tx, sender, receiver, debit, credit)
	})
	if err != nil {
		logger.Error("TransferOwn failed", "error", err)
		return nil, s.fail(ctx, tx, err)
	}

	logger.Info("TransferOwn completed")
	s.publish(ctx, tx, "")
	return mapper.MapTransactionToRead(tx, sender.IBAN, receiver.IBAN), nil
}

// TransferOther moves money to an account held by someone else. The
// commission is computed on the amount converted into the sender's currency
// and is borne by the sender alone.
func (s *Service) TransferOther(ctx context.Context, cmd dto.TransferOtherCommand) (*dto.TransactionRead, error) {
	toIBAN := iban.Normalize(cmd.ToIBAN)
	logger := s.logger.With(
		"operation", "TransferOther",
		"requester", cmd.RequesterID,
		"from", cmd.FromAccountID,
		"to_iban", toIBAN,
	)
	logger.Info("TransferOther started", "amount", cmd.Amount.String(), "currency", cmd.Currency)

	amount, cur, err := parseAmount(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}

	accounts := s.uow.AccountRepository()
	sender, err := accounts.Get(ctx, cmd.FromAccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrSenderNotFound
	} else if err != nil {
		return nil, err
	}
	receiver, err := accounts.GetByIBAN(ctx, toIBAN)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrReceiverNotFound
	} else if err != nil {
		return nil, err
	}
	if sender.ID == receiver.ID {
		return nil, domain.ErrSameAccountTransfer
	}

	converted, err := s.convertTo(ctx, amount, cur, sender.Currency)
	if err != nil {
		logger.Error("Conversion to sender currency failed", "error", err)
		return nil, err
	}
	quote := s.commission.TransferOther(converted.Amount())
	rate := quote.Rate
	fee, err := money.New(quote.Commission, sender.Currency)
	if err != nil {
		return nil, err
	}
	debit, err := converted.Add(fee)
	if err != nil {
		return nil, err
	}

	tx := domain.NewPendingTransaction(
		domain.TransactionTypeOtherAccount,
		sender.ID, receiver.ID,
		amount, cur, fee, &rate,
	)
	if err := s.uow.TransactionRepository().Create(ctx, tx); err != nil {
		logger.Error("Failed to record pending transfer", "error", err)
		return nil, fmt.Errorf("create pending transaction: %w", err)
	}
	logger = logger.With("transaction_id", tx.ID)

	scopeCtx := context.WithoutCancel(ctx)
	err = s.uow.Do(scopeCtx, func(uow repository.UnitOfWork) error {
		locked, err := lockInOrder(scopeCtx, uow.AccountRepository(), sender.ID, receiver.ID)
		if err != nil {
			return err
		}
		lockedSender, lockedReceiver := locked[sender.ID], locked[receiver.ID]
		switch {
		case lockedSender == nil:
			return domain.ErrSenderNotFound
		case lockedReceiver == nil:
			return domain.ErrReceiverNotFound
		}
		if err := checkOtherOwnership(cmd.RequesterID, lockedSender, lockedReceiver); err != nil {
			return err
		}

		credit, err := s.convertTo(scopeCtx, amount, cur, lockedReceiver.Currency)
		if err != nil {
			return err
		}
		if err := s.settle(scopeCtx, uow, tx, lockedSender, lockedReceiver, debit, credit); err != nil {
			return err
		}
		sender, receiver = lockedSender, lockedReceiver
		return nil
	})
	if err != nil {
		logger.Error("TransferOther failed", "error", err)
		return nil, s.fail(ctx, tx, err)
	}

	logger.Info("TransferOther completed", "commission", quote.Commission.StringFixed(2))
	s.publish(ctx, tx, "")
	return mapper.MapTransactionToRead(tx, sender.IBAN, receiver.IBAN), nil
}

func checkOtherOwnership(requester uuid.UUID, sender, receiver *domain.Account) error {
	if !sender.OwnedBy(requester) {
		return domain.ErrNotAccountOwner
	}
	if receiver.OwnedBy(requester) {
		return domain.ErrUseTransferOwn
	}
	return nil
}

// settle applies the debit and credit and completes the record. It must run
// inside the locked scope.
func (s *Service) settle(
	ctx context.Context,
	uow repository.UnitOfWork,
	tx *domain.Transaction,
	sender, receiver *domain.Account,
	debit, credit money.Money,
) error {
	if err := sender.Debit(debit); err != nil {
		return err
	}
	if err := receiver.Credit(credit); err != nil {
		return err
	}

	accounts := uow.AccountRepository()
	if err := accounts.UpdateBalance(ctx, sender.ID, sender.Balance); err != nil {
		return fmt.Errorf("update sender balance: %w", err)
	}
	if err := accounts.UpdateBalance(ctx, receiver.ID, receiver.Balance); err != nil {
		return fmt.Errorf("update receiver balance: %w", err)
	}
	if err := uow.TransactionRepository().UpdateStatus(ctx, tx.ID, domain.TransactionStatusCompleted); err != nil {
		return fmt.Errorf("complete transaction: %w", err)
	}
	tx.Status = domain.TransactionStatusCompleted
	return nil
}

// convertTo converts amount into the target currency and tags the result with it.
func (s *Service) convertTo(ctx context.Context, amount decimal.Decimal, from, to money.Code) (money.Money, error) {
	converted, err := s.converter.Convert(ctx, amount, from, to, nil)
	if err != nil {
		return money.Money{}, err
	}
	return money.New(converted, to)
}

// fail marks tx FAILED outside the rolled-back scope and returns cause, joined
// with the finalization error when that write fails too.
func (s *Service) fail(ctx context.Context, tx *domain.Transaction, cause error) error {
	finalizeErr := s.uow.TransactionRepository().
		UpdateStatus(context.WithoutCancel(ctx), tx.ID, domain.TransactionStatusFailed)
	if finalizeErr != nil {
		s.logger.Error("Failed to mark transaction as failed",
			"transaction_id", tx.ID, "error", finalizeErr)
		return errors.Join(cause, fmt.Errorf("mark transaction %s failed: %w", tx.ID, finalizeErr))
	}
	tx.Status = domain.TransactionStatusFailed
	s.publish(ctx, tx, cause.Error())
	return cause
}

func (s *Service) publish(ctx context.Context, tx *domain.Transaction, reason string) {
	if s.bus == nil {
		return
	}
	event := events.TransferFinalized{
		TransactionID:     tx.ID,
		TransferType:      string(tx.Type),
		Status:            string(tx.Status),
		SenderAccountID:   tx.SenderAccountID,
		ReceiverAccountID: tx.ReceiverAccountID,
		Amount:            money.Format(tx.Amount),
		Currency:          tx.Currency.String(),
		Commission:        money.Format(tx.Commission),
		Reason:            reason,
		OccurredAt:        time.Now().UTC(),
	}
	if err := s.bus.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("Failed to publish transfer event",
			"transaction_id", tx.ID, "event_type", event.Type(), "error", err)
	}
}

// lockInOrder locks both rows in ascending id order so that two transfers
// touching the same pair cannot deadlock. A missing row is left out of the
// result rather than failing the scope, so the caller decides which side to
// report.
func lockInOrder(
	ctx context.Context,
	accounts repository.AccountRepository,
	a, b uuid.UUID,
) (map[uuid.UUID]*domain.Account, error) {
	ids := []uuid.UUID{a, b}
	if bytes.Compare(a[:], b[:]) > 0 {
		ids[0], ids[1] = b, a
	}

	locked := make(map[uuid.UUID]*domain.Account, 2)
	for _, id := range ids {
		acc, err := accounts.LockForUpdate(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lock account %s: %w", id, err)
		}
		locked[id] = acc
	}
	return locked, nil
}

func parseAmount(amount decimal.Decimal, code string) (decimal.Decimal, money.Code, error) {
	cur, err := money.ParseCode(code)
	if err != nil {
		return decimal.Zero, "", domain.NewError(domain.ErrValidation, "Unsupported currency %q", code)
	}
	rounded := money.Round(amount)
	if !rounded.IsPositive() {
		return decimal.Zero, "", domain.ErrNonPositiveAmount
	}
	return rounded, cur, nil
}
