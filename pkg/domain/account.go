package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/money"
)

// Account is a single-currency balance owned by one user.
//
// Invariants:
//   - Balance is only mutated while the row is locked by the surrounding unit of work.
//   - Balance is never negative after a committed operation.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	IBAN      string
	Balance   decimal.Decimal
	Currency  money.Code
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// OwnedBy reports whether userID owns the account.
func (a *Account) OwnedBy(userID uuid.UUID) bool {
	return a.UserID == userID
}

// Debit subtracts amount, refusing to drive the balance negative. amount must
// be in the account currency.
func (a *Account) Debit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	balance, err := a.balance()
	if err != nil {
		return err
	}
	short, err := balance.LessThan(amount)
	if err != nil {
		return fmt.Errorf("debit %s from %s account: %w", amount, a.Currency, err)
	}
	if short {
		return ErrInsufficientBalance
	}
	next, err := balance.Subtract(amount)
	if err != nil {
		return err
	}
	a.Balance = next.Amount()
	return nil
}

// Credit adds amount, which must be in the account currency, to the balance.
func (a *Account) Credit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	balance, err := a.balance()
	if err != nil {
		return err
	}
	next, err := balance.Add(amount)
	if err != nil {
		return fmt.Errorf("credit %s to %s account: %w", amount, a.Currency, err)
	}
	a.Balance = next.Amount()
	return nil
}

func (a *Account) balance() (money.Money, error) {
	return money.New(a.Balance, a.Currency)
}
