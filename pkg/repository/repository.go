// Package repository declares the persistence contracts the ledger services
// depend on. Implementations live under infra/repository.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/domain"
)

// DayCount is one bucket of a per-day aggregate.
type DayCount struct {
	Day   time.Time
	Count int64
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByIBAN(ctx context.Context, iban string) (*domain.Account, error)

	// LockForUpdate reads the account and holds an exclusive row lock on it
	// until the surrounding unit of work commits or rolls back.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error)
	ExistsIBAN(ctx context.Context, iban string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// CardRepository defines data access for cards.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetByNumber(ctx context.Context, cardNumber string) (*domain.Card, error)
	UpdatePIN(ctx context.Context, id uuid.UUID, pinHash string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error)
	ExistsNumber(ctx context.Context, cardNumber string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// TransactionRepository defines data access for transfer records.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error
	CountCompletedSince(ctx context.Context, since time.Time) (int64, error)
	ListCompletedWithCommissionSince(ctx context.Context, since time.Time) ([]*domain.Transaction, error)
	CountCompletedPerDaySince(ctx context.Context, since time.Time) ([]DayCount, error)
}

// AtmOperationRepository defines data access for ATM audit records.
type AtmOperationRepository interface {
	Create(ctx context.Context, op *domain.AtmOperation) error

	// ListWithdrawalsSince returns the card's WITHDRAW operations created at or after since.
	ListWithdrawalsSince(ctx context.Context, cardID uuid.UUID, since time.Time) ([]*domain.AtmOperation, error)

	ListAllWithdrawalsSince(ctx context.Context, since time.Time) ([]*domain.AtmOperation, error)
	CountWithdrawalsPerDaySince(ctx context.Context, since time.Time) ([]DayCount, error)
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.AtmOperation, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmailOrPrivateNumber(ctx context.Context, email, privateNumber string) (bool, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}
