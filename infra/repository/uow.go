package repository

import (
	"context"

	"github.com/zezva802/Banking-system/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one abstraction.
// Outside Do it hands out repositories on the base connection; inside Do every
// repository shares the transaction, so row locks and writes commit together.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a transaction. A nested Do opens a savepoint on the current one.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.session().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) AccountRepository() repository.AccountRepository {
	return NewAccountRepository(u.session())
}

func (u *UoW) CardRepository() repository.CardRepository {
	return NewCardRepository(u.session())
}

func (u *UoW) TransactionRepository() repository.TransactionRepository {
	return NewTransactionRepository(u.session())
}

func (u *UoW) AtmOperationRepository() repository.AtmOperationRepository {
	return NewAtmOperationRepository(u.session())
}

func (u *UoW) UserRepository() repository.UserRepository {
	return NewUserRepository(u.session())
}

var _ repository.UnitOfWork = (*UoW)(nil)
