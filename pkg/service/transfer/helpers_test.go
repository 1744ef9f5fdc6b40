package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/repository"
)

// failingBalanceUoW fails balance writes for one account inside Do.
type failingBalanceUoW struct {
	repository.UnitOfWork
	accountID uuid.UUID
	err       error
}

func (u *failingBalanceUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.UnitOfWork.Do(ctx, func(inner repository.UnitOfWork) error {
		return fn(&failingBalanceUoW{UnitOfWork: inner, accountID: u.accountID, err: u.err})
	})
}

func (u *failingBalanceUoW) AccountRepository() repository.AccountRepository {
	return &failingAccounts{AccountRepository: u.UnitOfWork.AccountRepository(), accountID: u.accountID, err: u.err}
}

type failingAccounts struct {
	repository.AccountRepository
	accountID uuid.UUID
	err       error
}

func (r *failingAccounts) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	if id == r.accountID {
		return r.err
	}
	return r.AccountRepository.UpdateBalance(ctx, id, balance)
}

// cancelOnDo cancels the caller's context as the locked scope opens, the way
// a client disconnect would.
type cancelOnDo struct {
	repository.UnitOfWork
	cancel context.CancelFunc
}

func (u *cancelOnDo) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	u.cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	return u.UnitOfWork.Do(ctx, fn)
}
