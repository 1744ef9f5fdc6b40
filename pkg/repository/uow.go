package repository

import "context"

// UnitOfWork defines the contract for transactional work and repository access.
//
// Repositories obtained from the UnitOfWork passed into Do are bound to that
// transaction; row locks taken through them are released when Do returns.
// Repositories obtained from the outer UnitOfWork run outside any transaction
// and commit each statement on its own.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an error,
	// or panics, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() AccountRepository
	CardRepository() CardRepository
	TransactionRepository() TransactionRepository
	AtmOperationRepository() AtmOperationRepository
	UserRepository() UserRepository
}
