package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDb.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

var accountColumns = []string{
	"id", "user_id", "iban", "balance", "currency", "created_at", "updated_at", "deleted_at",
}

func TestAccountRepository_LockForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	accountID, userID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = \$1 AND "accounts"\."deleted_at" IS NULL ORDER BY "accounts"\."id" LIMIT \$2 FOR UPDATE`).
		WithArgs(accountID, 1).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(accountID, userID, "GE29NB0000000101904917", "1000.00", "GEL", now, now, nil))

	acct, err := repo.LockForUpdate(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, accountID, acct.ID)
	assert.Equal(t, userID, acct.UserID)
	assert.Equal(t, money.GEL, acct.Currency)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Nil(t, acct.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_LockForUpdate_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(accountColumns))

	acct, err := repo.LockForUpdate(context.Background(), uuid.New())
	assert.Nil(t, acct)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_UpdateBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "accounts" SET "balance"=\$1,"updated_at"=\$2 WHERE id = \$3 AND "accounts"\."deleted_at" IS NULL`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateBalance(context.Background(), id, decimal.RequireFromString("900.00")))

	mock.ExpectExec(`UPDATE "accounts"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateBalance(context.Background(), uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO "accounts" (.+) VALUES (.+)`).
		WillReturnError(gorm.ErrDuplicatedKey)

	err := repo.Create(context.Background(), &domain.Account{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		IBAN:     "GE29NB0000000101904917",
		Balance:  decimal.Zero,
		Currency: money.GEL,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func mustMoney(t *testing.T, amount string, cur money.Code) money.Money {
	t.Helper()
	m, err := money.New(decimal.RequireFromString(amount), cur)
	require.NoError(t, err)
	return m
}

func TestTransactionMapping_KeepsCommissionCurrency(t *testing.T) {
	rate := decimal.RequireFromString("0.01")
	tx := domain.NewPendingTransaction(
		domain.TransactionTypeOtherAccount,
		uuid.New(), uuid.New(),
		decimal.NewFromInt(100), money.USD,
		mustMoney(t, "2.70", money.GEL), &rate,
	)

	m := mapTransactionToModel(tx)
	assert.Equal(t, "USD", m.Currency)
	assert.Equal(t, "GEL", m.CommissionCurrency)

	back := mapTransactionToDomain(&m)
	assert.Equal(t, money.GEL, back.CommissionCurrency)
	assert.True(t, back.Commission.Equal(decimal.RequireFromString("2.70")))

	legacy := &domain.Transaction{Currency: money.EUR, Commission: decimal.NewFromInt(1)}
	assert.Equal(t, "EUR", mapTransactionToModel(legacy).CommissionCurrency)
}

func TestTransactionRepository_CreateAndUpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)
	rate := decimal.RequireFromString("0.01")
	tx := domain.NewPendingTransaction(
		domain.TransactionTypeOtherAccount,
		uuid.New(), uuid.New(),
		decimal.NewFromInt(100), money.USD,
		mustMoney(t, "2.70", money.GEL), &rate,
	)

	mock.ExpectExec(`INSERT INTO "transactions" (.+) VALUES (.+)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), tx))

	mock.ExpectExec(`UPDATE "transactions" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3 AND status = \$4`).
		WithArgs("COMPLETED", sqlmock.AnyArg(), tx.ID, "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), tx.ID, domain.TransactionStatusCompleted))

	mock.ExpectExec(`UPDATE "transactions"`).
		WithArgs("FAILED", sqlmock.AnyArg(), tx.ID, "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), tx.ID, domain.TransactionStatusFailed)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_CreateError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec(`INSERT INTO "transactions" (.+) VALUES (.+)`).
		WillReturnError(errors.New("create error"))

	err := repo.Create(context.Background(), domain.NewPendingTransaction(
		domain.TransactionTypeOwnAccount, uuid.New(), uuid.New(),
		decimal.NewFromInt(1), money.GEL, money.Zero(money.GEL), nil,
	))
	assert.EqualError(t, err, "create error")
}

func TestAtmOperationRepository_ListWithdrawalsSince(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAtmOperationRepository(db)
	cardID := uuid.New()
	since := time.Now().Add(-24 * time.Hour)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "card_id", "type", "amount", "commission", "currency", "created_at", "operation_date",
	}).
		AddRow(uuid.New(), cardID, "WITHDRAW", "100.00", "2.00", "USD", now, now).
		AddRow(uuid.New(), cardID, "WITHDRAW", "50.00", "1.00", "GEL", now, now)

	mock.ExpectQuery(`SELECT \* FROM "atm_operations" WHERE card_id = \$1 AND type = \$2 AND created_at >= \$3 ORDER BY created_at ASC`).
		WithArgs(cardID, "WITHDRAW", sqlmock.AnyArg()).
		WillReturnRows(rows)

	ops, err := repo.ListWithdrawalsSince(context.Background(), cardID, since)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	require.NotNil(t, ops[0].Amount)
	require.NotNil(t, ops[0].Currency)
	assert.Equal(t, "100", ops[0].Amount.String())
	assert.Equal(t, money.USD, *ops[0].Currency)
	assert.Equal(t, domain.AtmOperationWithdraw, ops[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_GetByNumber_IncludesDeleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCardRepository(db)
	now := time.Now().UTC()
	cardID := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "account_id", "card_number", "cardholder_name", "expiration_month",
		"expiration_year", "pin", "created_at", "updated_at", "deleted_at",
	}).AddRow(cardID, uuid.New(), "4169738812345678", "NINO BERIDZE", 5, 2029, "hash", now, now, now)

	mock.ExpectQuery(`SELECT \* FROM "cards" WHERE card_number = \$1 ORDER BY "cards"\."id" LIMIT \$2`).
		WithArgs("4169738812345678", 1).
		WillReturnRows(rows)

	card, err := repo.GetByNumber(context.Background(), "4169738812345678")
	require.NoError(t, err)
	assert.Equal(t, cardID, card.ID)
	require.NotNil(t, card.DeletedAt)
	assert.False(t, card.IsActive(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_DoCommitsLockedWork(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(id, uuid.New(), "GE29NB0000000101904917", "100.00", "GEL", now, now, nil))
	mock.ExpectExec(`UPDATE "accounts" SET "balance"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(tx repository.UnitOfWork) error {
		acct, err := tx.AccountRepository().LockForUpdate(context.Background(), id)
		if err != nil {
			return err
		}
		if err := acct.Debit(mustMoney(t, "40", money.GEL)); err != nil {
			return err
		}
		return tx.AccountRepository().UpdateBalance(context.Background(), id, acct.Balance)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_DoRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(tx repository.UnitOfWork) error {
		return domain.ErrInsufficientBalance
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_RepositoriesOutsideTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	uow := NewUoW(db)

	assert.NotNil(t, uow.AccountRepository())
	assert.NotNil(t, uow.CardRepository())
	assert.NotNil(t, uow.TransactionRepository())
	assert.NotNil(t, uow.AtmOperationRepository())
	assert.NotNil(t, uow.UserRepository())
}
