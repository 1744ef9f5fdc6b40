//go:build integration

package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/zezva802/Banking-system/infra"
	infra_repository "github.com/zezva802/Banking-system/infra/repository"
	"github.com/zezva802/Banking-system/infra/migrations"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/repository"
	"github.com/zezva802/Banking-system/pkg/service/commission"
	"github.com/zezva802/Banking-system/pkg/service/transfer"
	"github.com/zezva802/Banking-system/pkg/testutils"
	"gorm.io/gorm"
)

type PostgresTestSuite struct {
	suite.Suite
	db  *gorm.DB
	uow *infra_repository.UoW
}

func TestPostgres(t *testing.T) {
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) SetupSuite() {
	dsn := testutils.StartPostgres(s.T())
	db, err := infra.NewDBConnection(&config.DB{Url: dsn}, "test")
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	s.Require().NoError(migrations.Up(context.Background(), sqlDB))

	version, dirty, err := migrations.Version(context.Background(), sqlDB)
	s.Require().NoError(err)
	s.EqualValues(5, version)
	s.False(dirty)

	s.db = db
	s.uow = infra_repository.NewUoW(db)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *PostgresTestSuite) seedUser() *domain.User {
	n := uuid.New()
	u := &domain.User{
		ID:            n,
		Name:          "Int",
		Surname:       "Test",
		PrivateNumber: n.String()[:11],
		DateOfBirth:   time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Email:         n.String() + "@example.com",
		PasswordHash:  "x",
		Role:          domain.RoleUser,
	}
	s.Require().NoError(s.uow.UserRepository().Create(context.Background(), u))
	return u
}

func (s *PostgresTestSuite) seedAccount(userID uuid.UUID, iban, balance string) *domain.Account {
	a := &domain.Account{
		ID:       uuid.New(),
		UserID:   userID,
		IBAN:     iban,
		Balance:  decimal.RequireFromString(balance),
		Currency: money.GEL,
	}
	s.Require().NoError(s.uow.AccountRepository().Create(context.Background(), a))
	return a
}

func (s *PostgresTestSuite) TestDuplicateIBANMapsToAlreadyExists() {
	u := s.seedUser()
	s.seedAccount(u.ID, "GE00NB1111111111111111", "0")

	err := s.uow.AccountRepository().Create(context.Background(), &domain.Account{
		ID: uuid.New(), UserID: u.ID, IBAN: "GE00NB1111111111111111", Currency: money.GEL,
	})
	s.ErrorIs(err, domain.ErrAlreadyExists)
}

func (s *PostgresTestSuite) TestConcurrentTransfersNeverOverdraw() {
	u := s.seedUser()
	from := s.seedAccount(u.ID, "GE00NB2222222222222222", "100")
	to := s.seedAccount(u.ID, "GE00NB3333333333333333", "0")

	svc := transfer.New(s.uow, testutils.NewStaticConverter(), commission.New(&config.Ledger{}), nil, testutils.DiscardLogger())

	const attempts = 20
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.TransferOwn(context.Background(), dto.TransferOwnCommand{
				RequesterID:   u.ID,
				FromAccountID: from.ID,
				ToAccountID:   to.ID,
				Amount:        decimal.NewFromInt(10),
				Currency:      "GEL",
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				s.ErrorIs(err, domain.ErrInsufficientBalance)
			}
		}()
	}
	wg.Wait()

	s.Equal(10, ok)
	gotFrom, err := s.uow.AccountRepository().Get(context.Background(), from.ID)
	s.Require().NoError(err)
	gotTo, err := s.uow.AccountRepository().Get(context.Background(), to.ID)
	s.Require().NoError(err)
	s.True(gotFrom.Balance.IsZero(), gotFrom.Balance.String())
	s.True(gotTo.Balance.Equal(decimal.NewFromInt(100)), gotTo.Balance.String())

	completed, err := s.uow.TransactionRepository().CountCompletedSince(context.Background(), time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.GreaterOrEqual(completed, int64(10))
}

func (s *PostgresTestSuite) TestRollbackLeavesNoTrace() {
	ctx := context.Background()
	u := s.seedUser()
	a := s.seedAccount(u.ID, "GE00NB4444444444444444", "50")

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		locked, err := uow.AccountRepository().LockForUpdate(ctx, a.ID)
		if err != nil {
			return err
		}
		twenty, err := money.New(decimal.NewFromInt(20), money.GEL)
		if err != nil {
			return err
		}
		if err := locked.Debit(twenty); err != nil {
			return err
		}
		if err := uow.AccountRepository().UpdateBalance(ctx, a.ID, locked.Balance); err != nil {
			return err
		}
		return domain.ErrInsufficientBalance
	})
	s.ErrorIs(err, domain.ErrInsufficientBalance)

	got, err := s.uow.AccountRepository().Get(ctx, a.ID)
	s.Require().NoError(err)
	s.True(got.Balance.Equal(decimal.NewFromInt(50)), got.Balance.String())
}
