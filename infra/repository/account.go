package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository on db.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	m := mapAccountToModel(account)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapAccountToDomain(&m), nil
}

func (r *accountRepository) GetByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "iban = ?", iban).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapAccountToDomain(&m), nil
}

// LockForUpdate issues SELECT ... FOR UPDATE. Only meaningful inside UoW.Do.
func (r *accountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapAccountToDomain(&m), nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).Update("balance", balance)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	var ms []Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*domain.Account, 0, len(ms))
	for i := range ms {
		result = append(result, mapAccountToDomain(&ms[i]))
	}
	return result, nil
}

// ExistsIBAN includes soft-deleted rows: their IBANs stay reserved.
func (r *accountRepository) ExistsIBAN(ctx context.Context, iban string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&Account{}).Where("iban = ?", iban).Count(&n).Error
	return n > 0, MapGormErrorToDomain(err)
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&Account{}).Count(&n).Error
	return n, MapGormErrorToDomain(err)
}

func mapAccountToModel(a *domain.Account) Account {
	return Account{
		ID:        a.ID,
		UserID:    a.UserID,
		IBAN:      a.IBAN,
		Balance:   a.Balance,
		Currency:  string(a.Currency),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func mapAccountToDomain(m *Account) *domain.Account {
	a := &domain.Account{
		ID:        m.ID,
		UserID:    m.UserID,
		IBAN:      m.IBAN,
		Balance:   m.Balance,
		Currency:  money.Code(m.Currency),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		deleted := m.DeletedAt.Time
		a.DeletedAt = &deleted
	}
	return a
}
