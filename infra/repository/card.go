package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/repository"
	"gorm.io/gorm"
)

type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a card repository on db.
func NewCardRepository(db *gorm.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Create(ctx context.Context, card *domain.Card) error {
	m := mapCardToModel(card)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

// Get and GetByNumber return soft-deleted cards too; callers decide
// whether a deleted card is usable.
func (r *cardRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	var m Card
	if err := r.db.WithContext(ctx).Unscoped().First(&m, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapCardToDomain(&m), nil
}

func (r *cardRepository) GetByNumber(ctx context.Context, cardNumber string) (*domain.Card, error) {
	var m Card
	if err := r.db.WithContext(ctx).Unscoped().First(&m, "card_number = ?", cardNumber).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapCardToDomain(&m), nil
}

func (r *cardRepository) UpdatePIN(ctx context.Context, id uuid.UUID, pinHash string) error {
	res := r.db.WithContext(ctx).Model(&Card{}).Where("id = ?", id).Update("pin", pinHash)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cardRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	var ms []Card
	err := r.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = cards.account_id").
		Where("accounts.user_id = ?", userID).
		Order("cards.created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*domain.Card, 0, len(ms))
	for i := range ms {
		result = append(result, mapCardToDomain(&ms[i]))
	}
	return result, nil
}

func (r *cardRepository) ExistsNumber(ctx context.Context, cardNumber string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&Card{}).Where("card_number = ?", cardNumber).Count(&n).Error
	return n > 0, MapGormErrorToDomain(err)
}

func (r *cardRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&Card{}).Count(&n).Error
	return n, MapGormErrorToDomain(err)
}

func mapCardToModel(c *domain.Card) Card {
	return Card{
		ID:              c.ID,
		AccountID:       c.AccountID,
		CardNumber:      c.CardNumber,
		CardholderName:  c.CardholderName,
		ExpirationMonth: c.ExpirationMonth,
		ExpirationYear:  c.ExpirationYear,
		Pin:             c.PINHash,
		CreatedAt:       c.CreatedAt,
	}
}

func mapCardToDomain(m *Card) *domain.Card {
	c := &domain.Card{
		ID:              m.ID,
		AccountID:       m.AccountID,
		CardNumber:      m.CardNumber,
		CardholderName:  m.CardholderName,
		ExpirationMonth: m.ExpirationMonth,
		ExpirationYear:  m.ExpirationYear,
		PINHash:         m.Pin,
		CreatedAt:       m.CreatedAt,
	}
	if m.DeletedAt.Valid {
		deleted := m.DeletedAt.Time
		c.DeletedAt = &deleted
	}
	return c
}
