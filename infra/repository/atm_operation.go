package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/repository"
	"gorm.io/gorm"
)

type atmOperationRepository struct {
	db *gorm.DB
}

// NewAtmOperationRepository creates an ATM audit repository on db.
func NewAtmOperationRepository(db *gorm.DB) repository.AtmOperationRepository {
	return &atmOperationRepository{db: db}
}

func (r *atmOperationRepository) Create(ctx context.Context, op *domain.AtmOperation) error {
	m := mapAtmOperationToModel(op)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *atmOperationRepository) ListWithdrawalsSince(
	ctx context.Context,
	cardID uuid.UUID,
	since time.Time,
) ([]*domain.AtmOperation, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("card_id = ? AND type = ? AND created_at >= ?",
			cardID, string(domain.AtmOperationWithdraw), since))
}

func (r *atmOperationRepository) ListAllWithdrawalsSince(
	ctx context.Context,
	since time.Time,
) ([]*domain.AtmOperation, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("type = ? AND created_at >= ?", string(domain.AtmOperationWithdraw), since))
}

func (r *atmOperationRepository) ListByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.AtmOperation, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("card_id = ?", cardID))
}

func (r *atmOperationRepository) CountWithdrawalsPerDaySince(
	ctx context.Context,
	since time.Time,
) ([]repository.DayCount, error) {
	var rows []dayCountRow
	err := r.db.WithContext(ctx).Model(&AtmOperation{}).
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(id) AS count").
		Where("created_at >= ? AND type = ?", since, string(domain.AtmOperationWithdraw)).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDayCounts(rows), nil
}

func (r *atmOperationRepository) find(_ context.Context, q *gorm.DB) ([]*domain.AtmOperation, error) {
	var ms []AtmOperation
	if err := q.Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*domain.AtmOperation, 0, len(ms))
	for i := range ms {
		result = append(result, mapAtmOperationToDomain(&ms[i]))
	}
	return result, nil
}

func mapAtmOperationToModel(op *domain.AtmOperation) AtmOperation {
	m := AtmOperation{
		ID:            op.ID,
		CardID:        op.CardID,
		Type:          string(op.Type),
		Amount:        op.Amount,
		Commission:    op.Commission,
		CreatedAt:     op.CreatedAt,
		OperationDate: op.OperationDate,
	}
	if op.Currency != nil {
		c := string(*op.Currency)
		m.Currency = &c
	}
	return m
}

func mapAtmOperationToDomain(m *AtmOperation) *domain.AtmOperation {
	op := &domain.AtmOperation{
		ID:            m.ID,
		CardID:        m.CardID,
		Type:          domain.AtmOperationType(m.Type),
		Amount:        m.Amount,
		Commission:    m.Commission,
		CreatedAt:     m.CreatedAt,
		OperationDate: m.OperationDate,
	}
	if m.Currency != nil {
		c := money.Code(*m.Currency)
		op.Currency = &c
	}
	return op
}
