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

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transfer-record repository on db.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	m := mapTransactionToModel(tx)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapTransactionToDomain(&m), nil
}

// UpdateStatus moves a PENDING record to status. Terminal records are left
// untouched and reported as not found.
func (r *transactionRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.TransactionStatus,
) error {
	res := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ? AND status = ?", id, string(domain.TransactionStatusPending)).
		Update("status", string(status))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) CountCompletedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("created_at >= ? AND status = ?", since, string(domain.TransactionStatusCompleted)).
		Count(&n).Error
	return n, MapGormErrorToDomain(err)
}

func (r *transactionRepository) ListCompletedWithCommissionSince(
	ctx context.Context,
	since time.Time,
) ([]*domain.Transaction, error) {
	var ms []Transaction
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND status = ? AND commission >= ?",
			since, string(domain.TransactionStatusCompleted), "0.01").
		Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*domain.Transaction, 0, len(ms))
	for i := range ms {
		result = append(result, mapTransactionToDomain(&ms[i]))
	}
	return result, nil
}

func (r *transactionRepository) CountCompletedPerDaySince(
	ctx context.Context,
	since time.Time,
) ([]repository.DayCount, error) {
	var rows []dayCountRow
	err := r.db.WithContext(ctx).Model(&Transaction{}).
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(id) AS count").
		Where("created_at >= ? AND status = ?", since, string(domain.TransactionStatusCompleted)).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapDayCounts(rows), nil
}

func mapDayCounts(rows []dayCountRow) []repository.DayCount {
	out := make([]repository.DayCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.DayCount{Day: row.Day, Count: row.Count})
	}
	return out
}

func mapTransactionToModel(tx *domain.Transaction) Transaction {
	commission, commissionCurrency := tx.CommissionIn()
	return Transaction{
		ID:                 tx.ID,
		Amount:             tx.Amount,
		Currency:           string(tx.Currency),
		Commission:         commission,
		CommissionCurrency: string(commissionCurrency),
		CommissionRate:     tx.CommissionRate,
		TransactionType:    string(tx.Type),
		Status:             string(tx.Status),
		SenderAccountID:    tx.SenderAccountID,
		ReceiverAccountID:  tx.ReceiverAccountID,
		CreatedAt:          tx.CreatedAt,
	}
}

func mapTransactionToDomain(m *Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:                 m.ID,
		Amount:             m.Amount,
		Currency:           money.Code(m.Currency),
		Commission:         m.Commission,
		CommissionCurrency: money.Code(m.CommissionCurrency),
		CommissionRate:     m.CommissionRate,
		Type:               domain.TransactionType(m.TransactionType),
		Status:             domain.TransactionStatus(m.Status),
		SenderAccountID:    m.SenderAccountID,
		ReceiverAccountID:  m.ReceiverAccountID,
		CreatedAt:          m.CreatedAt,
	}
}
