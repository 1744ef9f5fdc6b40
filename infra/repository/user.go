package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository on db.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	m := mapUserToModel(user)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

// Get and GetByEmail include soft-deleted users so login can tell a
// deactivated account apart from a missing one.
func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Unscoped().First(&m, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapUserToDomain(&m), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Unscoped().First(&m, "email = ?", email).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapUserToDomain(&m), nil
}

func (r *userRepository) ExistsByEmailOrPrivateNumber(
	ctx context.Context,
	email, privateNumber string,
) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&User{}).
		Where("email = ? OR private_number = ?", email, privateNumber).
		Count(&n).Error
	return n > 0, MapGormErrorToDomain(err)
}

func (r *userRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&n).Error
	return n, MapGormErrorToDomain(err)
}

func mapUserToModel(u *domain.User) User {
	return User{
		ID:            u.ID,
		Name:          u.Name,
		Surname:       u.Surname,
		PrivateNumber: u.PrivateNumber,
		DateOfBirth:   u.DateOfBirth,
		Email:         u.Email,
		Password:      u.PasswordHash,
		Role:          string(u.Role),
		CreatedAt:     u.CreatedAt,
	}
}

func mapUserToDomain(m *User) *domain.User {
	u := &domain.User{
		ID:            m.ID,
		Name:          m.Name,
		Surname:       m.Surname,
		PrivateNumber: m.PrivateNumber,
		DateOfBirth:   m.DateOfBirth,
		Email:         m.Email,
		PasswordHash:  m.Password,
		Role:          domain.Role(m.Role),
		CreatedAt:     m.CreatedAt,
	}
	if m.DeletedAt.Valid {
		deleted := m.DeletedAt.Time
		u.DeletedAt = &deleted
	}
	return u
}
