// Package user serves the customer's read-only views of their own accounts
// and cards.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/mapper"
	"github.com/zezva802/Banking-system/pkg/repository"
)

// Service provides the self-service queries of a logged-in user.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork and logger.
func New(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:    uow,
		logger: logger.With("service", "user"),
	}
}

// GetUser returns the user behind id. Soft-deleted users are not found.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*dto.UserRead, error) {
	u, err := s.uow.UserRepository().Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return mapper.MapUserToRead(u), nil
}

// Accounts lists the user's accounts, newest first.
func (s *Service) Accounts(ctx context.Context, userID uuid.UUID) ([]*dto.AccountRead, error) {
	logger := s.logger.With("operation", "Accounts", "user_id", userID)

	accounts, err := s.uow.AccountRepository().ListByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]*dto.AccountRead, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, mapper.MapAccountToRead(a))
	}
	logger.Debug("Accounts listed", "count", len(out))
	return out, nil
}

// Cards lists the cards on all of the user's accounts, newest first. PIN
// hashes never leave this method.
func (s *Service) Cards(ctx context.Context, userID uuid.UUID) ([]*dto.CardRead, error) {
	logger := s.logger.With("operation", "Cards", "user_id", userID)

	cards, err := s.uow.CardRepository().ListByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list cards", "error", err)
		return nil, fmt.Errorf("list cards: %w", err)
	}

	out := make([]*dto.CardRead, 0, len(cards))
	for _, c := range cards {
		out = append(out, mapper.MapCardToRead(c))
	}
	logger.Debug("Cards listed", "count", len(out))
	return out, nil
}
