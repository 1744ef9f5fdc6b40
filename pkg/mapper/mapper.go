package mapper

import (
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
)

// MapAccountToRead maps a domain Account to its read view.
func MapAccountToRead(a *domain.Account) *dto.AccountRead {
	return &dto.AccountRead{
		ID:        a.ID,
		UserID:    a.UserID,
		IBAN:      a.IBAN,
		Balance:   a.Balance,
		Currency:  a.Currency.String(),
		CreatedAt: a.CreatedAt,
	}
}

// MapCardToRead maps a domain Card to its read view, dropping the PIN hash.
func MapCardToRead(c *domain.Card) *dto.CardRead {
	return &dto.CardRead{
		ID:              c.ID,
		AccountID:       c.AccountID,
		CardNumber:      c.CardNumber,
		CardholderName:  c.CardholderName,
		ExpirationMonth: c.ExpirationMonth,
		ExpirationYear:  c.ExpirationYear,
		CreatedAt:       c.CreatedAt,
	}
}

// MapUserToRead maps a domain User to its read view.
func MapUserToRead(u *domain.User) *dto.UserRead {
	return &dto.UserRead{
		ID:             u.ID,
		Name:           u.Name,
		Surname:        u.Surname,
		PrivateNumber:  u.PrivateNumber,
		DateOfBirth:    u.DateOfBirth,
		Email:          u.Email,
		Role:           string(u.Role),
		HashedPassword: u.PasswordHash,
		CreatedAt:      u.CreatedAt,
	}
}

// MapTransactionToRead maps a transfer record together with the IBANs of
// both sides.
func MapTransactionToRead(tx *domain.Transaction, fromIBAN, toIBAN string) *dto.TransactionRead {
	commission, commissionCurrency := tx.CommissionIn()
	return &dto.TransactionRead{
		ID:                 tx.ID,
		Type:               string(tx.Type),
		Amount:             tx.Amount,
		Currency:           tx.Currency.String(),
		Commission:         commission,
		CommissionCurrency: commissionCurrency.String(),
		CommissionRate:     tx.CommissionRate,
		FromIBAN:           fromIBAN,
		ToIBAN:             toIBAN,
		Status:             string(tx.Status),
		CreatedAt:          tx.CreatedAt,
	}
}
