package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is a debit card bound to one account. PINHash is a bcrypt hash and
// never leaves the service layer.
type Card struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	CardNumber      string
	CardholderName  string
	ExpirationMonth int
	ExpirationYear  int
	PINHash         string
	CreatedAt       time.Time
	DeletedAt       *time.Time
}

// IsExpired is month-granular: a card stays valid through its expiration month.
func (c *Card) IsExpired(now time.Time) bool {
	year, month := now.Year(), int(now.Month())
	return c.ExpirationYear < year ||
		(c.ExpirationYear == year && c.ExpirationMonth < month)
}

// IsActive reports whether the card may be used at an ATM.
func (c *Card) IsActive(now time.Time) bool {
	return c.DeletedAt == nil && !c.IsExpired(now)
}
