package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a user record in the database.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"size:100;not null"`
	Surname       string    `gorm:"size:100;not null"`
	PrivateNumber string    `gorm:"size:11;uniqueIndex;not null"`
	DateOfBirth   time.Time `gorm:"type:date;not null"`
	Email         string    `gorm:"size:255;uniqueIndex;not null"`
	Password      string    `gorm:"not null"`
	Role          string    `gorm:"type:varchar(16);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string { return "users" }

// Account represents an account record in the database.
type Account struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	IBAN      string          `gorm:"column:iban;size:34;uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Currency  string          `gorm:"type:varchar(3);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Account) TableName() string { return "accounts" }

// Card represents a card record in the database. Pin holds a bcrypt hash.
type Card struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CardNumber      string    `gorm:"size:16;uniqueIndex;not null"`
	CardholderName  string    `gorm:"size:100;not null"`
	ExpirationMonth int       `gorm:"not null"`
	ExpirationYear  int       `gorm:"not null"`
	Pin             string    `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Card) TableName() string { return "cards" }

// Transaction represents a persisted transfer record. Sender and receiver are
// plain references, not foreign keys: the record is written before either
// account has been verified.
type Transaction struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Amount             decimal.Decimal  `gorm:"type:numeric(15,2);not null"`
	Currency           string           `gorm:"type:varchar(3);not null"`
	Commission         decimal.Decimal  `gorm:"type:numeric(15,2);not null"`
	CommissionCurrency string           `gorm:"type:varchar(3);not null"`
	CommissionRate     *decimal.Decimal `gorm:"type:numeric(6,4)"`
	TransactionType    string           `gorm:"type:varchar(20);not null"`
	Status             string           `gorm:"type:varchar(20);not null;index"`
	SenderAccountID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ReceiverAccountID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	CreatedAt          time.Time        `gorm:"index"`
	UpdatedAt          time.Time
}

func (Transaction) TableName() string { return "transactions" }

// AtmOperation represents an ATM audit record.
type AtmOperation struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	CardID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type          string           `gorm:"type:varchar(20);not null"`
	Amount        *decimal.Decimal `gorm:"type:numeric(15,2)"`
	Commission    decimal.Decimal  `gorm:"type:numeric(15,2);not null"`
	Currency      *string          `gorm:"type:varchar(3)"`
	CreatedAt     time.Time        `gorm:"index"`
	OperationDate time.Time        `gorm:"type:date;not null"`
}

func (AtmOperation) TableName() string { return "atm_operations" }

// dayCountRow receives DATE_TRUNC aggregates.
type dayCountRow struct {
	Day   time.Time
	Count int64
}
