package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserCreate represents the data needed to register a customer.
type UserCreate struct {
	Name          string    `json:"name" validate:"required,min=1,max=100"`
	Surname       string    `json:"surname" validate:"required,min=1,max=100"`
	PrivateNumber string    `json:"privateNumber" validate:"required,len=11,numeric"`
	DateOfBirth   time.Time `json:"dateOfBirth" validate:"required"`
	Email         string    `json:"email" validate:"required,email"`
	Password      string    `json:"password,omitempty" validate:"required,min=8"`
	Role          string    `json:"role,omitempty" validate:"omitempty,oneof=user operator"`
}

// UserRead represents a read-optimized view of a user. The password hash is
// carried for the login path only and never serialized.
type UserRead struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Surname        string    `json:"surname"`
	PrivateNumber  string    `json:"privateNumber"`
	DateOfBirth    time.Time `json:"dateOfBirth"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	AccessToken string   `json:"accessToken"`
	User        UserRead `json:"user"`
}
