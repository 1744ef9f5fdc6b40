package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role gates which HTTP surfaces a user may reach.
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
)

// MinimumAge is the youngest a customer may be at registration.
const MinimumAge = 18

type User struct {
	ID            uuid.UUID
	Name          string
	Surname       string
	PrivateNumber string
	DateOfBirth   time.Time
	Email         string
	PasswordHash  string
	Role          Role
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

// AgeAt returns the number of full years between the date of birth and now.
func (u *User) AgeAt(now time.Time) int {
	years := now.Year() - u.DateOfBirth.Year()
	if now.Month() < u.DateOfBirth.Month() ||
		(now.Month() == u.DateOfBirth.Month() && now.Day() < u.DateOfBirth.Day()) {
		years--
	}
	return years
}
