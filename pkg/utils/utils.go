package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"

	"golang.org/x/crypto/bcrypt"
)

// DummyHash is compared against when no stored hash exists, so a miss costs
// roughly the same as a mismatch.
const DummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z5vZ1d1bC8fFj6Zr8lW8ZC2e"

// HashPassword hashes a plain secret using bcrypt with the given cost. A cost
// outside bcrypt's range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plain secret with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsEmail returns true if the string is a valid email address.
func IsEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// RandomDigits returns n decimal digits drawn from crypto/rand.
func RandomDigits(n int) (string, error) {
	buf := make([]byte, n)
	ten := big.NewInt(10)
	for i := range buf {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("random digits: %w", err)
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
