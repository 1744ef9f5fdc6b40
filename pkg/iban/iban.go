// Package iban normalizes, validates and builds Georgian-format IBANs.
package iban

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Georgian IBAN layout: GE + 2 check digits + 2-letter bank code + 16 digits.
const (
	CountryCode = "GE"
	BankCode    = "NB"
	Length      = 22
)

var (
	ErrInvalidFormat   = errors.New("invalid IBAN format")
	ErrInvalidChecksum = errors.New("invalid IBAN checksum")

	pattern = regexp.MustCompile(`^GE\d{2}[A-Z]{2}\d{16}$`)
)

// Normalize strips whitespace and upper-cases s.
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// Validate checks the normalized form of s against the country layout and the
// ISO 13616 mod-97 checksum.
func Validate(s string) error {
	s = Normalize(s)
	if len(s) != Length || !pattern.MatchString(s) {
		return ErrInvalidFormat
	}
	if mod97(s[4:]+s[:4]) != 1 {
		return ErrInvalidChecksum
	}
	return nil
}

// Build assembles an IBAN from a 16 digit account part, computing the check
// digits.
func Build(accountDigits string) (string, error) {
	if len(accountDigits) != 16 {
		return "", fmt.Errorf("%w: account part must be 16 digits", ErrInvalidFormat)
	}
	bban := BankCode + accountDigits
	check := 98 - mod97(bban+CountryCode+"00")
	return fmt.Sprintf("%s%02d%s", CountryCode, check, bban), nil
}

// mod97 converts letters to numbers (A=10 ... Z=35) and returns the value
// modulo 97.
func mod97(s string) int {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			fmt.Fprintf(&b, "%d", r-'A'+10)
		default:
			b.WriteRune(r)
		}
	}
	n, ok := new(big.Int).SetString(b.String(), 10)
	if !ok {
		return -1
	}
	return int(new(big.Int).Mod(n, big.NewInt(97)).Int64())
}
