package money

import "strings"

// Code represents a currency code (e.g., "GEL", "USD").
type Code string

// Supported currency codes
const (
	GEL Code = "GEL" // Georgian Lari
	USD Code = "USD" // US Dollar
	EUR Code = "EUR" // Euro
)

// Supported lists every currency an account may be opened in.
var Supported = []Code{GEL, USD, EUR}

// IsValid reports whether c is one of the supported codes.
func (c Code) IsValid() bool {
	switch c {
	case GEL, USD, EUR:
		return true
	}
	return false
}

func (c Code) String() string { return string(c) }

// ParseCode normalizes s and validates it against the supported set.
func ParseCode(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}
