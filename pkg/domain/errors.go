package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/money"
)

// Error kinds. Every error the ledger returns wraps exactly one of these so
// the transport layer can map it with errors.Is.
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when a request is well-formed but cannot be honoured
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when credentials do not match
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
	// ErrServiceUnavailable is returned when an upstream dependency cannot answer
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Error is a kind-tagged error with a human-readable message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an error of the given kind.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Ledger errors.
var (
	ErrInsufficientBalance = NewError(ErrValidation, "Insufficient balance")
	ErrSameAccountTransfer = NewError(ErrValidation, "Cannot transfer to the same account")
	ErrUseTransferOther    = NewError(ErrValidation, "Use transfer-other endpoint for transfers to other users")
	ErrUseTransferOwn      = NewError(ErrValidation, "Use transfer-own endpoint for transfers between your accounts")
	ErrNotAccountOwner     = NewError(ErrForbidden, "You can only transfer from your own accounts")
	ErrSenderNotFound      = NewError(ErrNotFound, "Sender account not found")
	ErrReceiverNotFound    = NewError(ErrNotFound, "Receiver account not found")
	ErrAccountNotFound     = NewError(ErrNotFound, "Account not found")
	ErrNonPositiveAmount   = NewError(ErrValidation, "Amount must be positive")
	ErrDailyLimitExceeded  = NewError(ErrValidation, "Daily withdrawal limit exceeded")
)

// Card and credential errors.
var (
	ErrCardNotFound       = NewError(ErrNotFound, "Card not found")
	ErrCardInactive       = NewError(ErrForbidden, "Card is not active or expired")
	ErrInvalidPIN         = NewError(ErrUnauthorized, "Invalid PIN")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "Invalid credentials")
	ErrUserNotFound       = NewError(ErrNotFound, "User not found")
)

// LimitExceededError reports a rejected withdrawal together with the numbers
// the decision was based on. Amounts other than Attempted are in Reference.
type LimitExceededError struct {
	Attempted         decimal.Decimal
	AttemptedCurrency money.Code
	Limit             decimal.Decimal
	Reference         money.Code
	AlreadyWithdrawn  decimal.Decimal
}

func (e *LimitExceededError) Remaining() decimal.Decimal {
	return e.Limit.Sub(e.AlreadyWithdrawn)
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf(
		"Daily withdrawal limit exceeded. Attempted to withdraw %s %s. Limit: %s %s. "+
			"Already withdrawn today: %s %s. Remaining limit: %s %s.",
		money.Format(e.Attempted), e.AttemptedCurrency,
		e.Limit.String(), e.Reference,
		money.Format(e.AlreadyWithdrawn), e.Reference,
		money.Format(e.Remaining()), e.Reference,
	)
}

func (e *LimitExceededError) Unwrap() error { return ErrDailyLimitExceeded }
