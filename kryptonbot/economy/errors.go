package economy

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds means the balance check before a purchase
	// failed; nothing was delivered or debited.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBanned means the account is banned from purchase, key, and
	// passive reward paths.
	ErrBanned = errors.New("account is banned")

	// ErrInvalidKey means no account owns the presented key.
	ErrInvalidKey = errors.New("invalid key")
)

// ValidationError reports user-correctable bad input; the surface shows
// the message verbatim.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// DeliveryFailure wraps a purchase side effect that could not complete.
// No debit remains on the account when it is returned.
type DeliveryFailure struct {
	Err error
}

func (e *DeliveryFailure) Error() string {
	return fmt.Sprintf("delivery failed: %v", e.Err)
}

func (e *DeliveryFailure) Unwrap() error {
	return e.Err
}
