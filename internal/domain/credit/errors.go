package credit

import "errors"

var (
	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInsufficientCredits is returned when a debit exceeds the balance
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInternal wraps storage failures
	ErrInternal = errors.New("ledger storage error")
)
