package token

import "errors"

var (
	// ErrWalletRequired is returned when an operation needs a provisioned
	// ledger wallet and the user has none
	ErrWalletRequired = errors.New("ledger wallet required")

	// ErrTokenNotFound is returned for unknown or inactive tokens
	ErrTokenNotFound = errors.New("token not found")

	// ErrInsufficientSupply is returned when a purchase exceeds the
	// remaining supply
	ErrInsufficientSupply = errors.New("insufficient token supply")

	// ErrTrustLineMissing is returned when the buyer has not opted in to
	// the token on the ledger
	ErrTrustLineMissing = errors.New("trust line not established")

	// ErrTrustLineFailed is returned when the ledger rejects a TrustSet
	ErrTrustLineFailed = errors.New("trust line submission failed")

	// ErrInternal wraps unexpected storage failures
	ErrInternal = errors.New("internal error")
)
