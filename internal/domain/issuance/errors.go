package issuance

import "errors"

var (
	// ErrWalletNotConfigured means no platform signing account is configured
	ErrWalletNotConfigured = errors.New("platform ledger account not configured")

	// ErrTrustLineMissing is the ledger's "no payment path" rejection
	ErrTrustLineMissing = errors.New("destination has no trust line for the asset")

	// ErrIssuanceFailed covers every other non-success ledger outcome
	ErrIssuanceFailed = errors.New("ledger issuance failed")
)
