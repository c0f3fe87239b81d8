package wallet

import "errors"

var (
	// ErrNoWallet is returned when the user has not provisioned a wallet
	ErrNoWallet = errors.New("wallet not provisioned")

	// ErrInternal wraps storage failures
	ErrInternal = errors.New("wallet storage error")
)
