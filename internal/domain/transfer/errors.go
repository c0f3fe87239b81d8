package transfer

import "errors"

var (
	// ErrInvalidAmount is returned when the transfer amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrSelfTransfer is returned when sender and recipient are the same
	ErrSelfTransfer = errors.New("cannot transfer to yourself")

	// ErrWalletRequired is returned when either party lacks a ledger wallet
	ErrWalletRequired = errors.New("both parties need a ledger wallet")

	// ErrTransferFailed is returned when the ledger submission did not land
	ErrTransferFailed = errors.New("ledger transfer failed")
)
