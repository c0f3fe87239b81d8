package wallet

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Wallet is a user's XRPL account record. EncryptedSecret is opaque
// ciphertext ("iv:cipher" hex pair) and never leaves this domain or the
// issuance pipeline in decrypted form.
type Wallet struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	UserID          uuid.UUID      `db:"user_id" json:"user_id"`
	LedgerAddress   string         `db:"ledger_address" json:"ledger_address"`
	EncryptedSecret string         `db:"encrypted_secret" json:"-"`
	PayID           sql.NullString `db:"payid" json:"-"`
	IsVerified      bool           `db:"is_verified" json:"is_verified"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// PayIDString returns the PayID or "" when unset.
func (w *Wallet) PayIDString() string {
	if w.PayID.Valid {
		return w.PayID.String
	}
	return ""
}
