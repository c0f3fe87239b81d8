package transaction

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Type defines supported transaction types.
type Type string

const (
	TypeCreditPurchase Type = "credit_purchase"
	TypeTokenPurchase  Type = "token_purchase"
	TypeTransfer       Type = "transfer"
)

// Transaction is one append-only audit row. Rows are written once and
// never mutated; the ledger hash is present only when the network leg of
// the operation actually landed.
type Transaction struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	FromUserID   uuid.UUID      `db:"from_user_id" json:"from_user_id"`
	ToUserID     uuid.NullUUID  `db:"to_user_id" json:"to_user_id,omitempty"`
	TokenID      uuid.NullUUID  `db:"token_id" json:"token_id,omitempty"`
	Amount       int64          `db:"amount" json:"amount"`
	Type         Type           `db:"type" json:"type"`
	LedgerTxHash sql.NullString `db:"ledger_tx_hash" json:"ledger_tx_hash,omitempty"`
	Description  string         `db:"description" json:"description"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
