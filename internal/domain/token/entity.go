package token

import (
	"time"

	"github.com/google/uuid"
)

// Token is a creator-issued asset sold for platform credits. IssuerAddress
// is the creator's ledger address at creation time; LedgerAssetCode is the
// on-ledger currency encoding of Code.
type Token struct {
	ID              uuid.UUID `db:"id" json:"id"`
	CreatorID       uuid.UUID `db:"creator_id" json:"creator_id"`
	Code            string    `db:"code" json:"code"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description,omitempty"`
	InitialSupply   int64     `db:"initial_supply" json:"initial_supply"`
	CurrentSupply   int64     `db:"current_supply" json:"current_supply"`
	PricePerToken   int64     `db:"price_per_token" json:"price_per_token"`
	IssuerAddress   string    `db:"issuer_address" json:"issuer_address"`
	LedgerAssetCode string    `db:"ledger_asset_code" json:"ledger_asset_code"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// TrustLine records a holder's opt-in to a token, mirrored from the ledger.
type TrustLine struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	TokenID      uuid.UUID `db:"token_id" json:"token_id"`
	LimitAmount  int64     `db:"limit_amount" json:"limit_amount"`
	LedgerTxHash string    `db:"ledger_tx_hash" json:"ledger_tx_hash,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
