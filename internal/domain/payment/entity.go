package payment

import (
	"time"

	"github.com/google/uuid"
)

// CreditsPerUSD is the fixed USD to credit conversion rate. It is echoed
// into the session metadata so historical rows stay self-describing if
// the rate ever changes.
const CreditsPerUSD = 100

// MetadataTypeCreditPurchase tags sessions the webhook must fulfill.
const MetadataTypeCreditPurchase = "CREDIT_PURCHASE"

// Status of a checkout payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Payment is one checkout session record.
type Payment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	SessionID string    `db:"session_id" json:"session_id"`
	AmountUSD int64     `db:"amount_usd" json:"amount_usd"`
	VPCAmount int64     `db:"vpc_amount" json:"vpc_amount"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsPaid reports whether the payment already completed.
func (p *Payment) IsPaid() bool {
	return p.Status == StatusCompleted
}
