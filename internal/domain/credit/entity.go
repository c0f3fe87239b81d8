package credit

import "time"

// Balance is a user's internal credit balance row. It is the source of
// truth for spendable credits; the on-ledger platform asset only mirrors it.
type Balance struct {
	UserID     string    `db:"user_id"`
	Balance    int64     `db:"balance"`
	TotalSpent int64     `db:"total_spent"`
	UpdatedAt  time.Time `db:"updated_at"`
}
