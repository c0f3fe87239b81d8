package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one audit row. There is no update path.
func (r *Repository) Insert(ctx context.Context, tx *Transaction) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO transactions (id, from_user_id, to_user_id, token_id, amount, type, ledger_tx_hash, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, tx.ID, tx.FromUserID, tx.ToUserID, tx.TokenID, tx.Amount, string(tx.Type), tx.LedgerTxHash, tx.Description)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByUser returns rows where the user is either party, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	out := make([]Transaction, 0)
	err := r.db.SelectContext(ctx2, &out, `
		SELECT id, from_user_id, to_user_id, token_id, amount, type, ledger_tx_hash, description, created_at
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// ExistsPurchase reports whether the user ever bought units of the token.
// Backs the catalog's token-gating access check.
func (r *Repository) ExistsPurchase(ctx context.Context, userID, tokenID uuid.UUID) (bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx2, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE from_user_id = $1 AND token_id = $2 AND type = $3
		)
	`, userID, tokenID, string(TypeTokenPurchase))
	if err != nil {
		return false, fmt.Errorf("exists purchase: %w", err)
	}
	return exists, nil
}
