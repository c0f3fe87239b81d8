package wallet

import (
	"context"
	"database/sql"
	"errors"
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

// GetByUserID returns the user's wallet, or (nil, nil) when none exists.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var w Wallet
	err := r.db.GetContext(ctx2, &w, `
		SELECT id, user_id, ledger_address, encrypted_secret, payid, is_verified, created_at
		FROM wallets
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get wallet: %v", ErrInternal, err)
	}
	return &w, nil
}

// Create inserts a wallet row. The unique constraint on user_id resolves
// concurrent provisioning: the loser's insert affects zero rows and
// inserted comes back false.
func (r *Repository) Create(ctx context.Context, w *Wallet) (inserted bool, err error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		INSERT INTO wallets (id, user_id, ledger_address, encrypted_secret, payid, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`, w.ID, w.UserID, w.LedgerAddress, w.EncryptedSecret, w.PayID, w.IsVerified)
	if err != nil {
		return false, fmt.Errorf("%w: create wallet: %v", ErrInternal, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", ErrInternal, err)
	}
	return rows == 1, nil
}

// MarkVerified flips the verification flag once the account is funded.
func (r *Repository) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `UPDATE wallets SET is_verified = true WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("%w: mark verified: %v", ErrInternal, err)
	}
	return nil
}
