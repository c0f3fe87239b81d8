package credit

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

// Repository provides credit balance storage.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetBalance returns the user's balance, 0 when no row exists yet.
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var balance int64
	err := r.db.GetContext(ctx2, &balance, `SELECT balance FROM credit_balances WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: get balance: %v", ErrInternal, err)
	}
	return balance, nil
}

// Credit adds amount to the user's balance in a single atomic statement.
// Concurrent credits for the same user (a webhook retry racing a manual
// grant) serialize on the row; there is no fetch-then-write window.
func (r *Repository) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var balance int64
	err := r.db.GetContext(ctx2, &balance, `
		INSERT INTO credit_balances (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = credit_balances.balance + EXCLUDED.balance, updated_at = now()
		RETURNING balance
	`, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("%w: credit balance: %v", ErrInternal, err)
	}
	return balance, nil
}

// Spend debits amount, guarded so the balance can never go negative. A
// missing row behaves like a zero balance.
func (r *Repository) Spend(ctx context.Context, userID uuid.UUID, amount int64) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE credit_balances
		SET balance = balance - $2, total_spent = total_spent + $2, updated_at = now()
		WHERE user_id = $1 AND balance >= $2
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("%w: spend: %v", ErrInternal, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", ErrInternal, err)
	}
	if rows == 0 {
		return ErrInsufficientCredits
	}
	return nil
}
