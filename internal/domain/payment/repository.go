package payment

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

// CreatePending records a freshly opened checkout session.
func (r *Repository) CreatePending(ctx context.Context, p *Payment) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO payments (id, user_id, session_id, amount_usd, vpc_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.UserID, p.SessionID, p.AmountUSD, p.VPCAmount, string(StatusPending))
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// GetBySessionID returns the payment for a session, or (nil, nil).
func (r *Repository) GetBySessionID(ctx context.Context, sessionID string) (*Payment, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p Payment
	err := r.db.GetContext(ctx2, &p, `
		SELECT id, user_id, session_id, amount_usd, vpc_amount, status, created_at, updated_at
		FROM payments
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// UpdateStatusBySession moves the session's payment to the given status.
func (r *Repository) UpdateStatusBySession(ctx context.Context, sessionID string, status Status) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		UPDATE payments SET status = $2, updated_at = now() WHERE session_id = $1
	`, sessionID, string(status))
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// MarkEventProcessed claims a webhook session id for processing. Returns
// false when the id was already claimed, which is how redelivered events
// are detected before any crediting happens.
func (r *Repository) MarkEventProcessed(ctx context.Context, sessionID string) (bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		INSERT INTO processed_events (session_id)
		VALUES ($1)
		ON CONFLICT (session_id) DO NOTHING
	`, sessionID)
	if err != nil {
		return false, fmt.Errorf("mark event processed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows == 1, nil
}

// UnmarkEventProcessed releases a claimed session id so a redelivery can
// retry after a fulfillment failure.
func (r *Repository) UnmarkEventProcessed(ctx context.Context, sessionID string) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `DELETE FROM processed_events WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("unmark event processed: %w", err)
	}
	return nil
}
