package token

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

func (r *Repository) CreateToken(ctx context.Context, t *Token) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO tokens (id, creator_id, code, name, description, initial_supply, current_supply,
		                    price_per_token, issuer_address, ledger_asset_code, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true)
	`, t.ID, t.CreatorID, t.Code, t.Name, t.Description, t.InitialSupply, t.CurrentSupply,
		t.PricePerToken, t.IssuerAddress, t.LedgerAssetCode)
	if err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// GetByID returns the token, or (nil, nil) when no row exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Token, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t Token
	err := r.db.GetContext(ctx2, &t, `
		SELECT id, creator_id, code, name, description, initial_supply, current_supply,
		       price_per_token, issuer_address, ledger_asset_code, is_active, created_at
		FROM tokens
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &t, nil
}

func (r *Repository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Token, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out := make([]Token, 0)
	err := r.db.SelectContext(ctx2, &out, `
		SELECT id, creator_id, code, name, description, initial_supply, current_supply,
		       price_per_token, issuer_address, ledger_asset_code, is_active, created_at
		FROM tokens
		WHERE creator_id = $1
		ORDER BY created_at DESC
	`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return out, nil
}

// DecrementSupply reserves quantity units. The guard makes concurrent
// purchases of the last units serialize correctly: whoever the row lock
// admits second sees the reduced supply and gets ErrInsufficientSupply.
func (r *Repository) DecrementSupply(ctx context.Context, tokenID uuid.UUID, quantity int64) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE tokens
		SET current_supply = current_supply - $2
		WHERE id = $1 AND current_supply >= $2
	`, tokenID, quantity)
	if err != nil {
		return fmt.Errorf("decrement supply: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return ErrInsufficientSupply
	}
	return nil
}

// RestoreSupply returns reserved units after a failed issuance.
func (r *Repository) RestoreSupply(ctx context.Context, tokenID uuid.UUID, quantity int64) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		UPDATE tokens SET current_supply = current_supply + $2 WHERE id = $1
	`, tokenID, quantity)
	if err != nil {
		return fmt.Errorf("restore supply: %w", err)
	}
	return nil
}

// InsertTrustLine records an established line. Re-establishing is a no-op.
func (r *Repository) InsertTrustLine(ctx context.Context, tl *TrustLine) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if tl.ID == uuid.Nil {
		tl.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO trust_lines (id, user_id, token_id, limit_amount, ledger_tx_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		ON CONFLICT (user_id, token_id) DO UPDATE
		SET limit_amount = EXCLUDED.limit_amount,
		    ledger_tx_hash = EXCLUDED.ledger_tx_hash,
		    is_active = true
	`, tl.ID, tl.UserID, tl.TokenID, tl.LimitAmount, tl.LedgerTxHash)
	if err != nil {
		return fmt.Errorf("insert trust line: %w", err)
	}
	return nil
}

// GetTrustLine returns the user's line for a token, or (nil, nil).
func (r *Repository) GetTrustLine(ctx context.Context, userID, tokenID uuid.UUID) (*TrustLine, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var tl TrustLine
	err := r.db.GetContext(ctx2, &tl, `
		SELECT id, user_id, token_id, limit_amount, ledger_tx_hash, is_active, created_at
		FROM trust_lines
		WHERE user_id = $1 AND token_id = $2
	`, userID, tokenID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trust line: %w", err)
	}
	return &tl, nil
}

// TokenForZine resolves a zine's gating token, if any. Backs the catalog's
// access checks without importing the catalog domain here.
func (r *Repository) TokenForZine(ctx context.Context, zineID uuid.UUID) (uuid.NullUUID, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var gate uuid.NullUUID
	err := r.db.GetContext(ctx2, &gate, `SELECT gate_token_id FROM zines WHERE id = $1`, zineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.NullUUID{}, nil
		}
		return uuid.NullUUID{}, fmt.Errorf("zine gate lookup: %w", err)
	}
	return gate, nil
}
