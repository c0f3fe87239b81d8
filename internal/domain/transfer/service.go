package transfer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zinefold/zinefold-api/internal/domain/issuance"
	"github.com/zinefold/zinefold-api/internal/domain/transaction"
	"github.com/zinefold/zinefold-api/internal/domain/wallet"
)

// Wallets is the slice of the wallet service transfers use.
type Wallets interface {
	Get(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error)
	SigningSeed(ctx context.Context, userID uuid.UUID) (string, error)
}

// Payments moves issued assets between accounts. An empty hash means the
// submission did not land.
type Payments interface {
	SendPayment(ctx context.Context, senderSeed, destination string, amount int64, assetCode, issuerAddress string) string
}

// AuditLog appends transaction rows.
type AuditLog interface {
	Insert(ctx context.Context, tx *transaction.Transaction) error
}

// Service moves the platform asset between users' ledger wallets. Unlike
// a credit purchase there is no internal fallback here: the asset lives
// on the ledger, so a failed submission is a failed transfer and no audit
// row with a hash is ever written for it.
type Service struct {
	wallets  Wallets
	payments Payments
	audit    AuditLog
	platform issuance.PlatformAccount
}

func NewService(wallets Wallets, payments Payments, audit AuditLog, platform issuance.PlatformAccount) *Service {
	return &Service{wallets: wallets, payments: payments, audit: audit, platform: platform}
}

// Result reports a completed transfer.
type Result struct {
	ToUserID uuid.UUID `json:"to_user_id"`
	Amount   int64     `json:"amount"`
	TxHash   string    `json:"tx_hash"`
}

// Transfer sends amount units of the platform asset from one user to
// another.
func (s *Service) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount int64) (*Result, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromID == toID {
		return nil, ErrSelfTransfer
	}

	senderSeed, err := s.wallets.SigningSeed(ctx, fromID)
	if err != nil {
		if errors.Is(err, wallet.ErrNoWallet) {
			return nil, ErrWalletRequired
		}
		return nil, err
	}

	recipient, err := s.wallets.Get(ctx, toID)
	if err != nil {
		if errors.Is(err, wallet.ErrNoWallet) {
			return nil, ErrWalletRequired
		}
		return nil, err
	}
	if recipient.LedgerAddress == "" {
		return nil, ErrWalletRequired
	}

	hash := s.payments.SendPayment(ctx, senderSeed, recipient.LedgerAddress, amount, s.platform.AssetCode, s.platform.Address)
	if hash == "" {
		return nil, ErrTransferFailed
	}

	s.record(ctx, fromID, toID, amount, hash)

	log.Info().
		Str("from_user_id", fromID.String()).
		Str("to_user_id", toID.String()).
		Int64("amount", amount).
		Str("tx_hash", hash).
		Msg("transfer completed")

	return &Result{ToUserID: toID, Amount: amount, TxHash: hash}, nil
}

func (s *Service) record(ctx context.Context, fromID, toID uuid.UUID, amount int64, hash string) {
	tx := &transaction.Transaction{
		FromUserID:   fromID,
		ToUserID:     uuid.NullUUID{UUID: toID, Valid: true},
		Amount:       amount,
		Type:         transaction.TypeTransfer,
		LedgerTxHash: sql.NullString{String: hash, Valid: true},
		Description:  "peer transfer",
	}
	if err := s.audit.Insert(ctx, tx); err != nil {
		log.Error().Err(err).Str("tx_hash", hash).Msg("transfer audit insert failed")
	}
}
