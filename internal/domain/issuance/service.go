package issuance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zinefold/zinefold-api/internal/domain/transaction"
	"github.com/zinefold/zinefold-api/internal/domain/wallet"
	"github.com/zinefold/zinefold-api/internal/pkg/xrpl"
)

// Ledger is the slice of the XRPL client the pipeline uses.
type Ledger interface {
	SubmitPayment(ctx context.Context, senderSeed, destination string, amount xrpl.Amount) (*xrpl.SubmitResult, error)
}

// CreditLedger adds to the internal balance.
type CreditLedger interface {
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

// WalletStore looks up wallet rows and records verification.
type WalletStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error)
	MarkVerified(ctx context.Context, userID uuid.UUID) error
}

// AuditLog appends transaction rows.
type AuditLog interface {
	Insert(ctx context.Context, tx *transaction.Transaction) error
}

// PlatformAccount is the platform's issuing account.
type PlatformAccount struct {
	Address   string
	Seed      string
	AssetCode string
}

// Configured reports whether a signing key is available.
func (p PlatformAccount) Configured() bool {
	return p.Address != "" && p.Seed != ""
}

// Service submits asset payments to the ledger and owns the fulfillment
// contract for credit purchases.
type Service struct {
	ledger   Ledger
	credits  CreditLedger
	wallets  WalletStore
	audit    AuditLog
	platform PlatformAccount
}

func NewService(ledger Ledger, credits CreditLedger, wallets WalletStore, audit AuditLog, platform PlatformAccount) *Service {
	return &Service{ledger: ledger, credits: credits, wallets: wallets, audit: audit, platform: platform}
}

// IssuePlatformCredits sends the platform asset to destination and returns
// the transaction hash. ErrTrustLineMissing on tecPATH_DRY,
// ErrIssuanceFailed on any other non-success outcome.
func (s *Service) IssuePlatformCredits(ctx context.Context, destination string, amount int64) (string, error) {
	if !s.platform.Configured() {
		return "", ErrWalletNotConfigured
	}
	return s.issue(ctx, s.platform.Seed, s.platform.Address, destination, s.platform.AssetCode, amount)
}

// IssueCreatorToken sends a creator-issued asset to the buyer. The issuer
// address is derived from the creator's seed.
func (s *Service) IssueCreatorToken(ctx context.Context, creatorSeed, buyerAddress, assetCode string, amount int64) (string, error) {
	issuer, err := xrpl.DeriveAddress(creatorSeed)
	if err != nil {
		return "", fmt.Errorf("%w: bad creator seed: %v", ErrIssuanceFailed, err)
	}
	return s.issue(ctx, creatorSeed, issuer, buyerAddress, assetCode, amount)
}

func (s *Service) issue(ctx context.Context, seed, issuer, destination, assetCode string, amount int64) (string, error) {
	currency, err := xrpl.CurrencyCode(assetCode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}

	res, err := s.ledger.SubmitPayment(ctx, seed, destination, xrpl.NewAmount(currency, issuer, decimal.NewFromInt(amount)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}
	if res.NoPath() {
		return "", fmt.Errorf("%w: %s", ErrTrustLineMissing, res.EngineResult)
	}
	if !res.Applied() {
		return "", fmt.Errorf("%w: %s", ErrIssuanceFailed, res.EngineResult)
	}
	return res.TxJSON.Hash, nil
}

// SendPayment moves an issued asset between arbitrary accounts. An empty
// hash means the submission did not land; the peer-to-peer transfer path
// decides whether to surface or retry, so no error is raised here.
func (s *Service) SendPayment(ctx context.Context, senderSeed, destination string, amount int64, assetCode, issuerAddress string) string {
	currency, err := xrpl.CurrencyCode(assetCode)
	if err != nil {
		log.Warn().Err(err).Msg("send payment: bad asset code")
		return ""
	}

	res, err := s.ledger.SubmitPayment(ctx, senderSeed, destination, xrpl.NewAmount(currency, issuerAddress, decimal.NewFromInt(amount)))
	if err != nil {
		log.Warn().Err(err).Str("destination", destination).Msg("send payment: submission failed")
		return ""
	}
	if !res.Applied() {
		log.Warn().Str("engine_result", res.EngineResult).Str("destination", destination).Msg("send payment: rejected")
		return ""
	}
	return res.TxJSON.Hash
}

// FulfillmentResult reports how a confirmed credit purchase was applied.
type FulfillmentResult struct {
	Success     bool   `json:"success"`
	CreditsOnly bool   `json:"credits_only,omitempty"`
	Fallback    bool   `json:"fallback,omitempty"`
	TxHash      string `json:"tx_hash,omitempty"`
	XRPError    string `json:"xrp_error,omitempty"`
	Balance     int64  `json:"balance"`
}

// FulfillCreditPurchase converts a confirmed fiat payment into internal
// credits, mirroring to the ledger when the user has a wallet. The
// internal balance is authoritative and is credited on every path: a
// failed network leg downgrades the result to Fallback, it never blocks
// the credits the user paid for. Only an internal-ledger write failure is
// a hard error.
func (s *Service) FulfillCreditPurchase(ctx context.Context, userID uuid.UUID, amount int64) (*FulfillmentResult, error) {
	w, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		// Can't know whether a wallet exists; the purchase still completes
		// on the internal ledger alone.
		log.Error().Err(err).Str("user_id", userID.String()).Msg("fulfillment: wallet lookup failed, crediting internally only")
		w = nil
	}

	if w == nil || w.LedgerAddress == "" {
		balance, err := s.credits.Credit(ctx, userID, amount)
		if err != nil {
			return nil, err
		}
		s.recordPurchase(ctx, userID, amount, "", "credit purchase (no ledger wallet)")
		return &FulfillmentResult{Success: true, CreditsOnly: true, Balance: balance}, nil
	}

	txHash, issueErr := s.IssuePlatformCredits(ctx, w.LedgerAddress, amount)

	balance, err := s.credits.Credit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	if issueErr != nil {
		log.Warn().
			Err(issueErr).
			Str("user_id", userID.String()).
			Int64("amount", amount).
			Msg("fulfillment: ledger mirroring failed, credited internally")
		s.recordPurchase(ctx, userID, amount, "", "credit purchase (ledger mirror failed)")
		return &FulfillmentResult{Success: true, Fallback: true, XRPError: issueErr.Error(), Balance: balance}, nil
	}

	// A delivered payment proves the account is funded and trusts the
	// platform asset.
	if !w.IsVerified {
		if err := s.wallets.MarkVerified(ctx, userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("fulfillment: mark verified failed")
		}
	}

	s.recordPurchase(ctx, userID, amount, txHash, "credit purchase")
	return &FulfillmentResult{Success: true, TxHash: txHash, Balance: balance}, nil
}

// recordPurchase appends the audit row; audit failures are logged, never
// allowed to fail a fulfillment that already credited the user.
func (s *Service) recordPurchase(ctx context.Context, userID uuid.UUID, amount int64, txHash, description string) {
	if s.audit == nil {
		return
	}
	tx := &transaction.Transaction{
		FromUserID:  userID,
		Amount:      amount,
		Type:        transaction.TypeCreditPurchase,
		Description: description,
	}
	if txHash != "" {
		tx.LedgerTxHash = sql.NullString{String: txHash, Valid: true}
	}
	if err := s.audit.Insert(ctx, tx); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("fulfillment: audit insert failed")
	}
}
