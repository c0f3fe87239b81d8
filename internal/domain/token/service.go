package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zinefold/zinefold-api/internal/domain/transaction"
	"github.com/zinefold/zinefold-api/internal/domain/wallet"
	"github.com/zinefold/zinefold-api/internal/pkg/xrpl"
)

// defaultTrustLimit is the line limit used when the holder does not ask
// for one. High enough that no realistic purchase hits it.
const defaultTrustLimit = 1_000_000_000

// Store is what the service needs from the repository.
type Store interface {
	CreateToken(ctx context.Context, t *Token) error
	GetByID(ctx context.Context, id uuid.UUID) (*Token, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Token, error)
	DecrementSupply(ctx context.Context, tokenID uuid.UUID, quantity int64) error
	RestoreSupply(ctx context.Context, tokenID uuid.UUID, quantity int64) error
	InsertTrustLine(ctx context.Context, tl *TrustLine) error
	GetTrustLine(ctx context.Context, userID, tokenID uuid.UUID) (*TrustLine, error)
}

// Wallets is the slice of the wallet service token sales use.
type Wallets interface {
	Get(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error)
	SigningSeed(ctx context.Context, userID uuid.UUID) (string, error)
}

// Credits moves the internal balance during a sale.
type Credits interface {
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	Spend(ctx context.Context, userID uuid.UUID, amount int64) error
}

// Issuer delivers the purchased units on the ledger.
type Issuer interface {
	IssueCreatorToken(ctx context.Context, creatorSeed, buyerAddress, assetCode string, amount int64) (string, error)
}

// AuditLog appends and queries transaction rows.
type AuditLog interface {
	Insert(ctx context.Context, tx *transaction.Transaction) error
	ExistsPurchase(ctx context.Context, userID, tokenID uuid.UUID) (bool, error)
}

// Gates resolves a zine's gating token.
type Gates interface {
	TokenForZine(ctx context.Context, zineID uuid.UUID) (uuid.NullUUID, error)
}

// Service manages creator tokens: minting, trust-line opt-in, and sales
// paid in platform credits.
type Service struct {
	store   Store
	wallets Wallets
	credits Credits
	issuer  Issuer
	trust   *TrustLines
	audit   AuditLog
	gates   Gates
}

func NewService(store Store, wallets Wallets, credits Credits, issuer Issuer, trust *TrustLines, audit AuditLog, gates Gates) *Service {
	return &Service{store: store, wallets: wallets, credits: credits, issuer: issuer, trust: trust, audit: audit, gates: gates}
}

// CreateTokenInput is the creator's mint request.
type CreateTokenInput struct {
	Code          string
	Name          string
	Description   string
	InitialSupply int64
	PricePerToken int64
}

// CreateToken mints a new creator token. The creator must already have a
// ledger wallet: their address is the issuer and is frozen into the row.
func (s *Service) CreateToken(ctx context.Context, creatorID uuid.UUID, in CreateTokenInput) (*Token, error) {
	w, err := s.wallets.Get(ctx, creatorID)
	if err != nil {
		if errors.Is(err, wallet.ErrNoWallet) {
			return nil, ErrWalletRequired
		}
		return nil, err
	}

	assetCode, err := xrpl.CurrencyCode(in.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	t := &Token{
		ID:              uuid.New(),
		CreatorID:       creatorID,
		Code:            in.Code,
		Name:            in.Name,
		Description:     in.Description,
		InitialSupply:   in.InitialSupply,
		CurrentSupply:   in.InitialSupply,
		PricePerToken:   in.PricePerToken,
		IssuerAddress:   w.LedgerAddress,
		LedgerAssetCode: assetCode,
		IsActive:        true,
	}
	if err := s.store.CreateToken(ctx, t); err != nil {
		return nil, err
	}

	log.Info().
		Str("token_id", t.ID.String()).
		Str("creator_id", creatorID.String()).
		Str("code", t.Code).
		Int64("supply", t.InitialSupply).
		Msg("creator token minted")
	return t, nil
}

// Get returns an active token or ErrTokenNotFound.
func (s *Service) Get(ctx context.Context, tokenID uuid.UUID) (*Token, error) {
	t, err := s.store.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if t == nil || !t.IsActive {
		return nil, ErrTokenNotFound
	}
	return t, nil
}

func (s *Service) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Token, error) {
	return s.store.ListByCreator(ctx, creatorID)
}

// EstablishTrustLine opts the user in to the token on the ledger and
// mirrors the line into storage. Re-establishing an existing line is
// allowed; the ledger treats it as a limit update.
func (s *Service) EstablishTrustLine(ctx context.Context, userID, tokenID uuid.UUID) (*TrustLine, error) {
	t, err := s.Get(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	seed, err := s.wallets.SigningSeed(ctx, userID)
	if err != nil {
		if errors.Is(err, wallet.ErrNoWallet) {
			return nil, ErrWalletRequired
		}
		return nil, err
	}

	hash, err := s.trust.Establish(ctx, seed, t.IssuerAddress, t.Code, defaultTrustLimit)
	if err != nil {
		return nil, err
	}

	tl := &TrustLine{
		UserID:       userID,
		TokenID:      tokenID,
		LimitAmount:  defaultTrustLimit,
		LedgerTxHash: hash,
		IsActive:     true,
	}
	if err := s.store.InsertTrustLine(ctx, tl); err != nil {
		// The line exists on the ledger either way; the mirror row is a
		// convenience for gating checks.
		log.Error().Err(err).Str("token_id", tokenID.String()).Msg("trust line mirror insert failed")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("token_id", tokenID.String()).
		Str("tx_hash", hash).
		Msg("trust line established")
	return tl, nil
}

// PurchaseResult reports a completed token sale.
type PurchaseResult struct {
	TokenID  uuid.UUID `json:"token_id"`
	Quantity int64     `json:"quantity"`
	Cost     int64     `json:"cost"`
	TxHash   string    `json:"tx_hash"`
}

// Purchase sells quantity units to the buyer for credits. The buyer must
// hold a wallet and a trust line to the token. Credits move first, then
// supply, then the ledger delivery; a failed delivery unwinds both
// reservations so the buyer keeps their credits.
func (s *Service) Purchase(ctx context.Context, buyerID, tokenID uuid.UUID, quantity int64) (*PurchaseResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrInternal)
	}

	t, err := s.Get(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	buyer, err := s.wallets.Get(ctx, buyerID)
	if err != nil {
		if errors.Is(err, wallet.ErrNoWallet) {
			return nil, ErrWalletRequired
		}
		return nil, err
	}

	ok, err := s.trust.Check(ctx, buyer.LedgerAddress, t.IssuerAddress, t.Code)
	if err != nil {
		return nil, fmt.Errorf("trust line check: %w", err)
	}
	if !ok {
		return nil, ErrTrustLineMissing
	}

	cost := quantity * t.PricePerToken

	if err := s.credits.Spend(ctx, buyerID, cost); err != nil {
		return nil, err
	}

	if err := s.store.DecrementSupply(ctx, tokenID, quantity); err != nil {
		s.refund(ctx, buyerID, cost, "supply reservation failed")
		return nil, err
	}

	hash, err := s.IssueToBuyer(ctx, t.CreatorID, buyer.LedgerAddress, t.Code, quantity)
	if err != nil {
		// Unwind: the buyer gets their credits back and the units return
		// to supply. Unlike platform credits there is no internal
		// representation of a creator token, so a failed delivery is a
		// failed sale.
		s.refund(ctx, buyerID, cost, "ledger delivery failed")
		if rerr := s.store.RestoreSupply(ctx, tokenID, quantity); rerr != nil {
			log.Error().Err(rerr).Str("token_id", tokenID.String()).Int64("quantity", quantity).Msg("supply restore failed after delivery failure")
		}
		return nil, err
	}

	if _, err := s.credits.Credit(ctx, t.CreatorID, cost); err != nil {
		log.Error().Err(err).Str("creator_id", t.CreatorID.String()).Int64("cost", cost).Msg("creator payout failed after delivery")
	}

	s.recordSale(ctx, buyerID, t, quantity, cost, hash)

	log.Info().
		Str("buyer_id", buyerID.String()).
		Str("token_id", tokenID.String()).
		Int64("quantity", quantity).
		Int64("cost", cost).
		Str("tx_hash", hash).
		Msg("token purchased")

	return &PurchaseResult{TokenID: tokenID, Quantity: quantity, Cost: cost, TxHash: hash}, nil
}

// IssueToBuyer delivers units of a creator's token on the ledger, signing
// with the creator's decrypted seed. Network failures are not caught here:
// creator tokens have no internal-ledger representation to fall back to.
func (s *Service) IssueToBuyer(ctx context.Context, creatorID uuid.UUID, buyerAddress, code string, amount int64) (string, error) {
	creatorSeed, err := s.wallets.SigningSeed(ctx, creatorID)
	if err != nil {
		return "", err
	}
	return s.issuer.IssueCreatorToken(ctx, creatorSeed, buyerAddress, code, amount)
}

func (s *Service) refund(ctx context.Context, userID uuid.UUID, amount int64, reason string) {
	if _, err := s.credits.Credit(ctx, userID, amount); err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Int64("amount", amount).
			Str("reason", reason).
			Msg("refund failed, balance inconsistent")
	}
}

func (s *Service) recordSale(ctx context.Context, buyerID uuid.UUID, t *Token, quantity, cost int64, hash string) {
	tx := &transaction.Transaction{
		FromUserID:  buyerID,
		ToUserID:    uuid.NullUUID{UUID: t.CreatorID, Valid: true},
		TokenID:     uuid.NullUUID{UUID: t.ID, Valid: true},
		Amount:      cost,
		Type:        transaction.TypeTokenPurchase,
		Description: fmt.Sprintf("purchased %d %s", quantity, t.Code),
	}
	if hash != "" {
		tx.LedgerTxHash = sql.NullString{String: hash, Valid: true}
	}
	if err := s.audit.Insert(ctx, tx); err != nil {
		log.Error().Err(err).Str("token_id", t.ID.String()).Msg("sale audit insert failed")
	}
}

// HasAccess reports whether the user may read a gated zine. Ungated zines
// are open to everyone; gated ones require a past purchase of the gating
// token or an active mirrored trust line.
func (s *Service) HasAccess(ctx context.Context, userID, zineID uuid.UUID) (bool, error) {
	gate, err := s.gates.TokenForZine(ctx, zineID)
	if err != nil {
		return false, err
	}
	if !gate.Valid {
		return true, nil
	}

	purchased, err := s.audit.ExistsPurchase(ctx, userID, gate.UUID)
	if err != nil {
		return false, err
	}
	if purchased {
		return true, nil
	}

	tl, err := s.store.GetTrustLine(ctx, userID, gate.UUID)
	if err != nil {
		return false, err
	}
	return tl != nil && tl.IsActive, nil
}
