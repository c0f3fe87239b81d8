package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zinefold/zinefold-api/internal/pkg/vault"
	"github.com/zinefold/zinefold-api/internal/pkg/xrpl"
)

// Store is what the service needs from the repository.
type Store interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	Create(ctx context.Context, w *Wallet) (bool, error)
}

// Keygen generates ledger keypairs. Satisfied by xrpl.Generate.
type Keygen func() (*xrpl.Wallet, error)

// Service provisions XRPL wallets. Seeds are encrypted before the row is
// handed to storage; no code path persists a raw seed.
type Service struct {
	store       Store
	vault       *vault.Vault
	keygen      Keygen
	payIDDomain string
}

func NewService(store Store, v *vault.Vault, payIDDomain string) *Service {
	return &Service{store: store, vault: v, keygen: xrpl.Generate, payIDDomain: payIDDomain}
}

// WithKeygen overrides keypair generation (tests).
func (s *Service) WithKeygen(kg Keygen) *Service {
	s.keygen = kg
	return s
}

// Provision creates the user's wallet, or returns the existing one
// unchanged. A second call never generates a second keypair; a concurrent
// first call loses the insert race and adopts the winner's row.
func (s *Service) Provision(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	existing, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	kp, err := s.keygen()
	if err != nil {
		return nil, fmt.Errorf("keypair generation: %w", err)
	}

	w := &Wallet{
		ID:              uuid.New(),
		UserID:          userID,
		LedgerAddress:   kp.Address,
		EncryptedSecret: s.vault.EncryptOrPlaintext(kp.Seed),
	}
	if s.payIDDomain != "" {
		w.PayID = sql.NullString{String: userID.String() + "$" + s.payIDDomain, Valid: true}
	}

	inserted, err := s.store.Create(ctx, w)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Lost the race: another request provisioned first.
		return s.store.GetByUserID(ctx, userID)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("ledger_address", kp.Address).
		Msg("wallet provisioned")
	return w, nil
}

// Get returns the user's wallet or ErrNoWallet.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	w, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrNoWallet
	}
	return w, nil
}

// SigningSeed decrypts and returns the user's seed. Only the issuance
// pipeline and its callers (token sales, transfers) may use this.
func (s *Service) SigningSeed(ctx context.Context, userID uuid.UUID) (string, error) {
	w, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.vault.Decrypt(w.EncryptedSecret)
}
