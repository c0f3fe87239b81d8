package credit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store is what the service needs from the repository.
type Store interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	Spend(ctx context.Context, userID uuid.UUID, amount int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.GetBalance(ctx, userID)
}

// Credit adds credits and returns the new balance.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.store.Credit(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Int64("balance", balance).Msg("credits added")
	return balance, nil
}

// Spend debits credits after the storage-level sufficiency check.
func (s *Service) Spend(ctx context.Context, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := s.store.Spend(ctx, userID, amount); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Msg("credits spent")
	return nil
}
