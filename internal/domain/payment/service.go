package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zinefold/zinefold-api/internal/domain/issuance"
	"github.com/zinefold/zinefold-api/internal/pkg/stripe"
)

// Store is what the service needs from the repository.
type Store interface {
	CreatePending(ctx context.Context, p *Payment) error
	GetBySessionID(ctx context.Context, sessionID string) (*Payment, error)
	UpdateStatusBySession(ctx context.Context, sessionID string, status Status) error
	MarkEventProcessed(ctx context.Context, sessionID string) (bool, error)
	UnmarkEventProcessed(ctx context.Context, sessionID string) error
}

// Fulfiller applies a confirmed purchase to the ledgers.
type Fulfiller interface {
	FulfillCreditPurchase(ctx context.Context, userID uuid.UUID, amount int64) (*issuance.FulfillmentResult, error)
}

// URLs are the checkout redirect targets.
type URLs struct {
	SuccessURL string
	CancelURL  string
}

// Service bridges checkout sessions and webhook fulfillment.
type Service struct {
	store     Store
	processor Processor
	fulfiller Fulfiller
	urls      URLs
}

func NewService(store Store, processor Processor, fulfiller Fulfiller, urls URLs) *Service {
	return &Service{store: store, processor: processor, fulfiller: fulfiller, urls: urls}
}

// CheckoutSessionResponse is returned to the client starting a purchase.
type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url,omitempty"`
	VPCAmount int64  `json:"vpc_amount"`
}

// CreateCheckoutSession opens a checkout session for amountUSD dollars of
// credits at the fixed conversion rate.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, amountUSD int64, email string) (*CheckoutSessionResponse, error) {
	if amountUSD <= 0 {
		return nil, ErrInvalidAmount
	}

	vpcAmount := amountUSD * CreditsPerUSD

	sess, err := s.processor.CreateSession(ctx, SessionRequest{
		UserID:        userID,
		AmountCents:   amountUSD * 100,
		VPCAmount:     vpcAmount,
		CustomerEmail: email,
		SuccessURL:    s.urls.SuccessURL,
		CancelURL:     s.urls.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.CreatePending(ctx, &Payment{
		UserID:    userID,
		SessionID: sess.ID,
		AmountUSD: amountUSD,
		VPCAmount: vpcAmount,
	}); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("session_id", sess.ID).
		Int64("vpc_amount", vpcAmount).
		Msg("checkout session created")

	return &CheckoutSessionResponse{SessionID: sess.ID, URL: sess.URL, VPCAmount: vpcAmount}, nil
}

// RetrieveCheckoutSession fetches the processor's view of a session.
func (s *Service) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	return s.processor.RetrieveSession(ctx, sessionID)
}

// WebhookAck acknowledges a delivery.
type WebhookAck struct {
	Received bool `json:"received"`
}

// HandleWebhook verifies the delivery, deduplicates by session id, and
// fulfills completed credit purchases exactly once. Verification failure
// is fatal; everything after a successful claim either fulfills or
// releases the claim so a redelivery can retry.
func (s *Service) HandleWebhook(ctx context.Context, signature string, payload []byte) (*WebhookAck, error) {
	event, err := s.processor.VerifyWebhook(payload, signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookVerification, err)
	}

	if event.Type != stripe.EventTypeCheckoutCompleted {
		log.Debug().Str("type", event.Type).Msg("webhook: ignoring event type")
		return &WebhookAck{Received: true}, nil
	}

	sess := event.Data.Object
	if sess.Metadata["type"] != MetadataTypeCreditPurchase {
		log.Debug().Str("session_id", sess.ID).Msg("webhook: not a credit purchase, ignoring")
		return &WebhookAck{Received: true}, nil
	}

	userID, err := uuid.Parse(sess.Metadata["userId"])
	if err != nil {
		return nil, fmt.Errorf("%w: bad userId metadata: %v", ErrWebhookVerification, err)
	}
	vpcAmount, err := strconv.ParseInt(sess.Metadata["vpcAmount"], 10, 64)
	if err != nil || vpcAmount <= 0 {
		return nil, fmt.Errorf("%w: bad vpcAmount metadata", ErrWebhookVerification)
	}

	// Cheap exit before claiming: a payment row that already completed
	// means a prior delivery fulfilled this session.
	p, err := s.store.GetBySessionID(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if p != nil && p.IsPaid() {
		log.Info().Str("session_id", sess.ID).Msg("webhook: payment already completed, skipping duplicate delivery")
		return &WebhookAck{Received: true}, nil
	}

	fresh, err := s.store.MarkEventProcessed(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if !fresh {
		log.Info().Str("session_id", sess.ID).Msg("webhook: session already processed, skipping duplicate delivery")
		return &WebhookAck{Received: true}, nil
	}

	result, err := s.fulfiller.FulfillCreditPurchase(ctx, userID, vpcAmount)
	if err != nil {
		// Release the claim so the processor's retry is not swallowed.
		if unErr := s.store.UnmarkEventProcessed(ctx, sess.ID); unErr != nil {
			log.Error().Err(unErr).Str("session_id", sess.ID).Msg("webhook: failed to release processed mark")
		}
		return nil, err
	}

	if err := s.store.UpdateStatusBySession(ctx, sess.ID, StatusCompleted); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("webhook: failed to mark payment completed")
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("user_id", userID.String()).
		Int64("vpc_amount", vpcAmount).
		Bool("credits_only", result.CreditsOnly).
		Bool("fallback", result.Fallback).
		Msg("credit purchase fulfilled")

	return &WebhookAck{Received: true}, nil
}
