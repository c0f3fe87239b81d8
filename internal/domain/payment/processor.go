package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zinefold/zinefold-api/internal/pkg/stripe"
)

// SessionRequest carries everything the processor needs to open a
// checkout session.
type SessionRequest struct {
	UserID        uuid.UUID
	AmountCents   int64
	VPCAmount     int64
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Processor is the payment-processor capability. Exactly one variant is
// chosen at construction time; no call site ever branches on whether a
// credential is configured.
type Processor interface {
	CreateSession(ctx context.Context, req SessionRequest) (*stripe.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) (*stripe.Event, error)
}

// NewProcessor picks the live processor when a secret key is configured,
// the simulated one otherwise.
func NewProcessor(secretKey, webhookSecret string) Processor {
	if secretKey == "" {
		log.Warn().Msg("No payment processor credential configured, using simulated checkout")
		return NewSimulatedProcessor()
	}
	return &LiveProcessor{
		client:        stripe.NewClient(stripe.Config{SecretKey: secretKey}),
		webhookSecret: webhookSecret,
	}
}

// LiveProcessor fronts the real checkout API.
type LiveProcessor struct {
	client        *stripe.Client
	webhookSecret string
}

func (p *LiveProcessor) CreateSession(ctx context.Context, req SessionRequest) (*stripe.CheckoutSession, error) {
	sess, err := p.client.CreateCheckoutSession(ctx, stripe.CheckoutSessionParams{
		AmountCents:   req.AmountCents,
		Currency:      "usd",
		ProductName:   fmt.Sprintf("%d Zinefold credits", req.VPCAmount),
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		CustomerEmail: req.CustomerEmail,
		Metadata:      sessionMetadata(req),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessor, err)
	}
	return sess, nil
}

func (p *LiveProcessor) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	sess, err := p.client.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessor, err)
	}
	return sess, nil
}

func (p *LiveProcessor) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	return stripe.ConstructEvent(payload, signature, p.webhookSecret)
}

// SimulatedSessionPrefix marks sessions minted without a processor.
const SimulatedSessionPrefix = "mock_session_"

// SimulatedWebhookSecret signs simulated webhook deliveries so the
// verification path stays identical to the live one.
const SimulatedWebhookSecret = "whsec_simulated"

// SimulatedProcessor substitutes for the real processor in development.
// Sessions it creates are reported as already paid, with the same
// metadata shape the live processor produces, so the downstream
// fulfillment code runs unchanged.
type SimulatedProcessor struct {
	mu       sync.Mutex
	sessions map[string]*stripe.CheckoutSession
}

func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{sessions: make(map[string]*stripe.CheckoutSession)}
}

func (p *SimulatedProcessor) CreateSession(ctx context.Context, req SessionRequest) (*stripe.CheckoutSession, error) {
	sess := &stripe.CheckoutSession{
		ID:            SimulatedSessionPrefix + uuid.New().String(),
		PaymentStatus: "paid",
		AmountTotal:   req.AmountCents,
		Currency:      "usd",
		CustomerEmail: req.CustomerEmail,
		Metadata:      sessionMetadata(req),
	}

	p.mu.Lock()
	p.sessions[sess.ID] = sess
	p.mu.Unlock()

	return sess, nil
}

func (p *SimulatedProcessor) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	p.mu.Lock()
	sess, ok := p.sessions[sessionID]
	p.mu.Unlock()
	if ok {
		return sess, nil
	}

	// Unknown mock ids (for example after a restart) still resolve to a
	// paid default payload.
	return &stripe.CheckoutSession{
		ID:            sessionID,
		PaymentStatus: "paid",
		Currency:      "usd",
		Metadata:      map[string]string{"type": MetadataTypeCreditPurchase},
	}, nil
}

func (p *SimulatedProcessor) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	return stripe.ConstructEvent(payload, signature, SimulatedWebhookSecret)
}

func sessionMetadata(req SessionRequest) map[string]string {
	return map[string]string{
		"userId":    req.UserID.String(),
		"type":      MetadataTypeCreditPurchase,
		"vpcAmount": fmt.Sprintf("%d", req.VPCAmount),
	}
}
