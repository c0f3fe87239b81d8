package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zinefold/zinefold-api/internal/domain/issuance"
	"github.com/zinefold/zinefold-api/internal/pkg/stripe"
)

type fakePaymentStore struct {
	pending   []*Payment
	processed map[string]bool
	statuses  map[string]Status
	unmarked  []string
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{processed: make(map[string]bool), statuses: make(map[string]Status)}
}

func (f *fakePaymentStore) CreatePending(ctx context.Context, p *Payment) error {
	f.pending = append(f.pending, p)
	return nil
}

func (f *fakePaymentStore) GetBySessionID(ctx context.Context, sessionID string) (*Payment, error) {
	for _, p := range f.pending {
		if p.SessionID == sessionID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentStore) UpdateStatusBySession(ctx context.Context, sessionID string, status Status) error {
	f.statuses[sessionID] = status
	return nil
}

func (f *fakePaymentStore) MarkEventProcessed(ctx context.Context, sessionID string) (bool, error) {
	if f.processed[sessionID] {
		return false, nil
	}
	f.processed[sessionID] = true
	return true, nil
}

func (f *fakePaymentStore) UnmarkEventProcessed(ctx context.Context, sessionID string) error {
	delete(f.processed, sessionID)
	f.unmarked = append(f.unmarked, sessionID)
	return nil
}

type fakeFulfiller struct {
	calls  int
	lastID uuid.UUID
	lastN  int64
	err    error
}

func (f *fakeFulfiller) FulfillCreditPurchase(ctx context.Context, userID uuid.UUID, amount int64) (*issuance.FulfillmentResult, error) {
	f.calls++
	f.lastID = userID
	f.lastN = amount
	if f.err != nil {
		return nil, f.err
	}
	return &issuance.FulfillmentResult{Success: true, Balance: amount}, nil
}

func newTestService(store Store, fulfiller Fulfiller) *Service {
	return NewService(store, NewSimulatedProcessor(), fulfiller, URLs{
		SuccessURL: "http://localhost:3000/success",
		CancelURL:  "http://localhost:3000/cancel",
	})
}

func signedWebhook(t *testing.T, sessionID string, userID uuid.UUID, vpcAmount string) (string, []byte) {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_" + sessionID,
		"type": stripe.EventTypeCheckoutCompleted,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             sessionID,
				"payment_status": "paid",
				"metadata": map[string]string{
					"userId":    userID.String(),
					"type":      MetadataTypeCreditPurchase,
					"vpcAmount": vpcAmount,
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return stripe.SignPayload(payload, SimulatedWebhookSecret, time.Now()), payload
}

func TestCreateCheckoutSession(t *testing.T) {
	store := newFakePaymentStore()
	svc := newTestService(store, &fakeFulfiller{})
	userID := uuid.New()

	resp, err := svc.CreateCheckoutSession(context.Background(), userID, 10, "reader@zinefold.app")
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}

	if !strings.HasPrefix(resp.SessionID, SimulatedSessionPrefix) {
		t.Errorf("session id = %q", resp.SessionID)
	}
	if resp.VPCAmount != 1000 {
		t.Errorf("vpc amount = %d, want 1000", resp.VPCAmount)
	}
	if len(store.pending) != 1 || store.pending[0].AmountUSD != 10 || store.pending[0].VPCAmount != 1000 {
		t.Fatalf("pending rows = %+v", store.pending)
	}
}

func TestCreateCheckoutSessionInvalidAmount(t *testing.T) {
	svc := newTestService(newFakePaymentStore(), &fakeFulfiller{})

	if _, err := svc.CreateCheckoutSession(context.Background(), uuid.New(), 0, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("got %v, want ErrInvalidAmount", err)
	}
}

func TestHandleWebhookFulfills(t *testing.T) {
	store := newFakePaymentStore()
	fulfiller := &fakeFulfiller{}
	svc := newTestService(store, fulfiller)
	userID := uuid.New()
	sig, payload := signedWebhook(t, "cs_1", userID, "1000")

	ack, err := svc.HandleWebhook(context.Background(), sig, payload)
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	if !ack.Received {
		t.Fatal("expected ack")
	}
	if fulfiller.calls != 1 || fulfiller.lastID != userID || fulfiller.lastN != 1000 {
		t.Fatalf("fulfiller calls=%d id=%s amount=%d", fulfiller.calls, fulfiller.lastID, fulfiller.lastN)
	}
	if store.statuses["cs_1"] != StatusCompleted {
		t.Fatalf("status = %q", store.statuses["cs_1"])
	}
}

func TestHandleWebhookReplayDoesNotDoubleCredit(t *testing.T) {
	store := newFakePaymentStore()
	fulfiller := &fakeFulfiller{}
	svc := newTestService(store, fulfiller)
	sig, payload := signedWebhook(t, "cs_replay", uuid.New(), "500")

	for i := 0; i < 3; i++ {
		ack, err := svc.HandleWebhook(context.Background(), sig, payload)
		if err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
		if !ack.Received {
			t.Fatalf("delivery %d should still be acknowledged", i+1)
		}
	}

	if fulfiller.calls != 1 {
		t.Fatalf("fulfiller ran %d times, want 1", fulfiller.calls)
	}
	if fulfiller.lastN != 500 {
		t.Fatalf("credited %d, want 500 exactly once", fulfiller.lastN)
	}
}

func TestHandleWebhookCompletedPaymentShortCircuits(t *testing.T) {
	store := newFakePaymentStore()
	fulfiller := &fakeFulfiller{}
	svc := newTestService(store, fulfiller)
	userID := uuid.New()
	store.pending = append(store.pending, &Payment{
		UserID:    userID,
		SessionID: "cs_done",
		VPCAmount: 1000,
		Status:    StatusCompleted,
	})
	sig, payload := signedWebhook(t, "cs_done", userID, "1000")

	ack, err := svc.HandleWebhook(context.Background(), sig, payload)
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	if !ack.Received {
		t.Fatal("completed session should be acknowledged")
	}
	if fulfiller.calls != 0 {
		t.Fatalf("fulfiller ran %d times, want 0 for an already completed payment", fulfiller.calls)
	}
	if len(store.processed) != 0 {
		t.Fatal("completed session must not claim a new processed mark")
	}
}

func TestHandleWebhookBadSignature(t *testing.T) {
	store := newFakePaymentStore()
	fulfiller := &fakeFulfiller{}
	svc := newTestService(store, fulfiller)
	_, payload := signedWebhook(t, "cs_bad", uuid.New(), "500")
	sig := stripe.SignPayload(payload, "whsec_wrong", time.Now())

	if _, err := svc.HandleWebhook(context.Background(), sig, payload); !errors.Is(err, ErrWebhookVerification) {
		t.Fatalf("got %v, want ErrWebhookVerification", err)
	}
	if fulfiller.calls != 0 {
		t.Fatal("unverified event must never be fulfilled")
	}
	if len(store.processed) != 0 {
		t.Fatal("unverified event must not claim the session")
	}
}

func TestHandleWebhookFulfillmentFailureReleasesClaim(t *testing.T) {
	store := newFakePaymentStore()
	fulfiller := &fakeFulfiller{err: errors.New("internal ledger write failed")}
	svc := newTestService(store, fulfiller)
	sig, payload := signedWebhook(t, "cs_retry", uuid.New(), "500")

	if _, err := svc.HandleWebhook(context.Background(), sig, payload); err == nil {
		t.Fatal("expected fulfillment error to propagate")
	}
	if len(store.unmarked) != 1 || store.unmarked[0] != "cs_retry" {
		t.Fatalf("unmarked = %v, want the claim released for retry", store.unmarked)
	}

	// Retry after the failure is not treated as a replay.
	fulfiller.err = nil
	if _, err := svc.HandleWebhook(context.Background(), sig, payload); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if fulfiller.calls != 2 {
		t.Fatalf("fulfiller ran %d times, want 2", fulfiller.calls)
	}
}

func TestHandleWebhookIgnoresOtherMetadata(t *testing.T) {
	store := newFakePaymentStore()
	fulfiller := &fakeFulfiller{}
	svc := newTestService(store, fulfiller)

	payload, _ := json.Marshal(map[string]interface{}{
		"id":   "evt_sub",
		"type": stripe.EventTypeCheckoutCompleted,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       "cs_sub",
				"metadata": map[string]string{"type": "SUBSCRIPTION"},
			},
		},
	})
	sig := stripe.SignPayload(payload, SimulatedWebhookSecret, time.Now())

	ack, err := svc.HandleWebhook(context.Background(), sig, payload)
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if !ack.Received || fulfiller.calls != 0 {
		t.Fatalf("ack=%+v calls=%d", ack, fulfiller.calls)
	}
}
