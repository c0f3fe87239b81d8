package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventTypeCheckoutCompleted is the only event type the bridge acts on.
const EventTypeCheckoutCompleted = "checkout.session.completed"

// DefaultTolerance bounds how stale a webhook timestamp may be.
const DefaultTolerance = 5 * time.Minute

var (
	ErrInvalidSignatureHeader = errors.New("invalid Stripe-Signature header")
	ErrSignatureMismatch      = errors.New("webhook signature mismatch")
	ErrTimestampTooOld        = errors.New("webhook timestamp outside tolerance")
)

// Event is a parsed, signature-verified webhook event.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object CheckoutSession `json:"object"`
	} `json:"data"`
}

// ConstructEvent verifies the Stripe-Signature header against the payload
// and parses the event. The header carries a timestamp and one or more v1
// HMAC-SHA256 signatures over "<timestamp>.<payload>".
func ConstructEvent(payload []byte, sigHeader, secret string) (*Event, error) {
	return constructEventAt(payload, sigHeader, secret, time.Now(), DefaultTolerance)
}

func constructEventAt(payload []byte, sigHeader, secret string, now time.Time, tolerance time.Duration) (*Event, error) {
	if secret == "" || sigHeader == "" {
		return nil, ErrInvalidSignatureHeader
	}

	var timestamp int64
	var candidates [][]byte
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return nil, ErrInvalidSignatureHeader
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			candidates = append(candidates, sig)
		}
	}
	if timestamp == 0 || len(candidates) == 0 {
		return nil, ErrInvalidSignatureHeader
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return nil, ErrTimestampTooOld
		}
	}

	expected := computeSignature(timestamp, payload, secret)
	verified := false
	for _, sig := range candidates {
		if hmac.Equal(sig, expected) {
			verified = true
			break
		}
	}
	if !verified {
		return nil, ErrSignatureMismatch
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	return &event, nil
}

// SignPayload produces a valid Stripe-Signature header value. Used by the
// simulated processor and by tests.
func SignPayload(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	sig := computeSignature(ts, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(sig))
}

func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", timestamp)
	h.Write(payload)
	return h.Sum(nil)
}
