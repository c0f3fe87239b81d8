package stripe

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "whsec_test"

var testPayload = []byte(`{
	"id": "evt_1",
	"type": "checkout.session.completed",
	"data": {
		"object": {
			"id": "cs_test_123",
			"payment_status": "paid",
			"metadata": {"userId": "u1", "type": "CREDIT_PURCHASE", "vpcAmount": "1000"}
		}
	}
}`)

func TestConstructEvent(t *testing.T) {
	header := SignPayload(testPayload, testSecret, time.Now())

	event, err := ConstructEvent(testPayload, header, testSecret)
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}

	if event.Type != EventTypeCheckoutCompleted {
		t.Errorf("type = %q", event.Type)
	}
	if event.Data.Object.ID != "cs_test_123" {
		t.Errorf("session id = %q", event.Data.Object.ID)
	}
	if event.Data.Object.Metadata["vpcAmount"] != "1000" {
		t.Errorf("metadata = %v", event.Data.Object.Metadata)
	}
}

func TestConstructEventWrongSecret(t *testing.T) {
	header := SignPayload(testPayload, "whsec_other", time.Now())

	if _, err := ConstructEvent(testPayload, header, testSecret); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("got %v, want ErrSignatureMismatch", err)
	}
}

func TestConstructEventTamperedPayload(t *testing.T) {
	header := SignPayload(testPayload, testSecret, time.Now())
	tampered := append([]byte{}, testPayload...)
	tampered[len(tampered)-2] = 'x'

	if _, err := ConstructEvent(tampered, header, testSecret); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("got %v, want ErrSignatureMismatch", err)
	}
}

func TestConstructEventStaleTimestamp(t *testing.T) {
	header := SignPayload(testPayload, testSecret, time.Now().Add(-10*time.Minute))

	if _, err := ConstructEvent(testPayload, header, testSecret); !errors.Is(err, ErrTimestampTooOld) {
		t.Fatalf("got %v, want ErrTimestampTooOld", err)
	}
}

func TestConstructEventBadHeader(t *testing.T) {
	for _, header := range []string{"", "t=abc,v1=00", "v1=00", "t=123"} {
		if _, err := ConstructEvent(testPayload, header, testSecret); !errors.Is(err, ErrInvalidSignatureHeader) {
			t.Errorf("header %q: got %v, want ErrInvalidSignatureHeader", header, err)
		}
	}
}
