package payment

import "errors"

var (
	// ErrProcessor covers processor-unreachable and misconfiguration failures
	ErrProcessor = errors.New("payment processor error")

	// ErrWebhookVerification is fatal: the event is rejected, never acted on
	ErrWebhookVerification = errors.New("webhook verification failed")

	// ErrInvalidAmount is returned when the purchase amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrSessionNotFound is returned for unknown checkout sessions
	ErrSessionNotFound = errors.New("checkout session not found")
)
