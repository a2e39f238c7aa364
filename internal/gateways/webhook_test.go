package gateways

import (
	"errors"
	"testing"
	"time"
)

func TestConstructWebhookEvent(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)
	header := SignWebhookPayload(payload, "whsec_test", time.Now())

	event, err := ConstructWebhookEvent(payload, header, "whsec_test", DefaultWebhookTolerance)
	if err != nil {
		t.Fatalf("ConstructWebhookEvent returned error: %v", err)
	}

	if event.Type != EventPaymentSucceeded {
		t.Errorf("expected type %q, got %q", EventPaymentSucceeded, event.Type)
	}
	if event.PaymentIntentID != "pi_1" {
		t.Errorf("expected intent pi_1, got %q", event.PaymentIntentID)
	}
}

func TestConstructWebhookEventWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)
	header := SignWebhookPayload(payload, "whsec_other", time.Now())

	_, err := ConstructWebhookEvent(payload, header, "whsec_test", DefaultWebhookTolerance)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestConstructWebhookEventStaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)
	header := SignWebhookPayload(payload, "whsec_test", time.Now().Add(-time.Hour))

	_, err := ConstructWebhookEvent(payload, header, "whsec_test", DefaultWebhookTolerance)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for stale timestamp, got %v", err)
	}
}

func TestConstructWebhookEventGarbageHeader(t *testing.T) {
	_, err := ConstructWebhookEvent([]byte(`{}`), "nonsense", "whsec_test", DefaultWebhookTolerance)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for garbage header, got %v", err)
	}
}
