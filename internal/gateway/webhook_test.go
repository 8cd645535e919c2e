package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header over the exact payload bytes.
func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestParseWebhookEventVerifiesSignature(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_1", "object": "payment_intent", "status": "succeeded", "amount": 5000, "currency": "usd"}}
	}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	ev, err := ParseWebhookEvent(payload, header, testWebhookSecret, true)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, "payment_intent.succeeded", ev.Type)
	require.NotNil(t, ev.PaymentIntent)
	assert.Equal(t, "pi_1", ev.PaymentIntent.ID)
	assert.Equal(t, "succeeded", ev.PaymentIntent.Status)
	assert.Equal(t, int64(5000), ev.PaymentIntent.AmountMinor)
	assert.Nil(t, ev.Session)
}

func TestParseWebhookEventStrictRejectsBadSignature(t *testing.T) {
	payload := []byte(`{"id": "evt_1", "type": "payment_intent.succeeded", "data": {"object": {}}}`)
	header := signPayload(payload, "whsec_other_secret", time.Now())

	_, err := ParseWebhookEvent(payload, header, testWebhookSecret, true)
	require.ErrorIs(t, err, ErrSignatureInvalid)

	_, err = ParseWebhookEvent(payload, "", testWebhookSecret, true)
	require.ErrorIs(t, err, ErrSignatureInvalid, "missing header fails closed")
}

func TestParseWebhookEventStrictRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{"id": "evt_1", "type": "payment_intent.succeeded", "data": {"object": {}}}`)
	header := signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))

	_, err := ParseWebhookEvent(payload, header, testWebhookSecret, true)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestParseWebhookEventNonStrictFallsBackToUnsignedParse(t *testing.T) {
	payload := []byte(`{
		"id": "evt_2",
		"type": "checkout.session.expired",
		"data": {"object": {"id": "cs_1", "object": "checkout.session", "status": "expired"}}
	}`)

	ev, err := ParseWebhookEvent(payload, "", testWebhookSecret, false)
	require.NoError(t, err)
	assert.Equal(t, "evt_2", ev.ID)
	assert.Equal(t, "checkout.session.expired", ev.Type)
	require.NotNil(t, ev.Session)
	assert.Equal(t, "cs_1", ev.Session.ID)
}

func TestParseWebhookEventNonStrictRejectsGarbage(t *testing.T) {
	_, err := ParseWebhookEvent([]byte("not json"), "", testWebhookSecret, false)
	require.ErrorIs(t, err, ErrMalformedEvent)

	_, err = ParseWebhookEvent([]byte(`{"object": "event"}`), "", testWebhookSecret, false)
	require.ErrorIs(t, err, ErrMalformedEvent, "id and type are mandatory")
}

func TestParseWebhookEventPromotesEmbeddedIntent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_3",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_2",
			"object": "checkout.session",
			"status": "complete",
			"payment_status": "paid",
			"payment_intent": {"id": "pi_2", "object": "payment_intent", "status": "succeeded"}
		}}
	}`)

	ev, err := ParseWebhookEvent(payload, "", testWebhookSecret, false)
	require.NoError(t, err)
	require.NotNil(t, ev.Session)
	assert.Equal(t, "cs_2", ev.Session.ID)
	assert.Equal(t, "paid", ev.Session.PaymentStatus)
	require.NotNil(t, ev.PaymentIntent, "expanded intent must be promoted")
	assert.Equal(t, "pi_2", ev.PaymentIntent.ID)
	assert.Equal(t, "succeeded", ev.PaymentIntent.Status)
}

func TestParseWebhookEventCapturesFailureReason(t *testing.T) {
	payload := []byte(`{
		"id": "evt_4",
		"type": "payment_intent.payment_failed",
		"data": {"object": {
			"id": "pi_3",
			"object": "payment_intent",
			"status": "requires_payment_method",
			"last_payment_error": {"message": "Your card was declined."}
		}}
	}`)

	ev, err := ParseWebhookEvent(payload, "", testWebhookSecret, false)
	require.NoError(t, err)
	assert.Equal(t, "Your card was declined.", ev.FailureReason)
}
