package usecase

import (
	"context"
	"fmt"
	"testing"

	"booking-payments/internal/data/entity"
	"booking-payments/internal/events"
	"booking-payments/internal/gateway"
	"booking-payments/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intentEvent(eventID, eventType, intentID, intentStatus string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": %q,
		"data": {"object": {"id": %q, "object": "payment_intent", "status": %q}}
	}`, eventID, eventType, intentID, intentStatus))
}

func sessionCompletedEvent(eventID, sessionID, paymentStatus, intentID, intentStatus string) []byte {
	intent := "null"
	if intentID != "" {
		intent = fmt.Sprintf(`{"id": %q, "object": "payment_intent", "status": %q}`, intentID, intentStatus)
	}
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {"object": {"id": %q, "object": "checkout.session", "status": "complete", "payment_status": %q, "payment_intent": %s}}
	}`, eventID, sessionID, paymentStatus, intent))
}

func process(t *testing.T, h *harness, payload []byte) error {
	t.Helper()
	return h.svc.Webhook.ProcessEvent(context.Background(), entity.BookingKindEvent, payload, "")
}

func TestProcessEventPaymentSucceeded(t *testing.T) {
	h := newHarness()
	b := h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)

	err := process(t, h, intentEvent("evt_1", "payment_intent.succeeded", *b.ExternalPaymentID, "succeeded"))
	require.NoError(t, err)

	stored := h.store.bookings[b.ID]
	assert.Equal(t, entity.BookingStatusBooked, stored.Status)
	assert.Equal(t, entity.PaymentStatusCaptured, stored.PayStatus)
	assert.Equal(t, []string{events.TypeBookingBooked}, h.sink.types())
}

func TestProcessEventDuplicateDelivery(t *testing.T) {
	h := newHarness()
	b := h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)
	payload := intentEvent("evt_1", "payment_intent.succeeded", *b.ExternalPaymentID, "succeeded")

	require.NoError(t, process(t, h, payload))
	require.NoError(t, process(t, h, payload), "redelivery must ack")

	stored := h.store.bookings[b.ID]
	assert.Equal(t, entity.BookingStatusBooked, stored.Status)
	assert.Len(t, h.sink.published, 1, "no duplicate notification")
}

func TestProcessEventSameTriggerDifferentEventID(t *testing.T) {
	h := newHarness()
	b := h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)

	require.NoError(t, process(t, h, intentEvent("evt_1", "payment_intent.succeeded", *b.ExternalPaymentID, "succeeded")))
	// Gateway sometimes emits distinct events that map to the same state;
	// the state machine's no-op rule absorbs them.
	require.NoError(t, process(t, h, intentEvent("evt_2", "payment_intent.succeeded", *b.ExternalPaymentID, "succeeded")))

	assert.Len(t, h.sink.published, 1)
}

func TestProcessEventSessionCompletedPaid(t *testing.T) {
	h := newHarness()
	b := h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)
	b.ExternalPaymentID = nil
	sid := "cs_paid"
	b.ExternalSessionID = &sid
	h.store.put(b)

	err := process(t, h, sessionCompletedEvent("evt_1", sid, "paid", "pi_new", "succeeded"))
	require.NoError(t, err)

	stored := h.store.bookings[b.ID]
	assert.Equal(t, entity.BookingStatusBooked, stored.Status)
	assert.Equal(t, entity.PaymentStatusCaptured, stored.PayStatus)
	require.NotNil(t, stored.ExternalPaymentID, "intent from the session must be anchored")
	assert.Equal(t, "pi_new", *stored.ExternalPaymentID)
}

func TestProcessEventSessionCompletedManualCapture(t *testing.T) {
	h := newHarness()
	b := h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)
	b.ExternalPaymentID = nil
	sid := "cs_manual"
	b.ExternalSessionID = &sid
	h.store.put(b)

	// Completed session whose intent still awaits capture authorizes, not books.
	err := process(t, h, sessionCompletedEvent("evt_1", sid, "unpaid", "pi_new", "requires_capture"))
	require.NoError(t, err)

	stored := h.store.bookings[b.ID]
	assert.Equal(t, entity.BookingStatusPending, stored.Status)
	assert.Equal(t, entity.PaymentStatusAuthorized, stored.PayStatus)
	assert.Empty(t, h.sink.published, "authorization is not announced")
}

func TestProcessEventSessionExpired(t *testing.T) {
	h := newHarness()
	b := h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)
	b.ExternalPaymentID = nil
	sid := "cs_exp"
	b.ExternalSessionID = &sid
	h.store.put(b)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.expired",
		"data": {"object": {"id": %q, "object": "checkout.session", "status": "expired"}}
	}`, sid))
	require.NoError(t, process(t, h, payload))

	stored := h.store.bookings[b.ID]
	assert.Equal(t, entity.BookingStatusFailed, stored.Status)
	assert.Equal(t, entity.PaymentStatusExpired, stored.PayStatus)

	// A success for the same booking arriving after expiry is a conflict.
	pid := "pi_late"
	stored.ExternalPaymentID = &pid
	h.store.put(stored)

	err := process(t, h, intentEvent("evt_2", "payment_intent.succeeded", pid, "succeeded"))
	require.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Equal(t, []string{events.TypeBookingFailed}, h.sink.types())
}

func TestProcessEventPaymentFailed(t *testing.T) {
	h := newHarness()
	b := h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "payment_intent.payment_failed",
		"data": {"object": {"id": %q, "object": "payment_intent", "status": "requires_payment_method",
			"last_payment_error": {"message": "card declined"}}}
	}`, *b.ExternalPaymentID))
	require.NoError(t, process(t, h, payload))

	stored := h.store.bookings[b.ID]
	assert.Equal(t, entity.BookingStatusFailed, stored.Status)
	assert.Equal(t, entity.PaymentStatusFailed, stored.PayStatus)
	assert.Equal(t, []string{events.TypeBookingFailed}, h.sink.types())
}

func TestProcessEventUnknownTypeIsAcked(t *testing.T) {
	h := newHarness()
	h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)

	payload := []byte(`{"id": "evt_1", "type": "customer.created", "data": {"object": {}}}`)
	require.NoError(t, process(t, h, payload))
	assert.Empty(t, h.sink.published)
}

func TestProcessEventNoMatchingBooking(t *testing.T) {
	h := newHarness()

	err := process(t, h, intentEvent("evt_1", "payment_intent.succeeded", "pi_unknown", "succeeded"))
	require.NoError(t, err, "events for unknown bookings are acked")

	// Recorded so a redelivery short-circuits on the dedup check.
	_, recorded := h.store.events["evt_1"]
	assert.True(t, recorded)
}

func TestProcessEventSignatureStrict(t *testing.T) {
	h := newHarness()
	h.cfg.Stripe.WebhookStrict = true
	b := h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)

	err := process(t, h, intentEvent("evt_1", "payment_intent.succeeded", *b.ExternalPaymentID, "succeeded"))
	require.ErrorIs(t, err, gateway.ErrSignatureInvalid)

	stored := h.store.bookings[b.ID]
	assert.Equal(t, entity.BookingStatusPending, stored.Status, "unverified payload must not mutate")
}

func TestProcessEventAmountCapturableUpdated(t *testing.T) {
	h := newHarness()
	b := h.addBooking(entity.BookingStatusPending, entity.PaymentStatusPending, 50)

	err := process(t, h, intentEvent("evt_1", "payment_intent.amount_capturable_updated", *b.ExternalPaymentID, "requires_capture"))
	require.NoError(t, err)

	stored := h.store.bookings[b.ID]
	assert.Equal(t, entity.PaymentStatusAuthorized, stored.PayStatus)
}
