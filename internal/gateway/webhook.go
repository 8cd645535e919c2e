package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

var (
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// Event is a verified, decoded gateway notification. Exactly one of
// PaymentIntent and Session is set, depending on the event family; events
// outside both families carry neither.
type Event struct {
	ID            string
	Type          string
	PaymentIntent *PaymentIntentRef
	Session       *SessionRef
	FailureReason string
}

// ParseWebhookEvent verifies the signature over the exact payload bytes and
// decodes the embedded object. In strict mode a failed verification is
// terminal; otherwise the payload is parsed unsigned as a best effort, which
// exists for local development only.
func ParseWebhookEvent(payload []byte, sigHeader, secret string, strict bool) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if strict {
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		ev = stripe.Event{}
		if jsonErr := json.Unmarshal(payload, &ev); jsonErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, jsonErr)
		}
	}
	if ev.ID == "" || ev.Type == "" {
		return nil, fmt.Errorf("%w: missing event id or type", ErrMalformedEvent)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch {
	case strings.HasPrefix(out.Type, "payment_intent."):
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: decode payment intent: %v", ErrMalformedEvent, err)
		}
		out.PaymentIntent = intentRef(&pi)
		if pi.LastPaymentError != nil {
			out.FailureReason = pi.LastPaymentError.Msg
		}
	case strings.HasPrefix(out.Type, "checkout.session."):
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: decode checkout session: %v", ErrMalformedEvent, err)
		}
		out.Session = sessionRef(&sess)
		// An expanded intent rides along on completed sessions; its
		// status decides whether the payment actually captured.
		if sess.PaymentIntent != nil && sess.PaymentIntent.Status != "" {
			out.PaymentIntent = intentRef(sess.PaymentIntent)
		}
	}

	return out, nil
}
