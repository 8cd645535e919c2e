package gateway

import (
	"context"
	"errors"
	"fmt"
)

// CaptureMode selects automatic capture at confirmation time versus
// authorize-only with a later explicit capture.
type CaptureMode string

const (
	CaptureModeAutomatic CaptureMode = "automatic"
	CaptureModeManual    CaptureMode = "manual"
)

// PaymentIntentRef is the processor's view of an attempted charge.
type PaymentIntentRef struct {
	ID           string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
	CustomerRef  string
	Description  string
}

// SessionRef is the processor's hosted checkout flow.
type SessionRef struct {
	ID              string
	URL             string
	Status          string
	PaymentStatus   string
	PaymentIntentID string
}

type RefundRef struct {
	ID          string
	Status      string
	AmountMinor int64
}

// SessionInput carries everything needed to open a hosted checkout session.
type SessionInput struct {
	CustomerRef string
	Amount      float64
	Currency    string
	Description string
	BookingID   string
	CaptureMode CaptureMode
	FutureUsage string
}

// Gateway wraps the payment processor's API. Pure protocol translation and
// error mapping; no business logic. Amounts cross this boundary as decimals
// and are converted to minor units exactly once, inside the implementation.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount float64, currency, customerRef, description string, mode CaptureMode) (*PaymentIntentRef, error)
	CreateCheckoutSession(ctx context.Context, in SessionInput) (*SessionRef, error)
	ConfirmPaymentIntent(ctx context.Context, intentID, methodRef string) (*PaymentIntentRef, error)
	CapturePayment(ctx context.Context, intentID string, amount *float64) (*PaymentIntentRef, error)
	VoidPayment(ctx context.Context, intentID string) error
	CreateRefund(ctx context.Context, intentID string, amount *float64, reason string) (*RefundRef, error)
	RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntentRef, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*SessionRef, error)
	CreateCustomer(ctx context.Context, email, name string) (string, error)
}

type ErrorKind string

const (
	ErrKindInvalidRequest ErrorKind = "invalid_request"
	ErrKindUnauthorized   ErrorKind = "unauthorized"
	ErrKindNotFound       ErrorKind = "not_found"
	ErrKindRateLimited    ErrorKind = "rate_limited"
	ErrKindUnavailable    ErrorKind = "unavailable"
)

// Error classifies an upstream processor failure. Retryable errors get one
// bounded retry at the transport layer before they surface here; callers
// must not retry non-retryable ones.
type Error struct {
	Op           string
	Kind         ErrorKind
	Retryable    bool
	UpstreamCode string
	cause        error
}

func (e *Error) Error() string {
	if e.UpstreamCode != "" {
		return fmt.Sprintf("gateway %s: %s (upstream %s): %v", e.Op, e.Kind, e.UpstreamCode, e.cause)
	}
	return fmt.Sprintf("gateway %s: %s: %v", e.Op, e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// IsRetryable reports whether err is a gateway error worth redelivering.
func IsRetryable(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Retryable
}
