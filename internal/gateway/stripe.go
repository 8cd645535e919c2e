package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"
)

// StripeGateway adapts the Stripe API to the Gateway contract. The client is
// constructed once with its credentials and passed by reference; there is no
// package-level API key.
type StripeGateway struct {
	sc  *client.API
	log *zap.Logger
}

var _ Gateway = (*StripeGateway)(nil)

// NewStripeGateway builds a client with a bounded per-call timeout and a
// single network retry for transient failures.
func NewStripeGateway(secretKey string, timeout time.Duration, log *zap.Logger) *StripeGateway {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(1),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	})

	sc := client.New(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &StripeGateway{
		sc:  sc,
		log: log.With(zap.String("gateway", "stripe")),
	}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount float64, currency, customerRef, description string, mode CaptureMode) (*PaymentIntentRef, error) {
	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(MinorUnits(amount)),
		Currency:      stripe.String(strings.ToLower(currency)),
		Description:   stripe.String(description),
		CaptureMethod: stripe.String(captureMethod(mode)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if customerRef != "" {
		params.Customer = stripe.String(customerRef)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, g.wrap("create payment intent", err)
	}

	g.log.Info("Payment intent created",
		zap.String("intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
		zap.Int64("amount_minor", pi.Amount),
	)
	return intentRef(pi), nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in SessionInput) (*SessionRef, error) {
	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(in.BookingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(in.Currency)),
					UnitAmount: stripe.Int64(MinorUnits(in.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.Description),
					},
				},
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			CaptureMethod: stripe.String(captureMethod(in.CaptureMode)),
		},
	}
	if in.CustomerRef != "" {
		params.Customer = stripe.String(in.CustomerRef)
	}
	if in.FutureUsage != "" {
		params.PaymentIntentData.SetupFutureUsage = stripe.String(in.FutureUsage)
	}

	sess, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, g.wrap("create checkout session", err)
	}

	g.log.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("booking_id", in.BookingID),
	)
	return sessionRef(sess), nil
}

func (g *StripeGateway) ConfirmPaymentIntent(ctx context.Context, intentID, methodRef string) (*PaymentIntentRef, error) {
	params := &stripe.PaymentIntentConfirmParams{
		Params: stripe.Params{Context: ctx},
	}
	if methodRef != "" {
		params.PaymentMethod = stripe.String(methodRef)
	}

	pi, err := g.sc.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return nil, g.wrap("confirm payment intent", err)
	}
	return intentRef(pi), nil
}

func (g *StripeGateway) CapturePayment(ctx context.Context, intentID string, amount *float64) (*PaymentIntentRef, error) {
	params := &stripe.PaymentIntentCaptureParams{
		Params: stripe.Params{Context: ctx},
	}
	if amount != nil {
		params.AmountToCapture = stripe.Int64(MinorUnits(*amount))
	}

	pi, err := g.sc.PaymentIntents.Capture(intentID, params)
	if err != nil {
		return nil, g.wrap("capture payment", err)
	}

	g.log.Info("Payment captured",
		zap.String("intent_id", pi.ID),
		zap.Int64("amount_received_minor", pi.AmountReceived),
	)
	return intentRef(pi), nil
}

func (g *StripeGateway) VoidPayment(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{
		Params: stripe.Params{Context: ctx},
	}

	if _, err := g.sc.PaymentIntents.Cancel(intentID, params); err != nil {
		return g.wrap("void payment", err)
	}

	g.log.Info("Payment voided", zap.String("intent_id", intentID))
	return nil
}

func (g *StripeGateway) CreateRefund(ctx context.Context, intentID string, amount *float64, reason string) (*RefundRef, error) {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(intentID),
	}
	if amount != nil {
		params.Amount = stripe.Int64(MinorUnits(*amount))
	}
	if reason != "" {
		params.Reason = stripe.String(reason)
	}

	ref, err := g.sc.Refunds.New(params)
	if err != nil {
		return nil, g.wrap("create refund", err)
	}

	g.log.Info("Refund created",
		zap.String("refund_id", ref.ID),
		zap.String("intent_id", intentID),
		zap.Int64("amount_minor", ref.Amount),
	)
	return &RefundRef{ID: ref.ID, Status: string(ref.Status), AmountMinor: ref.Amount}, nil
}

func (g *StripeGateway) RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntentRef, error) {
	pi, err := g.sc.PaymentIntents.Get(intentID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, g.wrap("retrieve payment intent", err)
	}
	return intentRef(pi), nil
}

func (g *StripeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*SessionRef, error) {
	sess, err := g.sc.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, g.wrap("retrieve checkout session", err)
	}
	return sessionRef(sess), nil
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}

	cus, err := g.sc.Customers.New(params)
	if err != nil {
		return "", g.wrap("create customer", err)
	}
	return cus.ID, nil
}

func captureMethod(mode CaptureMode) string {
	if mode == CaptureModeManual {
		return string(stripe.PaymentIntentCaptureMethodManual)
	}
	return string(stripe.PaymentIntentCaptureMethodAutomatic)
}

func intentRef(pi *stripe.PaymentIntent) *PaymentIntentRef {
	ref := &PaymentIntentRef{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		Description:  pi.Description,
	}
	if pi.Customer != nil {
		ref.CustomerRef = pi.Customer.ID
	}
	return ref
}

func sessionRef(sess *stripe.CheckoutSession) *SessionRef {
	ref := &SessionRef{
		ID:            sess.ID,
		URL:           sess.URL,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
	}
	if sess.PaymentIntent != nil {
		ref.PaymentIntentID = sess.PaymentIntent.ID
	}
	return ref
}

// wrap classifies a Stripe failure into the adapter's error taxonomy.
// 5xx and rate limits are retryable; auth and request errors are not.
func (g *StripeGateway) wrap(op string, err error) error {
	ge := &Error{Op: op, Kind: ErrKindUnavailable, Retryable: true, cause: err}

	var serr *stripe.Error
	if stripeErr, ok := err.(*stripe.Error); ok {
		serr = stripeErr
	}
	if serr != nil {
		ge.UpstreamCode = string(serr.Code)
		switch {
		case serr.HTTPStatusCode == http.StatusTooManyRequests:
			ge.Kind, ge.Retryable = ErrKindRateLimited, true
		case serr.HTTPStatusCode >= 500:
			ge.Kind, ge.Retryable = ErrKindUnavailable, true
		case serr.HTTPStatusCode == http.StatusUnauthorized || serr.HTTPStatusCode == http.StatusForbidden:
			ge.Kind, ge.Retryable = ErrKindUnauthorized, false
		case serr.HTTPStatusCode == http.StatusNotFound:
			ge.Kind, ge.Retryable = ErrKindNotFound, false
		default:
			ge.Kind, ge.Retryable = ErrKindInvalidRequest, false
		}
	}

	g.log.Error("Gateway call failed",
		zap.String("op", op),
		zap.String("kind", string(ge.Kind)),
		zap.Bool("retryable", ge.Retryable),
		zap.String("upstream_code", ge.UpstreamCode),
		zap.Error(err),
	)
	return ge
}
