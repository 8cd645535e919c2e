package response

import (
	"time"

	"booking-payments/internal/data/entity"
)

type BookingResponse struct {
	ID                 string     `json:"id"`
	Kind               string     `json:"kind"`
	ResourceID         string     `json:"resource_id"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"payment_status"`
	Amount             float64    `json:"amount"`
	Currency           string     `json:"currency"`
	CustomerEmail      string     `json:"customer_email"`
	Description        string     `json:"description,omitempty"`
	ExternalPaymentID  *string    `json:"external_payment_id,omitempty"`
	ExternalSessionID  *string    `json:"external_session_id,omitempty"`
	RefundAmount       *float64   `json:"refund_amount,omitempty"`
	RefundProcessedAt  *time.Time `json:"refund_processed_at,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy        *string    `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func BookingToResponse(b *entity.Booking) *BookingResponse {
	return &BookingResponse{
		ID:                 b.ID.String(),
		Kind:               string(b.Kind),
		ResourceID:         b.ResourceID.String(),
		Status:             string(b.Status),
		PaymentStatus:      string(b.PayStatus),
		Amount:             b.Amount,
		Currency:           b.Currency,
		CustomerEmail:      b.CustomerEmail,
		Description:        b.Description,
		ExternalPaymentID:  b.ExternalPaymentID,
		ExternalSessionID:  b.ExternalSessionID,
		RefundAmount:       b.RefundAmount,
		RefundProcessedAt:  b.RefundProcessedAt,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CancelledBy:        b.CancelledBy,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// PaymentIntentResponse is returned on the client-side confirmation flow.
type PaymentIntentResponse struct {
	IntentID         string `json:"intent_id"`
	ClientSecret     string `json:"client_secret"`
	Status           string `json:"status"`
	AmountMinorUnits int64  `json:"amount_minor_units"`
	Currency         string `json:"currency"`
	CustomerRef      string `json:"customer_ref,omitempty"`
	Description      string `json:"description,omitempty"`
}

// CheckoutSessionResponse is returned on the hosted-page flow.
type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type CheckoutResponse struct {
	Booking    *BookingResponse         `json:"booking"`
	PaymentURL string                   `json:"payment_url"`
	Intent     *PaymentIntentResponse   `json:"intent,omitempty"`
	Session    *CheckoutSessionResponse `json:"session,omitempty"`
}
