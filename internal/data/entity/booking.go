package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingKind string

const (
	BookingKindEvent   BookingKind = "event"
	BookingKindVenue   BookingKind = "venue"
	BookingKindService BookingKind = "service"
)

// ParseBookingKind maps a URL/path segment to a kind.
func ParseBookingKind(s string) (BookingKind, bool) {
	switch BookingKind(s) {
	case BookingKindEvent, BookingKindVenue, BookingKindService:
		return BookingKind(s), true
	}
	return "", false
}

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusAuthorized BookingStatus = "authorized"
	BookingStatusAccepted   BookingStatus = "accepted"
	BookingStatusRejected   BookingStatus = "rejected"
	BookingStatusBooked     BookingStatus = "booked"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusFailed     BookingStatus = "failed"
)

// IsTerminal reports whether no further trigger is accepted from this status.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCancelled, BookingStatusRejected, BookingStatusFailed:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusAuthorized        PaymentStatus = "authorized"
	PaymentStatusCaptured          PaymentStatus = "captured"
	PaymentStatusVoided            PaymentStatus = "voided"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRequiresAction    PaymentStatus = "requires_action"
	PaymentStatusExpired           PaymentStatus = "expired"
)

// Booking tracks a reservation of a resource (event ticket, venue or
// service) together with its payment lifecycle at the external processor.
//
// Status and PayStatus move only through lifecycle.Apply; the external
// payment/session IDs are set once and act as the idempotency anchors for
// webhook reconciliation.
type Booking struct {
	Base
	Kind       BookingKind   `db:"kind"`
	ResourceID uuid.UUID     `db:"resource_id"`
	Status     BookingStatus `db:"status"`
	PayStatus  PaymentStatus `db:"payment_status"`

	// Amount in major currency units; converted to minor units only at
	// the gateway boundary.
	Amount   float64 `db:"amount"`
	Currency string  `db:"currency"`

	CustomerEmail string `db:"customer_email"`
	Description   string `db:"description"`

	ExternalPaymentID *string `db:"external_payment_id"`
	ExternalSessionID *string `db:"external_session_id"`

	RefundAmount      *float64   `db:"refund_amount"`
	RefundProcessedAt *time.Time `db:"refund_processed_at"`

	CancellationReason *string    `db:"cancellation_reason"`
	CancelledAt        *time.Time `db:"cancelled_at"`
	CancelledBy        *string    `db:"cancelled_by"`
}

// RefundedSoFar returns the accumulated refund amount, zero when none.
func (b *Booking) RefundedSoFar() float64 {
	if b.RefundAmount == nil {
		return 0
	}
	return *b.RefundAmount
}
