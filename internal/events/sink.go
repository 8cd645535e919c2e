package events

import (
	"context"
	"time"

	"booking-payments/internal/data/entity"

	"go.uber.org/zap"
)

// Event types published after a committed state change.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingAccepted  = "booking.accepted"
	TypeBookingRejected  = "booking.rejected"
	TypeBookingBooked    = "booking.booked"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingFailed    = "booking.failed"
	TypeBookingRefunded  = "booking.refunded"
)

// DomainEvent is the envelope handed to the notification collaborator.
type DomainEvent struct {
	Type       string               `json:"type"`
	Version    int                  `json:"version"`
	OccurredAt time.Time            `json:"occurred_at"`
	BookingID  string               `json:"booking_id"`
	Kind       entity.BookingKind   `json:"kind"`
	Status     entity.BookingStatus `json:"status"`
	PayStatus  entity.PaymentStatus `json:"payment_status"`
	Amount     float64              `json:"amount"`
	Currency   string               `json:"currency"`
	Email      string               `json:"customer_email,omitempty"`
}

// Sink fans domain events out to the notification collaborator. Emission is
// best effort and happens only after the state change is committed; a
// publish failure never rolls anything back.
type Sink interface {
	Publish(ctx context.Context, evt DomainEvent) error
	Close() error
}

// FromBooking builds the envelope for a booking's current state.
func FromBooking(eventType string, b *entity.Booking) DomainEvent {
	return DomainEvent{
		Type:       eventType,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		BookingID:  b.ID.String(),
		Kind:       b.Kind,
		Status:     b.Status,
		PayStatus:  b.PayStatus,
		Amount:     b.Amount,
		Currency:   b.Currency,
		Email:      b.CustomerEmail,
	}
}

// LogSink is the fallback when no broker is configured: events land in the
// log instead of being dropped silently.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log.With(zap.String("sink", "log"))}
}

func (s *LogSink) Publish(_ context.Context, evt DomainEvent) error {
	s.log.Info("Domain event (broker disabled)",
		zap.String("type", evt.Type),
		zap.String("booking_id", evt.BookingID),
		zap.String("status", string(evt.Status)),
		zap.String("payment_status", string(evt.PayStatus)),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
