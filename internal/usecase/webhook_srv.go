package usecase

import (
	"context"
	"errors"
	"time"

	"booking-payments/internal/data/entity"
	"booking-payments/internal/data/repository"
	"booking-payments/internal/events"
	"booking-payments/internal/gateway"
	"booking-payments/internal/lifecycle"
	"booking-payments/pkg/utils"

	"go.uber.org/zap"
)

type WebhookService interface {
	// ProcessEvent verifies, deduplicates and applies one gateway
	// notification. A nil return means the delivery may be acked;
	// the gateway retries on anything else.
	ProcessEvent(ctx context.Context, kind entity.BookingKind, payload []byte, sigHeader string) error
}

type webhookService struct {
	repo   *repository.Repository
	sink   events.Sink
	config *utils.Config
	log    *zap.Logger
}

func NewWebhookService(repo *repository.Repository, sink events.Sink, config *utils.Config, log *zap.Logger) WebhookService {
	return &webhookService{
		repo:   repo,
		sink:   sink,
		config: config,
		log:    log.With(zap.String("service", "webhook")),
	}
}

func (s *webhookService) ProcessEvent(ctx context.Context, kind entity.BookingKind, payload []byte, sigHeader string) error {
	ev, err := gateway.ParseWebhookEvent(payload, sigHeader,
		s.config.Stripe.WebhookSecret, s.config.Stripe.WebhookStrict)
	if err != nil {
		return err
	}

	log := s.log.With(
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type))

	trigger, ok := s.triggerFor(ev)
	if !ok {
		log.Debug("Ignoring event type")
		return nil
	}

	// Fast-path dedup; the authoritative check is the insert inside the
	// booking transaction.
	seen, err := s.repo.WebhookEvent.Exists(ctx, ev.ID)
	if err != nil {
		return err
	}
	if seen {
		log.Debug("Duplicate event, already processed")
		return nil
	}

	booking, err := s.resolveBooking(ctx, ev)
	if err != nil {
		return err
	}

	record := &entity.WebhookEvent{
		EventID:     ev.ID,
		EventType:   ev.Type,
		Kind:        kind,
		ProcessedAt: time.Now(),
	}

	if booking == nil {
		// Nothing to apply it to; log the event so redeliveries stay
		// cheap, and ack so the gateway stops retrying.
		log.Warn("No booking matches event, dropping")
		return s.repo.WebhookEvent.Record(ctx, record)
	}
	record.BookingID = &booking.ID

	var changed bool
	updated, err := s.repo.Booking.MutateForEvent(ctx, booking.ID, record, func(b *entity.Booking) error {
		// Session events carry the payment intent the session settled
		// into; anchor it so later intent-only events resolve.
		if ev.PaymentIntent != nil && b.ExternalPaymentID == nil {
			pid := ev.PaymentIntent.ID
			b.ExternalPaymentID = &pid
		}

		next, err := lifecycle.Apply(*b, trigger, time.Now())
		if err != nil {
			return err
		}
		changed = next.Status != b.Status || next.PayStatus != b.PayStatus
		*b = next
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventAlreadyProcessed):
			log.Debug("Duplicate event, lost the race")
			return nil
		case errors.Is(err, repository.ErrNotFound):
			log.Warn("Booking disappeared while processing event")
			return s.repo.WebhookEvent.Record(ctx, record)
		default:
			return err
		}
	}

	log.Info("Event applied",
		zap.String("booking_id", booking.ID.String()),
		zap.String("trigger", string(trigger.Type)),
		zap.String("status", string(updated.Status)),
		zap.String("payment_status", string(updated.PayStatus)))

	if !changed {
		return nil
	}
	if eventType := outboundType(updated); eventType != "" {
		if err := s.sink.Publish(ctx, events.FromBooking(eventType, updated)); err != nil {
			log.Warn("Domain event publish failed",
				zap.String("type", eventType),
				zap.Error(err))
		}
	}
	return nil
}

// triggerFor maps a gateway notification onto a state machine trigger.
// Event types with no mapping are acknowledged without side effects.
func (s *webhookService) triggerFor(ev *gateway.Event) (lifecycle.Trigger, bool) {
	switch ev.Type {
	case "payment_intent.succeeded":
		return lifecycle.PaymentSucceeded(), true
	case "payment_intent.payment_failed":
		return lifecycle.PaymentFailed(ev.FailureReason), true
	case "payment_intent.canceled":
		return lifecycle.VoidRequested(), true
	case "payment_intent.requires_action":
		return lifecycle.PaymentRequiresAction(), true
	case "payment_intent.amount_capturable_updated":
		// Manual-capture intents report authorization through this event.
		return lifecycle.AuthorizedByGateway(), true

	case "checkout.session.completed":
		// Prefer the embedded intent's status; a completed session with a
		// manual-capture intent is authorized, not paid.
		if ev.PaymentIntent != nil {
			switch ev.PaymentIntent.Status {
			case "succeeded":
				return lifecycle.PaymentSucceeded(), true
			case "requires_capture":
				return lifecycle.AuthorizedByGateway(), true
			case "requires_action":
				return lifecycle.PaymentRequiresAction(), true
			}
			return lifecycle.Trigger{}, false
		}
		if ev.Session != nil {
			switch ev.Session.PaymentStatus {
			case "paid", "no_payment_required":
				return lifecycle.PaymentSucceeded(), true
			}
		}
		return lifecycle.Trigger{}, false

	case "checkout.session.async_payment_succeeded":
		return lifecycle.PaymentSucceeded(), true
	case "checkout.session.async_payment_failed":
		return lifecycle.PaymentFailed(ev.FailureReason), true
	case "checkout.session.expired":
		return lifecycle.SessionExpired(), true
	}
	return lifecycle.Trigger{}, false
}

// resolveBooking finds the booking an event belongs to, session ID first
// since sessions are created before their payment intent is attached.
func (s *webhookService) resolveBooking(ctx context.Context, ev *gateway.Event) (*entity.Booking, error) {
	if ev.Session != nil {
		booking, err := s.repo.Booking.FindByExternalSessionID(ctx, ev.Session.ID)
		if err != nil || booking != nil {
			return booking, err
		}
	}
	if ev.PaymentIntent != nil {
		return s.repo.Booking.FindByExternalPaymentID(ctx, ev.PaymentIntent.ID)
	}
	return nil, nil
}

// outboundType picks the domain event announcing the state a booking just
// reached. Intermediate payment states publish nothing.
func outboundType(b *entity.Booking) string {
	switch b.Status {
	case entity.BookingStatusAccepted:
		return events.TypeBookingAccepted
	case entity.BookingStatusRejected:
		return events.TypeBookingRejected
	case entity.BookingStatusBooked:
		if b.PayStatus == entity.PaymentStatusPartiallyRefunded {
			return events.TypeBookingRefunded
		}
		return events.TypeBookingBooked
	case entity.BookingStatusCancelled:
		if b.PayStatus == entity.PaymentStatusRefunded || b.PayStatus == entity.PaymentStatusPartiallyRefunded {
			return events.TypeBookingRefunded
		}
		return events.TypeBookingCancelled
	case entity.BookingStatusFailed:
		return events.TypeBookingFailed
	}
	return ""
}
