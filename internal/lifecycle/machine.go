package lifecycle

import (
	"errors"
	"fmt"
	"math"
	"time"

	"booking-payments/internal/data/entity"
)

// ErrInvalidTransition is wrapped by every rejection so callers can match
// with errors.Is without inspecting the detail.
var ErrInvalidTransition = errors.New("invalid transition")

type InvalidTransitionError struct {
	Status    entity.BookingStatus
	PayStatus entity.PaymentStatus
	Trigger   TriggerType
	Detail    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: trigger %s from %s/%s: %s",
		e.Trigger, e.Status, e.PayStatus, e.Detail)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

func invalid(b entity.Booking, tr Trigger, detail string) error {
	return &InvalidTransitionError{
		Status:    b.Status,
		PayStatus: b.PayStatus,
		Trigger:   tr.Type,
		Detail:    detail,
	}
}

// cents converts a major-unit amount to minor units for comparison. Refund
// accounting is done in minor units so float noise cannot flip a full refund
// into a partial one.
func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Apply validates a trigger against the booking's current state and returns
// the booking after the transition. The input is taken by value and never
// mutated; callers persist the result themselves.
//
// Two rules make at-least-once webhook delivery safe:
//   - a trigger whose outcome equals the current (status, payment status)
//     pair is a no-op success, not an error;
//   - from a terminal status every other trigger is rejected with
//     ErrInvalidTransition.
func Apply(b entity.Booking, tr Trigger, now time.Time) (entity.Booking, error) {
	switch tr.Type {
	case TriggerRefundRequested:
		return applyRefund(b, tr, now)
	case TriggerCaptureRequested:
		// Pre-flight validation for the capture API call; the state
		// itself only moves on CaptureSucceeded.
		if b.Status == entity.BookingStatusPending && b.PayStatus == entity.PaymentStatusAuthorized {
			return b, nil
		}
		return b, invalid(b, tr, "capture requires an authorized payment")
	}

	targetStatus, targetPay, known := target(b, tr)
	if !known {
		return b, invalid(b, tr, "unknown trigger")
	}
	if targetStatus == b.Status && targetPay == b.PayStatus {
		// Redelivered or duplicate event; already there.
		return b, nil
	}
	if b.Status.IsTerminal() {
		return b, invalid(b, tr, "terminal state")
	}

	switch tr.Type {
	case TriggerPaymentSucceeded:
		if b.Status != entity.BookingStatusPending && b.Status != entity.BookingStatusAccepted {
			return b, invalid(b, tr, "payment success only applies to pending or accepted bookings")
		}
	case TriggerCaptureSucceeded:
		if b.Status != entity.BookingStatusPending {
			return b, invalid(b, tr, "capture only applies to pending bookings")
		}
	case TriggerAuthorizedByGateway:
		if b.Status != entity.BookingStatusPending ||
			(b.PayStatus != entity.PaymentStatusPending && b.PayStatus != entity.PaymentStatusRequiresAction) {
			return b, invalid(b, tr, "authorization only applies to unpaid pending bookings")
		}
	case TriggerPaymentRequiresAction:
		if b.Status != entity.BookingStatusPending || b.PayStatus != entity.PaymentStatusPending {
			return b, invalid(b, tr, "requires-action only applies to unpaid pending bookings")
		}
	case TriggerProviderAccepted, TriggerProviderRejected:
		if b.Status != entity.BookingStatusPending {
			return b, invalid(b, tr, "provider decision only applies to pending bookings")
		}
	case TriggerVoidRequested:
		if b.PayStatus != entity.PaymentStatusAuthorized {
			return b, invalid(b, tr, "void requires an authorized payment")
		}
	case TriggerPaymentFailed, TriggerSessionExpired:
		if b.Status != entity.BookingStatusPending {
			return b, invalid(b, tr, "payment failure only applies to pending bookings")
		}
	case TriggerCancelledByUser:
		// Any non-terminal state may be cancelled.
	}

	b.Status = targetStatus
	b.PayStatus = targetPay
	b.UpdatedAt = now

	switch tr.Type {
	case TriggerVoidRequested, TriggerCancelledByUser:
		b.CancelledAt = &now
		if tr.Reason != "" {
			reason := tr.Reason
			b.CancellationReason = &reason
		}
		if tr.Actor != "" {
			actor := tr.Actor
			b.CancelledBy = &actor
		}
	}
	if tr.Type == TriggerCancelledByUser && targetPay == entity.PaymentStatusRefunded {
		// Cancelling a captured booking refunds the remainder in full.
		refunded := float64(cents(b.Amount)) / 100
		b.RefundAmount = &refunded
		b.RefundProcessedAt = &now
	}

	return b, nil
}

// target computes the (status, payment status) pair a trigger drives toward,
// independent of whether the move is legal from the current state. It exists
// so duplicate deliveries can be recognized as no-ops even after the booking
// has reached a terminal state.
func target(b entity.Booking, tr Trigger) (entity.BookingStatus, entity.PaymentStatus, bool) {
	switch tr.Type {
	case TriggerPaymentSucceeded, TriggerCaptureSucceeded:
		return entity.BookingStatusBooked, entity.PaymentStatusCaptured, true
	case TriggerAuthorizedByGateway:
		return b.Status, entity.PaymentStatusAuthorized, true
	case TriggerPaymentRequiresAction:
		return b.Status, entity.PaymentStatusRequiresAction, true
	case TriggerProviderAccepted:
		return entity.BookingStatusAccepted, entity.PaymentStatusPending, true
	case TriggerProviderRejected:
		return entity.BookingStatusRejected, b.PayStatus, true
	case TriggerVoidRequested:
		return entity.BookingStatusCancelled, entity.PaymentStatusVoided, true
	case TriggerPaymentFailed:
		return entity.BookingStatusFailed, entity.PaymentStatusFailed, true
	case TriggerSessionExpired:
		return entity.BookingStatusFailed, entity.PaymentStatusExpired, true
	case TriggerCancelledByUser:
		if b.PayStatus == entity.PaymentStatusCaptured {
			return entity.BookingStatusCancelled, entity.PaymentStatusRefunded, true
		}
		return entity.BookingStatusCancelled, b.PayStatus, true
	}
	return "", "", false
}

func applyRefund(b entity.Booking, tr Trigger, now time.Time) (entity.Booking, error) {
	if b.Status != entity.BookingStatusBooked {
		return b, invalid(b, tr, "refund only applies to booked bookings")
	}
	if b.PayStatus != entity.PaymentStatusCaptured && b.PayStatus != entity.PaymentStatusPartiallyRefunded {
		return b, invalid(b, tr, "refund requires a captured payment")
	}

	total := cents(b.Amount)
	refunded := cents(b.RefundedSoFar())
	remaining := total - refunded

	requested := cents(tr.Amount)
	if requested == 0 {
		requested = remaining
	}
	if requested <= 0 {
		return b, invalid(b, tr, "refund amount must be positive")
	}
	if requested > remaining {
		return b, invalid(b, tr,
			fmt.Sprintf("refund of %d exceeds remaining %d minor units", requested, remaining))
	}

	refunded += requested
	amount := float64(refunded) / 100
	b.RefundAmount = &amount
	b.RefundProcessedAt = &now
	b.UpdatedAt = now

	if refunded == total {
		b.Status = entity.BookingStatusCancelled
		b.PayStatus = entity.PaymentStatusRefunded
		b.CancelledAt = &now
		if tr.Reason != "" {
			reason := tr.Reason
			b.CancellationReason = &reason
		}
	} else {
		b.PayStatus = entity.PaymentStatusPartiallyRefunded
	}

	return b, nil
}
