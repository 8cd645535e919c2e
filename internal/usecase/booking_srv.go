package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-payments/internal/data/entity"
	"booking-payments/internal/data/repository"
	"booking-payments/internal/dto/request"
	"booking-payments/internal/dto/response"
	"booking-payments/internal/events"
	"booking-payments/internal/gateway"
	"booking-payments/internal/lifecycle"
	"booking-payments/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, email string, req *request.PaginatedRequest) ([]*response.BookingResponse, error)

	// Admin lifecycle operations. Each one talks to the payment gateway
	// first and only then moves the booking, under a row lock.
	Accept(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	Reject(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	Capture(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	Void(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	Refund(ctx context.Context, bookingID string, req *request.RefundBookingRequest) (*response.BookingResponse, error)
	Cancel(ctx context.Context, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error)
}

type bookingService struct {
	repo *repository.Repository
	gw   gateway.Gateway
	sink events.Sink
	log  *zap.Logger
}

func NewBookingService(repo *repository.Repository, gw gateway.Gateway, sink events.Sink, log *zap.Logger) BookingService {
	return &bookingService{
		repo: repo,
		gw:   gw,
		sink: sink,
		log:  log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return response.BookingToResponse(booking), nil
}

func (s *bookingService) ListBookings(ctx context.Context, email string, req *request.PaginatedRequest) ([]*response.BookingResponse, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	bookings, err := s.repo.Booking.FindByCustomerEmail(ctx, email, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	result := make([]*response.BookingResponse, len(bookings))
	for i, b := range bookings {
		result[i] = response.BookingToResponse(b)
	}
	return result, nil
}

func (s *bookingService) Accept(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, bookingID, lifecycle.ProviderAccepted(), events.TypeBookingAccepted)
}

func (s *bookingService) Reject(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, bookingID, lifecycle.ProviderRejected(), events.TypeBookingRejected)
}

func (s *bookingService) Capture(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	// Validate before spending a gateway call.
	if _, err := lifecycle.Apply(*booking, lifecycle.CaptureRequested(), time.Now()); err != nil {
		return nil, err
	}
	pid, err := paymentID(booking)
	if err != nil {
		return nil, err
	}

	if _, err := s.gw.CapturePayment(ctx, pid, nil); err != nil {
		s.log.Error("Capture failed at gateway",
			zap.String("booking_id", bookingID),
			zap.Error(err))
		return nil, err
	}

	return s.transition(ctx, bookingID, lifecycle.CaptureSucceeded(), events.TypeBookingBooked)
}

func (s *bookingService) Void(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := lifecycle.Apply(*booking, lifecycle.VoidRequested(), time.Now()); err != nil {
		return nil, err
	}
	pid, err := paymentID(booking)
	if err != nil {
		return nil, err
	}

	if err := s.gw.VoidPayment(ctx, pid); err != nil {
		s.log.Error("Void failed at gateway",
			zap.String("booking_id", bookingID),
			zap.Error(err))
		return nil, err
	}

	return s.transition(ctx, bookingID, lifecycle.VoidRequested(), events.TypeBookingCancelled)
}

func (s *bookingService) Refund(ctx context.Context, bookingID string, req *request.RefundBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	amount := 0.0 // zero means refund the remainder
	if req.Amount != nil {
		amount = *req.Amount
	}
	trigger := lifecycle.RefundRequested(amount, req.Reason)

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	// Enforce the refund bound before any money moves.
	if _, err := lifecycle.Apply(*booking, trigger, time.Now()); err != nil {
		return nil, err
	}
	pid, err := paymentID(booking)
	if err != nil {
		return nil, err
	}

	if _, err := s.gw.CreateRefund(ctx, pid, req.Amount, req.Reason); err != nil {
		s.log.Error("Refund failed at gateway",
			zap.String("booking_id", bookingID),
			zap.Error(err))
		return nil, err
	}

	return s.transition(ctx, bookingID, trigger, events.TypeBookingRefunded)
}

func (s *bookingService) Cancel(ctx context.Context, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := lifecycle.Apply(*booking, lifecycle.CancelledByUser(req.Reason, req.CancelledBy), time.Now()); err != nil {
		return nil, err
	}

	// Unwind the money first. Which gateway call (if any) depends on how
	// far the payment got.
	switch booking.PayStatus {
	case entity.PaymentStatusCaptured, entity.PaymentStatusPartiallyRefunded:
		pid, err := paymentID(booking)
		if err != nil {
			return nil, err
		}
		if _, err := s.gw.CreateRefund(ctx, pid, nil, "requested_by_customer"); err != nil {
			s.log.Error("Cancellation refund failed at gateway",
				zap.String("booking_id", bookingID),
				zap.Error(err))
			return nil, err
		}
		if booking.PayStatus == entity.PaymentStatusPartiallyRefunded {
			// Remainder refund closes the booking out.
			return s.transition(ctx, bookingID,
				lifecycle.RefundRequested(0, req.Reason), events.TypeBookingCancelled)
		}

	case entity.PaymentStatusAuthorized:
		pid, err := paymentID(booking)
		if err != nil {
			return nil, err
		}
		if err := s.gw.VoidPayment(ctx, pid); err != nil {
			s.log.Error("Cancellation void failed at gateway",
				zap.String("booking_id", bookingID),
				zap.Error(err))
			return nil, err
		}
		return s.transition(ctx, bookingID,
			lifecycle.Trigger{Type: lifecycle.TriggerVoidRequested, Reason: req.Reason, Actor: req.CancelledBy},
			events.TypeBookingCancelled)
	}

	return s.transition(ctx, bookingID,
		lifecycle.CancelledByUser(req.Reason, req.CancelledBy), events.TypeBookingCancelled)
}

// transition applies the trigger under the row lock and publishes the domain
// event after the transaction commits.
func (s *bookingService) transition(ctx context.Context, bookingID string, trigger lifecycle.Trigger, eventType string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking ID %s", ErrValidation, bookingID)
	}

	updated, err := s.repo.Booking.Mutate(ctx, id, func(b *entity.Booking) error {
		next, err := lifecycle.Apply(*b, trigger, time.Now())
		if err != nil {
			return err
		}
		*b = next
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return nil, err
	}

	s.log.Info("Booking transitioned",
		zap.String("booking_id", bookingID),
		zap.String("trigger", string(trigger.Type)),
		zap.String("status", string(updated.Status)),
		zap.String("payment_status", string(updated.PayStatus)))

	if err := s.sink.Publish(ctx, events.FromBooking(eventType, updated)); err != nil {
		s.log.Warn("Domain event publish failed",
			zap.String("type", eventType),
			zap.String("booking_id", bookingID),
			zap.Error(err))
	}

	return response.BookingToResponse(updated), nil
}

func (s *bookingService) loadBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking ID %s", ErrValidation, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
	}
	return booking, nil
}

func paymentID(b *entity.Booking) (string, error) {
	if b.ExternalPaymentID == nil || *b.ExternalPaymentID == "" {
		return "", fmt.Errorf("%w: booking %s", ErrMissingPaymentID, b.ID)
	}
	return *b.ExternalPaymentID, nil
}
