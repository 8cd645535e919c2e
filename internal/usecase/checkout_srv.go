package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"booking-payments/internal/data/entity"
	"booking-payments/internal/data/repository"
	"booking-payments/internal/dto/request"
	"booking-payments/internal/dto/response"
	"booking-payments/internal/events"
	"booking-payments/internal/gateway"
	"booking-payments/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CheckoutService interface {
	// CreateBooking runs the full checkout sequence: validate, resolve the
	// resource, ensure a gateway customer, open the payment, persist the
	// booking. Any step failing means no booking row exists afterwards.
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.CheckoutResponse, error)
}

type checkoutService struct {
	repo      *repository.Repository
	gw        gateway.Gateway
	customers CustomerDirectory
	sink      events.Sink
	config    *utils.Config
	log       *zap.Logger
}

func NewCheckoutService(repo *repository.Repository, gw gateway.Gateway, customers CustomerDirectory, sink events.Sink, config *utils.Config, log *zap.Logger) CheckoutService {
	return &checkoutService{
		repo:      repo,
		gw:        gw,
		customers: customers,
		sink:      sink,
		config:    config,
		log:       log.With(zap.String("service", "checkout")),
	}
}

func (s *checkoutService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.CheckoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	kind, ok := entity.ParseBookingKind(req.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown booking kind %s", ErrValidation, req.Kind)
	}

	resourceID, err := uuid.Parse(req.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid resource ID %s", ErrValidation, req.ResourceID)
	}

	resource, err := s.repo.Resource.FindByID(ctx, kind, resourceID)
	if err != nil {
		return nil, fmt.Errorf("find resource: %w", err)
	}
	if resource == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrResourceNotFound, req.Kind, req.ResourceID)
	}
	if !resource.Active {
		return nil, fmt.Errorf("%w: resource %s is not bookable", ErrValidation, resource.Name)
	}

	amount := resource.Price
	if req.Amount != nil {
		amount = *req.Amount
	}
	currency := resource.Currency
	if req.Currency != "" {
		currency = strings.ToLower(req.Currency)
	}

	customerRef, err := s.customers.EnsureCustomer(ctx, req.CustomerEmail, req.CustomerName)
	if err != nil {
		return nil, err
	}

	captureMode := gateway.CaptureModeAutomatic
	if req.CaptureMode == string(gateway.CaptureModeManual) {
		captureMode = gateway.CaptureModeManual
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%s booking: %s", kind, resource.Name)
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Kind:          kind,
		ResourceID:    resourceID,
		Status:        entity.BookingStatusPending,
		PayStatus:     entity.PaymentStatusPending,
		Amount:        amount,
		Currency:      currency,
		CustomerEmail: req.CustomerEmail,
		Description:   description,
	}

	resp := &response.CheckoutResponse{}

	// Gateway first: if the processor rejects the payment there must be
	// nothing to clean up on our side.
	switch req.Flow {
	case "intent":
		intent, err := s.gw.CreatePaymentIntent(ctx, amount, currency, customerRef, description, captureMode)
		if err != nil {
			s.log.Error("Payment intent creation failed", zap.Error(err))
			return nil, err
		}
		booking.ExternalPaymentID = &intent.ID
		resp.Intent = &response.PaymentIntentResponse{
			IntentID:         intent.ID,
			ClientSecret:     intent.ClientSecret,
			Status:           intent.Status,
			AmountMinorUnits: intent.AmountMinor,
			Currency:         intent.Currency,
			CustomerRef:      intent.CustomerRef,
			Description:      intent.Description,
		}
		resp.PaymentURL = s.paymentURL(booking.ID.String(), intent.ClientSecret)

	default: // hosted session
		session, err := s.gw.CreateCheckoutSession(ctx, gateway.SessionInput{
			CustomerRef: customerRef,
			Amount:      amount,
			Currency:    currency,
			Description: description,
			BookingID:   booking.ID.String(),
			CaptureMode: captureMode,
			FutureUsage: req.FutureUsage,
		})
		if err != nil {
			s.log.Error("Checkout session creation failed", zap.Error(err))
			return nil, err
		}
		booking.ExternalSessionID = &session.ID
		if session.PaymentIntentID != "" {
			pid := session.PaymentIntentID
			booking.ExternalPaymentID = &pid
		}
		resp.Session = &response.CheckoutSessionResponse{
			SessionID: session.ID,
			URL:       session.URL,
		}
		resp.PaymentURL = session.URL
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		// The gateway object is orphaned; it expires on its own and the
		// webhook processor drops events with no matching booking.
		s.log.Error("Failed to persist booking",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("kind", string(kind)),
		zap.Float64("amount", amount),
		zap.String("currency", currency))

	s.emit(ctx, events.TypeBookingCreated, booking)

	resp.Booking = response.BookingToResponse(booking)
	return resp, nil
}

func (s *checkoutService) paymentURL(bookingID, clientSecret string) string {
	url := strings.ReplaceAll(s.config.Stripe.PaymentURLTemplate, "{booking_id}", bookingID)
	return strings.ReplaceAll(url, "{client_secret}", clientSecret)
}

func (s *checkoutService) emit(ctx context.Context, eventType string, b *entity.Booking) {
	if err := s.sink.Publish(ctx, events.FromBooking(eventType, b)); err != nil {
		s.log.Warn("Domain event publish failed",
			zap.String("type", eventType),
			zap.String("booking_id", b.ID.String()),
			zap.Error(err))
	}
}
