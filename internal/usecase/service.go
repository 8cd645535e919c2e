package usecase

import (
	"booking-payments/internal/data/repository"
	"booking-payments/internal/events"
	"booking-payments/internal/gateway"
	"booking-payments/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Checkout CheckoutService
	Booking  BookingService
	Webhook  WebhookService
}

func NewService(repo *repository.Repository, gw gateway.Gateway, sink events.Sink, config *utils.Config, log *zap.Logger) *Service {
	customers := NewCustomerDirectory(repo.Customer, gw, log)

	return &Service{
		Checkout: NewCheckoutService(repo, gw, customers, sink, config, log),
		Booking:  NewBookingService(repo, gw, sink, log),
		Webhook:  NewWebhookService(repo, sink, config, log),
	}
}
