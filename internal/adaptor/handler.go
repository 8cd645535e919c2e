package adaptor

import (
	"booking-payments/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Booking *BookingHandler
	Webhook *WebhookHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking: NewBookingHandler(service.Checkout, service.Booking, log),
		Webhook: NewWebhookHandler(service.Webhook, log),
	}
}
