package wire

import (
	"booking-payments/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, webhookHandler *adaptor.WebhookHandler) {
	// POST /api/{kind}/webhook - Gateway notifications. Authenticated by
	// signature, not by API key; the payload must reach the handler raw.
	r.Post("/api/{kind}/webhook", webhookHandler.HandleEvent)
}
