package adaptor

import (
	"errors"
	"io"
	"net/http"

	"booking-payments/internal/data/entity"
	"booking-payments/internal/gateway"
	"booking-payments/internal/lifecycle"
	"booking-payments/internal/usecase"
	"booking-payments/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxWebhookBody caps the payload read; Stripe events are well under this.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	service usecase.WebhookService
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.WebhookService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// HandleEvent handles POST /api/{kind}/webhook. The response code drives
// the gateway's retry behavior: 2xx acks, 4xx drops, 5xx redelivers.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	kind, ok := entity.ParseBookingKind(chi.URLParam(r, "kind"))
	if !ok {
		utils.ResponseNotFound(w, "Unknown booking kind")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Cannot read request body", nil)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if sigHeader == "" {
		sigHeader = r.Header.Get("X-Signature")
	}

	if err := h.service.ProcessEvent(r.Context(), kind, payload, sigHeader); err != nil {
		h.handleProcessingError(w, err)
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

func (h *WebhookHandler) handleProcessingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateway.ErrSignatureInvalid):
		h.log.Warn("Webhook signature rejected", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid signature", nil)

	case errors.Is(err, gateway.ErrMalformedEvent):
		h.log.Warn("Malformed webhook payload", zap.Error(err))
		utils.ResponseBadRequest(w, "Malformed event", nil)

	case errors.Is(err, lifecycle.ErrInvalidTransition):
		// Out-of-order delivery; a retry cannot make it legal.
		h.log.Warn("Event conflicts with booking state", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	default:
		// Transient (database down, etc); ask the gateway to redeliver.
		h.log.Error("Webhook processing failed", zap.Error(err))
		utils.ResponseInternalError(w, "Processing failed")
	}
}
