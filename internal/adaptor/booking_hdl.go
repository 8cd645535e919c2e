package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"booking-payments/internal/dto/request"
	"booking-payments/internal/gateway"
	"booking-payments/internal/lifecycle"
	"booking-payments/internal/usecase"
	"booking-payments/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	checkout usecase.CheckoutService
	bookings usecase.BookingService
	log      *zap.Logger
}

func NewBookingHandler(checkout usecase.CheckoutService, bookings usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		checkout: checkout,
		bookings: bookings,
		log:      log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.checkout.CreateBooking(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", result)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// ListBookings handles GET /api/bookings?email=...
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	bookings, err := h.bookings.ListBookings(r.Context(), query.Get("email"), req)
	if err != nil {
		h.handleServiceError(w, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// Accept handles POST /api/admin/bookings/{id}/accept
func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "accept booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Reject handles POST /api/admin/bookings/{id}/reject
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "reject booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Capture handles POST /api/admin/bookings/{id}/capture
func (h *BookingHandler) Capture(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.Capture(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "capture payment")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Void handles POST /api/admin/bookings/{id}/void
func (h *BookingHandler) Void(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.Void(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "void payment")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Refund handles POST /api/admin/bookings/{id}/refund
func (h *BookingHandler) Refund(w http.ResponseWriter, r *http.Request) {
	// Body is optional; empty means refund the remainder.
	var req request.RefundBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.bookings.Refund(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "refund payment")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Cancel handles POST /api/admin/bookings/{id}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req request.CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.bookings.Cancel(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	log := h.log.With(zap.Error(err), zap.String("operation", operation))

	var gwErr *gateway.Error
	switch {
	case errors.Is(err, usecase.ErrValidation):
		log.Warn("Validation failed")
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrResourceNotFound):
		log.Warn("Not found")
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, usecase.ErrMissingPaymentID):
		log.Warn("Conflicting booking state")
		utils.ResponseConflict(w, err.Error())

	case errors.As(err, &gwErr):
		log.Error("Payment gateway error",
			zap.String("kind", string(gwErr.Kind)),
			zap.Bool("retryable", gwErr.Retryable))
		utils.ResponseBadGateway(w, "Payment gateway error")

	default:
		log.Error("Unexpected error")
		utils.ResponseInternalError(w, "Internal server error")
	}
}
