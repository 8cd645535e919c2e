package wire

import (
	"booking-payments/internal/adaptor"
	"booking-payments/pkg/middleware"
	"booking-payments/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/bookings - Start a checkout
	r.Post("/api/bookings", bookingHandler.CreateBooking)

	// GET /api/bookings/{id} - Booking status
	r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

	// GET /api/bookings?email=... - Booking history for a customer
	r.Get("/api/bookings", bookingHandler.ListBookings)

	// ==================== ADMIN ROUTES ====================
	// Lifecycle operations that move money require the admin API key.
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.APIKey(config.Admin.APIKeyHash, log))

		r.Post("/{id}/accept", bookingHandler.Accept)
		r.Post("/{id}/reject", bookingHandler.Reject)
		r.Post("/{id}/capture", bookingHandler.Capture)
		r.Post("/{id}/void", bookingHandler.Void)
		r.Post("/{id}/refund", bookingHandler.Refund)
		r.Post("/{id}/cancel", bookingHandler.Cancel)
	})
}
