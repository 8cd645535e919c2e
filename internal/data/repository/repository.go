package repository

import (
	"errors"

	"booking-payments/pkg/database"

	"go.uber.org/zap"
)

// ErrNotFound is returned by mutating operations when the target row does
// not exist. Read operations return (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// ErrEventAlreadyProcessed is returned when the webhook dedup insert hits an
// existing event ID; callers treat it as success.
var ErrEventAlreadyProcessed = errors.New("webhook event already processed")

type Repository struct {
	Booking      BookingRepository
	WebhookEvent WebhookEventRepository
	Resource     ResourceRepository
	Customer     CustomerRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Booking:      NewBookingRepository(db, log),
		WebhookEvent: NewWebhookEventRepository(db, log),
		Resource:     NewResourceRepository(db, log),
		Customer:     NewCustomerRepository(db, log),
	}
}
