package usecase

import "errors"

// Sentinel errors so handlers can map failures to HTTP status codes
// with errors.Is instead of string matching.
var (
	ErrValidation       = errors.New("validation failed")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrMissingPaymentID = errors.New("booking has no payment reference")
)
