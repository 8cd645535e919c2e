package repository

import (
	"context"
	"fmt"

	"booking-payments/internal/data/entity"
	"booking-payments/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByExternalPaymentID(ctx context.Context, intentID string) (*entity.Booking, error)
	FindByExternalSessionID(ctx context.Context, sessionID string) (*entity.Booking, error)
	FindByCustomerEmail(ctx context.Context, email string, limit, offset int) ([]*entity.Booking, error)

	// Mutate runs fn against the row locked FOR UPDATE and persists the
	// result in the same transaction. fn returning an error rolls
	// everything back.
	Mutate(ctx context.Context, id uuid.UUID, fn func(b *entity.Booking) error) (*entity.Booking, error)

	// MutateForEvent is Mutate plus an insert into the webhook dedup log,
	// all in one transaction. A duplicate event ID aborts with
	// ErrEventAlreadyProcessed before fn runs.
	MutateForEvent(ctx context.Context, id uuid.UUID, evt *entity.WebhookEvent, fn func(b *entity.Booking) error) (*entity.Booking, error)
}

const bookingColumns = `id, kind, resource_id, status, payment_status, amount, currency,
	customer_email, description, external_payment_id, external_session_id,
	refund_amount, refund_processed_at, cancellation_reason, cancelled_at, cancelled_by,
	created_at, updated_at`

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.Kind,
		booking.ResourceID,
		booking.Status,
		booking.PayStatus,
		booking.Amount,
		booking.Currency,
		booking.CustomerEmail,
		booking.Description,
		booking.ExternalPaymentID,
		booking.ExternalSessionID,
		booking.RefundAmount,
		booking.RefundProcessedAt,
		booking.CancellationReason,
		booking.CancelledAt,
		booking.CancelledBy,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("kind", string(booking.Kind)),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *bookingRepository) FindByExternalPaymentID(ctx context.Context, intentID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE external_payment_id = $1`
	return r.findOne(ctx, query, intentID)
}

func (r *bookingRepository) FindByExternalSessionID(ctx context.Context, sessionID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE external_session_id = $1`
	return r.findOne(ctx, query, sessionID)
}

func (r *bookingRepository) findOne(ctx context.Context, query string, arg any) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking", zap.Error(err))
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return booking, nil
}

func (r *bookingRepository) FindByCustomerEmail(ctx context.Context, email string, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_email = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, email, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by customer email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find bookings by customer email: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(b *entity.Booking) error) (*entity.Booking, error) {
	return r.mutate(ctx, id, nil, fn)
}

func (r *bookingRepository) MutateForEvent(ctx context.Context, id uuid.UUID, evt *entity.WebhookEvent, fn func(b *entity.Booking) error) (*entity.Booking, error) {
	return r.mutate(ctx, id, evt, fn)
}

// mutate is the single read-modify-write path. The row lock is held only
// around the local transition and update; gateway calls never happen inside.
func (r *bookingRepository) mutate(ctx context.Context, id uuid.UUID, evt *entity.WebhookEvent, fn func(b *entity.Booking) error) (*entity.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking mutation: %w", err)
	}
	defer tx.Rollback(ctx)

	if evt != nil {
		tag, err := tx.Exec(ctx, `
			INSERT INTO webhook_events (event_id, event_type, kind, booking_id, processed_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id) DO NOTHING
		`, evt.EventID, evt.EventType, evt.Kind, evt.BookingID, evt.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("record webhook event %s: %w", evt.EventID, err)
		}
		if tag.RowsAffected() == 0 {
			// A concurrent delivery got here first.
			return nil, ErrEventAlreadyProcessed
		}
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	booking, err := scanBooking(tx.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock booking %s: %w", id.String(), err)
	}

	if err := fn(booking); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE bookings
		SET status = $2, payment_status = $3,
		    external_payment_id = $4, external_session_id = $5,
		    refund_amount = $6, refund_processed_at = $7,
		    cancellation_reason = $8, cancelled_at = $9, cancelled_by = $10,
		    updated_at = $11
		WHERE id = $1
	`,
		booking.ID,
		booking.Status,
		booking.PayStatus,
		booking.ExternalPaymentID,
		booking.ExternalSessionID,
		booking.RefundAmount,
		booking.RefundProcessedAt,
		booking.CancellationReason,
		booking.CancelledAt,
		booking.CancelledBy,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, fmt.Errorf("update booking %s: %w", booking.ID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking mutation %s: %w", id.String(), err)
	}

	return booking, nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.Kind,
		&booking.ResourceID,
		&booking.Status,
		&booking.PayStatus,
		&booking.Amount,
		&booking.Currency,
		&booking.CustomerEmail,
		&booking.Description,
		&booking.ExternalPaymentID,
		&booking.ExternalSessionID,
		&booking.RefundAmount,
		&booking.RefundProcessedAt,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&booking.CancelledBy,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
