package repository

import (
	"context"
	"fmt"

	"booking-payments/internal/data/entity"
	"booking-payments/pkg/database"

	"go.uber.org/zap"
)

// WebhookEventRepository is the processed-event log used to deduplicate
// at-least-once webhook delivery. Events tied to a booking are inserted
// inside the booking mutation transaction (BookingRepository.MutateForEvent);
// this repository covers lookups and the events that never reach a booking.
type WebhookEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	Record(ctx context.Context, evt *entity.WebhookEvent) error
}

type webhookEventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWebhookEventRepository(db database.PgxIface, log *zap.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "webhook_event")),
	}
}

func (r *webhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM webhook_events WHERE event_id = $1)`, eventID,
	).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check webhook event",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return false, fmt.Errorf("check webhook event %s: %w", eventID, err)
	}
	return exists, nil
}

func (r *webhookEventRepository) Record(ctx context.Context, evt *entity.WebhookEvent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO webhook_events (event_id, event_type, kind, booking_id, processed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`, evt.EventID, evt.EventType, evt.Kind, evt.BookingID, evt.ProcessedAt)
	if err != nil {
		r.log.Error("Failed to record webhook event",
			zap.Error(err),
			zap.String("event_id", evt.EventID),
		)
		return fmt.Errorf("record webhook event %s: %w", evt.EventID, err)
	}
	return nil
}
