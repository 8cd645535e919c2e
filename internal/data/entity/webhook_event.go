package entity

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is one processed gateway notification. The primary key is the
// gateway's own event ID, which makes the table the dedup log for
// at-least-once webhook delivery.
type WebhookEvent struct {
	EventID     string      `db:"event_id"`
	EventType   string      `db:"event_type"`
	Kind        BookingKind `db:"kind"`
	BookingID   *uuid.UUID  `db:"booking_id"`
	ProcessedAt time.Time   `db:"processed_at"`
}
