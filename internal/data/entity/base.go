package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base is embedded by records that are mutated in place. Bookings are never
// deleted, so there is no soft-delete column.
type Base struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
