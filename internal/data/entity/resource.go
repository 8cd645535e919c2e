package entity

// Resource is a bookable thing: an event, a venue or a service. Catalog
// management lives elsewhere; bookings only need existence and pricing.
type Resource struct {
	BaseSimple
	Kind     BookingKind `db:"kind"`
	Name     string      `db:"name"`
	Price    float64     `db:"price"`
	Currency string      `db:"currency"`
	Active   bool        `db:"active"`
}
