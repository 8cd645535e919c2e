package entity

// Customer links an email address to the payment processor's customer
// object so repeat bookings reuse the same gateway customer.
type Customer struct {
	BaseSimple
	Email             string `db:"email"`
	Name              string `db:"name"`
	GatewayCustomerID string `db:"gateway_customer_id"`
}
