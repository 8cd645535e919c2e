package request

// CreateBookingRequest starts a checkout. Amount and currency default to
// the booked resource's price when omitted.
type CreateBookingRequest struct {
	Kind          string   `json:"kind" validate:"required,oneof=event venue service"`
	ResourceID    string   `json:"resource_id" validate:"required,uuid"`
	CustomerEmail string   `json:"customer_email" validate:"required,email"`
	CustomerName  string   `json:"customer_name" validate:"omitempty,max=120"`
	Amount        *float64 `json:"amount" validate:"omitempty,gt=0"`
	Currency      string   `json:"currency" validate:"omitempty,len=3"`
	Description   string   `json:"description" validate:"omitempty,max=255"`
	Flow          string   `json:"flow" validate:"omitempty,oneof=session intent"`
	CaptureMode   string   `json:"capture_mode" validate:"omitempty,oneof=automatic manual"`
	FutureUsage   string   `json:"future_usage" validate:"omitempty,oneof=on_session off_session"`
}

type RefundBookingRequest struct {
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"`
	Reason string   `json:"reason" validate:"omitempty,oneof=duplicate fraudulent requested_by_customer"`
}

type CancelBookingRequest struct {
	Reason      string `json:"reason" validate:"required,max=255"`
	CancelledBy string `json:"cancelled_by" validate:"omitempty,max=120"`
}
