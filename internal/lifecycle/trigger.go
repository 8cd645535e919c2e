package lifecycle

// TriggerType is a normalized instruction to the booking state machine,
// derived either from a gateway webhook event or from a synchronous API call.
type TriggerType string

const (
	TriggerAuthorizedByGateway   TriggerType = "authorized_by_gateway"
	TriggerCaptureRequested      TriggerType = "capture_requested"
	TriggerCaptureSucceeded      TriggerType = "capture_succeeded"
	TriggerVoidRequested         TriggerType = "void_requested"
	TriggerRefundRequested       TriggerType = "refund_requested"
	TriggerProviderAccepted      TriggerType = "provider_accepted"
	TriggerProviderRejected      TriggerType = "provider_rejected"
	TriggerPaymentSucceeded      TriggerType = "payment_succeeded"
	TriggerPaymentFailed         TriggerType = "payment_failed"
	TriggerSessionExpired        TriggerType = "session_expired"
	TriggerPaymentRequiresAction TriggerType = "payment_requires_action"
	TriggerCancelledByUser       TriggerType = "cancelled_by_user"
)

type Trigger struct {
	Type TriggerType

	// Amount applies to refunds, in major currency units. Zero means
	// "the remainder".
	Amount float64

	// Reason is the refund/failure/cancellation reason, where one exists.
	Reason string

	// Actor identifies who cancelled, for CancelledByUser.
	Actor string
}

func AuthorizedByGateway() Trigger   { return Trigger{Type: TriggerAuthorizedByGateway} }
func CaptureRequested() Trigger      { return Trigger{Type: TriggerCaptureRequested} }
func CaptureSucceeded() Trigger      { return Trigger{Type: TriggerCaptureSucceeded} }
func VoidRequested() Trigger         { return Trigger{Type: TriggerVoidRequested} }
func ProviderAccepted() Trigger      { return Trigger{Type: TriggerProviderAccepted} }
func ProviderRejected() Trigger      { return Trigger{Type: TriggerProviderRejected} }
func PaymentSucceeded() Trigger      { return Trigger{Type: TriggerPaymentSucceeded} }
func SessionExpired() Trigger        { return Trigger{Type: TriggerSessionExpired} }
func PaymentRequiresAction() Trigger { return Trigger{Type: TriggerPaymentRequiresAction} }

func RefundRequested(amount float64, reason string) Trigger {
	return Trigger{Type: TriggerRefundRequested, Amount: amount, Reason: reason}
}

func PaymentFailed(reason string) Trigger {
	return Trigger{Type: TriggerPaymentFailed, Reason: reason}
}

func CancelledByUser(reason, actor string) Trigger {
	return Trigger{Type: TriggerCancelledByUser, Reason: reason, Actor: actor}
}
