package webhook

// Event is the notification envelope delivered by the payment gateway.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object Object `json:"object"`
	} `json:"data"`
}

// Object is the payment object embedded in an event. Charges embed their
// originating source; payment intents carry the last payment error. The order
// back-reference, when present, lives in Metadata["order"].
type Object struct {
	Kind             string            `json:"object"`
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	Metadata         map[string]string `json:"metadata"`
	Source           *Object           `json:"source"`
	LastPaymentError *PaymentError     `json:"last_payment_error"`
}

type PaymentError struct {
	Message string  `json:"message"`
	Source  *Object `json:"source"`
}

const (
	KindPaymentIntent = "payment_intent"
	KindSource        = "source"
	KindCharge        = "charge"
)

const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

// OrderID returns the order referenced by the object's own metadata, or the
// empty string when the object is not associated with a known order.
func (o Object) OrderID() string {
	return o.Metadata["order"]
}
