package gateway

import "context"

// CreateOrderInput holds the parameters for opening a gateway order.
type CreateOrderInput struct {
	// Amount is in minor currency units (e.g. paise).
	Amount   int64
	Currency string
	// Receipt is our internal order identifier, echoed back by the gateway.
	Receipt string
	Notes   map[string]string
}

// Order is the gateway's order descriptor returned to the client for the
// hosted checkout step.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client defines the payment gateway integration.
type Client interface {
	// Name returns the gateway name (e.g. "mock", "razorpay").
	Name() string

	// CreateOrder opens a gateway order for the given amount.
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*Order, error)

	// VerifySignature checks the checkout callback signature. It returns
	// true only when the signature matches the expected HMAC.
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}
