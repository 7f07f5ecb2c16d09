// Package mock provides a payment gateway that always succeeds, for
// development and testing.
package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/gateway"
)

const secret = "mock-gateway-secret"

// Gateway is an in-process gateway that accepts every order.
type Gateway struct{}

// New creates a mock gateway.
func New() *Gateway {
	return &Gateway{}
}

// Name returns the gateway name.
func (g *Gateway) Name() string {
	return "mock"
}

// CreateOrder returns a synthetic gateway order.
func (g *Gateway) CreateOrder(_ context.Context, input *gateway.CreateOrderInput) (*gateway.Order, error) {
	return &gateway.Order{
		ID:       "mock_order_" + uuid.New().String(),
		Amount:   input.Amount,
		Currency: input.Currency,
		Receipt:  input.Receipt,
		Status:   "created",
	}, nil
}

// VerifySignature checks signatures against the fixed mock secret.
func (g *Gateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return gateway.VerifySignature(secret, gatewayOrderID, gatewayPaymentID, signature)
}

// Sign produces a valid signature for the mock secret, for tests and local
// checkout flows.
func Sign(gatewayOrderID, gatewayPaymentID string) string {
	return gateway.ComputeSignature(secret, gatewayOrderID, gatewayPaymentID)
}
