package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/pkg/httpclient"
)

// Config holds the gateway client configuration.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
}

// HTTPClient talks to the payment gateway's REST API. Requests go through a
// retrying client guarded by a circuit breaker so a gateway outage fails
// fast instead of piling up connections.
type HTTPClient struct {
	cfg    Config
	client *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// NewHTTPClient creates a gateway client for the given credentials.
func NewHTTPClient(cfg Config, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		cfg: cfg,
		client: httpclient.NewCircuitBreakerClient(
			httpclient.DefaultConfig(),
			httpclient.DefaultBreakerConfig("payment_gateway"),
			logger,
		),
		logger: logger,
	}
}

// Name returns the gateway name.
func (c *HTTPClient) Name() string {
	return "razorpay"
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// CreateOrder opens a gateway order for the given amount in minor units.
func (c *HTTPClient) CreateOrder(ctx context.Context, input *CreateOrderInput) (*Order, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   input.Amount,
		Currency: input.Currency,
		Receipt:  input.Receipt,
		Notes:    input.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("gateway create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway create order: unexpected status %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode gateway order: %w", err)
	}

	c.logger.DebugContext(ctx, "gateway order created",
		slog.String("gateway_order_id", order.ID),
		slog.Int64("amount", order.Amount),
	)

	return &order, nil
}

// VerifySignature checks the checkout callback signature against the key secret.
func (c *HTTPClient) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return VerifySignature(c.cfg.KeySecret, gatewayOrderID, gatewayPaymentID, signature)
}
