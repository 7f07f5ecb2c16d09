package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	gwmock "github.com/utafrali/storefront/internal/gateway/mock"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func validCreateOrderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Items: []CreateOrderItemRequest{
			{ProductID: uuid.NewString(), Name: "Wireless Earbuds", Price: 750, Quantity: 2},
		},
		TotalAmount: 1500,
		Currency:    "INR",
		ShippingAddress: &domain.Address{
			FullName:    "Asha Verma",
			AddressLine: "42 MG Road",
			City:        "Bengaluru",
			State:       "Karnataka",
			PostalCode:  "560001",
			Country:     "IN",
		},
	}
}

// --- CreateOrder Tests ---

func TestOrderHandler_CreateOrder_Success(t *testing.T) {
	router, repos, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "user-001", "asha@example.com", domain.RoleUser)

	repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.UserID == "user-001" && o.Status == domain.OrderStatusPending
	})).Return(nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", token, validCreateOrderRequest())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			Order        domain.Order `json:"order"`
			GatewayOrder struct {
				ID     string `json:"id"`
				Amount int64  `json:"amount"`
			} `json:"gateway_order"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.OrderStatusPending, resp.Data.Order.Status)
	assert.Equal(t, int64(150000), resp.Data.GatewayOrder.Amount)
	repos.orders.AssertExpectations(t)
}

func TestOrderHandler_CreateOrder_ValidationError(t *testing.T) {
	router, repos, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "user-001", "asha@example.com", domain.RoleUser)

	req := validCreateOrderRequest()
	req.Items = nil

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", token, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	repos.orders.AssertNotCalled(t, "Create")
}

func TestOrderHandler_CreateOrder_OutOfStock(t *testing.T) {
	router, repos, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "user-001", "asha@example.com", domain.RoleUser)

	req := validCreateOrderRequest()
	repos.orders.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.OutOfStock(req.Items[0].ProductID))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", token, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "OUT_OF_STOCK")
}

// --- GetOrder Tests ---

func TestOrderHandler_GetOrder_InvalidID(t *testing.T) {
	router, _, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "user-001", "asha@example.com", domain.RoleUser)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_PARAMETER")
}

func TestOrderHandler_GetOrder_OtherUsersOrderHidden(t *testing.T) {
	router, repos, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "user-002", "ravi@example.com", domain.RoleUser)

	orderID := uuid.NewString()
	repos.orders.On("GetByID", mock.Anything, orderID).Return(&domain.Order{
		ID:     orderID,
		UserID: "user-001",
	}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- VerifyPayment Tests ---

func TestOrderHandler_VerifyPayment_Success(t *testing.T) {
	router, repos, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "user-001", "asha@example.com", domain.RoleUser)

	orderID := uuid.NewString()
	repos.orders.On("ConfirmPayment", mock.Anything, orderID, "user-001", "gw_pay_001").Return(nil)
	repos.orders.On("GetByID", mock.Anything, orderID).Return(&domain.Order{
		ID:            orderID,
		UserID:        "user-001",
		Status:        domain.OrderStatusConfirmed,
		PaymentStatus: domain.PaymentStatusCompleted,
	}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/verify-payment", token, VerifyPaymentRequest{
		GatewayOrderID:   "gw_order_001",
		GatewayPaymentID: "gw_pay_001",
		Signature:        gwmock.Sign("gw_order_001", "gw_pay_001"),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.OrderStatusConfirmed)
}

func TestOrderHandler_VerifyPayment_BadSignature(t *testing.T) {
	router, repos, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "user-001", "asha@example.com", domain.RoleUser)

	orderID := uuid.NewString()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/verify-payment", token, VerifyPaymentRequest{
		GatewayOrderID:   "gw_order_001",
		GatewayPaymentID: "gw_pay_001",
		Signature:        "tampered",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "SIGNATURE_MISMATCH")
	repos.orders.AssertNotCalled(t, "ConfirmPayment")
}

func TestOrderHandler_VerifyPayment_CancelledOrder(t *testing.T) {
	router, repos, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "user-001", "asha@example.com", domain.RoleUser)

	// An admin cancelled the order after checkout; the still-valid gateway
	// signature must not flip it back to confirmed.
	orderID := uuid.NewString()
	repos.orders.On("ConfirmPayment", mock.Anything, orderID, "user-001", "gw_pay_001").
		Return(apperrors.OrderNotPayable(orderID, domain.OrderStatusCancelled))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders/"+orderID+"/verify-payment", token, VerifyPaymentRequest{
		GatewayOrderID:   "gw_order_001",
		GatewayPaymentID: "gw_pay_001",
		Signature:        gwmock.Sign("gw_order_001", "gw_pay_001"),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ORDER_NOT_PAYABLE")
	repos.orders.AssertNotCalled(t, "GetByID")
}

// --- UpdateOrderStatus Tests ---

func TestOrderHandler_UpdateOrderStatus_Success(t *testing.T) {
	router, repos, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "admin-001", "admin@example.com", domain.RoleAdmin)

	orderID := uuid.NewString()
	repos.orders.On("GetByID", mock.Anything, orderID).Return(&domain.Order{
		ID:     orderID,
		Status: domain.OrderStatusConfirmed,
	}, nil)
	repos.orders.On("UpdateStatus", mock.Anything, orderID, domain.OrderStatusShipped).Return(nil)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/admin/orders/"+orderID+"/status", token, UpdateOrderStatusRequest{
		Status: domain.OrderStatusShipped,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	repos.orders.AssertExpectations(t)
}

func TestOrderHandler_UpdateOrderStatus_UnknownStatus(t *testing.T) {
	router, repos, jwtManager := newTestRouter(t)
	token := bearerToken(t, jwtManager, "admin-001", "admin@example.com", domain.RoleAdmin)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/admin/orders/"+uuid.NewString()+"/status", token, UpdateOrderStatusRequest{
		Status: "returned",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repos.orders.AssertNotCalled(t, "UpdateStatus")
}
