package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Order Status Validation Tests
// ============================================================================

func TestValidOrderStatuses_ContainsAllStatuses(t *testing.T) {
	expected := []string{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled,
	}
	assert.ElementsMatch(t, expected, ValidOrderStatuses())
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range ValidOrderStatuses() {
		assert.True(t, IsValidOrderStatus(s), "expected %q to be valid", s)
	}
	assert.False(t, IsValidOrderStatus("unknown"))
	assert.False(t, IsValidOrderStatus(""))
	assert.False(t, IsValidOrderStatus("PENDING"))
}

// ============================================================================
// Transition Graph Tests
// ============================================================================

func TestCanTransitionTo_ForwardPath(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusConfirmed}).CanTransitionTo(OrderStatusShipped))
	assert.True(t, (&Order{Status: OrderStatusShipped}).CanTransitionTo(OrderStatusDelivered))
}

func TestCanTransitionTo_Cancellation(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusPending}).CanTransitionTo(OrderStatusCancelled))
	assert.True(t, (&Order{Status: OrderStatusConfirmed}).CanTransitionTo(OrderStatusCancelled))
	assert.True(t, (&Order{Status: OrderStatusShipped}).CanTransitionTo(OrderStatusCancelled))
}

func TestCanTransitionTo_RejectsBackward(t *testing.T) {
	assert.False(t, (&Order{Status: OrderStatusDelivered}).CanTransitionTo(OrderStatusPending))
	assert.False(t, (&Order{Status: OrderStatusShipped}).CanTransitionTo(OrderStatusConfirmed))
	assert.False(t, (&Order{Status: OrderStatusDelivered}).CanTransitionTo(OrderStatusShipped))
}

func TestCanTransitionTo_ConfirmReservedForPayment(t *testing.T) {
	// pending→confirmed only happens through payment verification, so the
	// admin transition graph does not include it.
	assert.False(t, (&Order{Status: OrderStatusPending}).CanTransitionTo(OrderStatusConfirmed))
}

func TestCanTransitionTo_TerminalStates(t *testing.T) {
	for _, target := range ValidOrderStatuses() {
		assert.False(t, (&Order{Status: OrderStatusCancelled}).CanTransitionTo(target))
	}
	assert.False(t, (&Order{Status: OrderStatusDelivered}).CanTransitionTo(OrderStatusCancelled))
}

func TestCanTransitionTo_UnknownStatus(t *testing.T) {
	assert.False(t, (&Order{Status: "bogus"}).CanTransitionTo(OrderStatusConfirmed))
}

// ============================================================================
// Minor Unit Conversion Tests
// ============================================================================

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(71250), ToMinorUnits(712.5))
	assert.Equal(t, int64(100000), ToMinorUnits(1000))
	assert.Equal(t, int64(9999), ToMinorUnits(99.99))
	assert.Equal(t, int64(0), ToMinorUnits(0))
}

func TestOrder_MinorUnits(t *testing.T) {
	o := &Order{TotalAmount: 1500.5}
	assert.Equal(t, int64(150050), o.MinorUnits())
}
