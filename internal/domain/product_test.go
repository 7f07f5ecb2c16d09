package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Derived Pricing Tests
// ============================================================================

func TestComputeDiscount_BasicCalculation(t *testing.T) {
	assert.Equal(t, 25.0, ComputeDiscount(1000, 750))
}

func TestComputeDiscount_Rounds(t *testing.T) {
	// (999-750)/999*100 = 24.92... rounds to 25
	assert.Equal(t, 25.0, ComputeDiscount(999, 750))
	// (300-200)/300*100 = 33.33... rounds to 33
	assert.Equal(t, 33.0, ComputeDiscount(300, 200))
}

func TestComputeDiscount_NoDiscount(t *testing.T) {
	assert.Equal(t, 0.0, ComputeDiscount(500, 500))
}

func TestComputeDiscount_ZeroMRP(t *testing.T) {
	assert.Equal(t, 0.0, ComputeDiscount(0, 100))
}

func TestComputeDiscount_Bounds(t *testing.T) {
	cases := []struct{ mrp, price float64 }{
		{1000, 750}, {999, 1}, {50, 50}, {10000, 9999},
	}
	for _, c := range cases {
		d := ComputeDiscount(c.mrp, c.price)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, 100.0)
	}
}

func TestComputeAfterExchangePrice_TwoDecimalRounding(t *testing.T) {
	assert.Equal(t, 712.5, ComputeAfterExchangePrice(750))
	assert.Equal(t, 94.99, ComputeAfterExchangePrice(99.99))
}

func TestApplyDerivedPrices_ComputesWhenUnset(t *testing.T) {
	p := &Product{MRP: 1000, OurPrice: 750}
	p.ApplyDerivedPrices()
	assert.Equal(t, 25.0, p.Discount)
	assert.Equal(t, 712.5, p.AfterExchangePrice)
}

func TestApplyDerivedPrices_KeepsSuppliedDiscount(t *testing.T) {
	p := &Product{MRP: 1000, OurPrice: 750, Discount: 20}
	p.ApplyDerivedPrices()
	assert.Equal(t, 20.0, p.Discount)
	assert.Equal(t, 712.5, p.AfterExchangePrice)
}

// ============================================================================
// Category Validation Tests
// ============================================================================

func TestIsValidCategory_ValidCategories(t *testing.T) {
	for _, c := range ValidCategories() {
		assert.True(t, IsValidCategory(c), "expected %q to be valid", c)
	}
}

func TestIsValidCategory_InvalidCategory(t *testing.T) {
	assert.False(t, IsValidCategory("unknown"))
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("Electronics")) // case-sensitive
}

func TestFirstImage(t *testing.T) {
	p := &Product{Images: []string{"a.jpg", "b.jpg"}}
	assert.Equal(t, "a.jpg", p.FirstImage())

	empty := &Product{}
	assert.Equal(t, "", empty.FirstImage())
}
