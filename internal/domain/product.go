package domain

import (
	"math"
	"time"
)

// Product categories.
const (
	CategoryElectronics = "electronics"
	CategoryFashion     = "fashion"
	CategoryHome        = "home"
	CategoryBeauty      = "beauty"
	CategorySports      = "sports"
	CategoryBooks       = "books"
	CategoryToys        = "toys"
	CategoryGrocery     = "grocery"
)

// exchangeRate is the fraction of our_price offered when the customer
// trades in an old item.
const exchangeRate = 0.95

// Product represents a catalog item.
type Product struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	MRP                float64   `json:"mrp"`
	OurPrice           float64   `json:"our_price"`
	Discount           float64   `json:"discount"`
	AfterExchangePrice float64   `json:"after_exchange_price"`
	Rating             float64   `json:"rating"`
	InStock            bool      `json:"in_stock"`
	StockQuantity      int       `json:"stock_quantity"`
	Images             []string  `json:"images"`
	FAQs               []FAQ     `json:"faqs,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FAQ is a question/answer pair attached to a product.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Suggestion is the lightweight projection returned by search suggestions.
type Suggestion struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category"`
	OurPrice float64 `json:"our_price"`
}

// ValidCategories returns all valid product categories.
func ValidCategories() []string {
	return []string{
		CategoryElectronics,
		CategoryFashion,
		CategoryHome,
		CategoryBeauty,
		CategorySports,
		CategoryBooks,
		CategoryToys,
		CategoryGrocery,
	}
}

// IsValidCategory checks if a category string is valid.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories() {
		if c == category {
			return true
		}
	}
	return false
}

// ComputeDiscount derives the discount percentage from MRP and selling
// price, rounded to the nearest integer percent.
func ComputeDiscount(mrp, ourPrice float64) float64 {
	if mrp <= 0 {
		return 0
	}
	return math.Round((mrp - ourPrice) / mrp * 100)
}

// ComputeAfterExchangePrice derives the trade-in price, rounded to two
// decimal places.
func ComputeAfterExchangePrice(ourPrice float64) float64 {
	return math.Round(ourPrice*exchangeRate*100) / 100
}

// ApplyDerivedPrices fills in discount (when unset) and the after-exchange
// price from the current MRP and selling price.
func (p *Product) ApplyDerivedPrices() {
	if p.Discount == 0 {
		p.Discount = ComputeDiscount(p.MRP, p.OurPrice)
	}
	p.AfterExchangePrice = ComputeAfterExchangePrice(p.OurPrice)
}

// FirstImage returns the first image URL, or empty when the product has none.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
