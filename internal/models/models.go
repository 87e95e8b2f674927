package models

import (
	"github.com/shopspring/decimal"
)

// Money goes over the wire as JSON numbers, the same shape the catalog
// source serves.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Rating is the review summary attached to a product by the catalog source.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog item. Products are never mutated after they are loaded.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// CartEntry pairs a product with the quantity the shopper wants.
// Quantity is always at least 1 while the entry is in a cart.
type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price * quantity at full precision.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Filter narrows the visible catalog. An empty Category matches every category.
type Filter struct {
	Category string          `json:"category"`
	MaxPrice decimal.Decimal `json:"maxPrice"`
}

// Totals are derived from the cart entries on every read and never stored.
type Totals struct {
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
}

// Rounded returns a copy with the monetary fields rounded for display.
func (t Totals) Rounded() Totals {
	return Totals{
		TotalItems: t.TotalItems,
		Subtotal:   t.Subtotal.Round(2),
		Discount:   t.Discount.Round(2),
		Total:      t.Total.Round(2),
	}
}

// CatalogState is the lifecycle stage of the catalog load.
type CatalogState string

const (
	CatalogIdle    CatalogState = "idle"
	CatalogLoading CatalogState = "loading"
	CatalogLoaded  CatalogState = "loaded"
	CatalogFailed  CatalogState = "failed"
)

// CatalogStatus is the externally visible view of the catalog lifecycle.
type CatalogStatus struct {
	State     CatalogState `json:"state"`
	Error     string       `json:"error,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
	Count     int          `json:"count"`
}
