// Package filter narrows the catalog by category and maximum price.
package filter

import (
	"github.com/shopspring/decimal"

	"github.com/drstein77/shophub/internal/models"
)

// Price bounds of the max-price control.
var (
	MinPrice     = decimal.Zero
	DefaultPrice = decimal.NewFromInt(1000)
	PriceStep    = decimal.NewFromInt(10)
)

// State is the active filter. The zero value is not ready; use New.
type State struct {
	category string
	maxPrice decimal.Decimal
}

// New returns a filter that matches every product up to DefaultPrice.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// SetCategory selects one category; the empty string matches all.
func (s *State) SetCategory(c string) {
	s.category = c
}

// SetMaxPrice sets the inclusive upper price bound, clamped to [MinPrice, DefaultPrice].
func (s *State) SetMaxPrice(p decimal.Decimal) {
	switch {
	case p.LessThan(MinPrice):
		p = MinPrice
	case p.GreaterThan(DefaultPrice):
		p = DefaultPrice
	}
	s.maxPrice = p
}

// StepMaxPrice moves the price bound by n steps of PriceStep.
func (s *State) StepMaxPrice(n int) {
	s.SetMaxPrice(s.maxPrice.Add(PriceStep.Mul(decimal.NewFromInt(int64(n)))))
}

// Reset restores the empty category and DefaultPrice.
func (s *State) Reset() {
	s.category = ""
	s.maxPrice = DefaultPrice
}

// Current returns a snapshot of the filter.
func (s *State) Current() models.Filter {
	return models.Filter{Category: s.category, MaxPrice: s.maxPrice}
}

// Matches reports whether p passes f.
func Matches(p models.Product, f models.Filter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	return p.Price.LessThanOrEqual(f.MaxPrice)
}

// Visible returns the products passing f, preserving catalog order.
// The result never aliases products.
func Visible(products []models.Product, f models.Filter) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}
