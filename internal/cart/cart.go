// Package cart holds the shopping cart state machine.
//
// Per product id an entry is either absent or present with a quantity of at
// least one. Totals are recomputed from the entries on every call.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/drstein77/shophub/internal/models"
)

// discountRate is the fixed promotional discount applied to the subtotal.
var discountRate = decimal.New(1, -1)

// Cart keeps entries in the order products were first added.
// It is not safe for concurrent use.
type Cart struct {
	entries []models.CartEntry
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add puts one unit of p in the cart. A product already present has its
// quantity incremented instead of getting a second row.
func (c *Cart) Add(p models.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.entries[i].Quantity++
		return
	}
	c.entries = append(c.entries, models.CartEntry{Product: p, Quantity: 1})
}

// UpdateQuantity shifts the quantity of product id by delta. An entry whose
// quantity drops to zero or below is removed. Unknown ids are ignored.
func (c *Cart) UpdateQuantity(id, delta int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	q := c.entries[i].Quantity + delta
	if q <= 0 {
		c.removeAt(i)
		return
	}
	c.entries[i].Quantity = q
}

// Remove deletes the entry for product id, if any.
func (c *Cart) Remove(id int) {
	if i := c.index(id); i >= 0 {
		c.removeAt(i)
	}
}

// Quantity reports how many units of product id are in the cart.
func (c *Cart) Quantity(id int) int {
	if i := c.index(id); i >= 0 {
		return c.entries[i].Quantity
	}
	return 0
}

// Entries returns a copy of the cart rows.
func (c *Cart) Entries() []models.CartEntry {
	out := make([]models.CartEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len is the number of distinct products in the cart.
func (c *Cart) Len() int {
	return len(c.entries)
}

// Totals derives item count and money totals at full precision.
func (c *Cart) Totals() models.Totals {
	return Summarize(c.entries)
}

// Summarize computes totals for an arbitrary set of entries.
func Summarize(entries []models.CartEntry) models.Totals {
	var t models.Totals
	subtotal := decimal.Zero
	for _, e := range entries {
		t.TotalItems += e.Quantity
		subtotal = subtotal.Add(e.LineTotal())
	}
	t.Subtotal = subtotal
	t.Discount = subtotal.Mul(discountRate)
	t.Total = subtotal.Sub(t.Discount)
	return t
}

func (c *Cart) index(id int) int {
	for i := range c.entries {
		if c.entries[i].Product.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
}
