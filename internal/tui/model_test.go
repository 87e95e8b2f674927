package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drstein77/shophub/internal/catalog"
	"github.com/drstein77/shophub/internal/models"
)

type fakeCatalog struct {
	products []models.Product
	status   models.CatalogStatus
	loads    int
}

func (f *fakeCatalog) Load(context.Context) error {
	f.loads++
	return nil
}

func (f *fakeCatalog) Status() models.CatalogStatus {
	return f.status
}

func (f *fakeCatalog) Products() []models.Product {
	return f.products
}

func (f *fakeCatalog) Categories() []string {
	return catalog.Categories(f.products)
}

func loadedCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: []models.Product{
			{ID: 1, Title: "Backpack", Price: decimal.NewFromInt(20), Category: "bags"},
			{ID: 2, Title: "Jacket", Price: decimal.NewFromInt(50), Category: "clothing"},
		},
		status: models.CatalogStatus{State: models.CatalogLoaded, Count: 2},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestLoadingThenLoaded(t *testing.T) {
	m := NewModel(context.Background(), loadedCatalog())
	assert.Contains(t, m.View(), "Loading amazing products...")

	m = send(t, m, catalogLoadedMsg{})
	view := m.View()
	assert.Contains(t, view, "2 products available")
	assert.Contains(t, view, "Category: All categories")
	assert.Contains(t, view, "Max price: $1000.00")
}

func TestKeysIgnoredWhileLoading(t *testing.T) {
	m := NewModel(context.Background(), loadedCatalog())

	m = send(t, m, runes("a"))

	assert.Equal(t, 0, m.Cart().Len())
}

func TestAddAndCartPanel(t *testing.T) {
	m := send(t, NewModel(context.Background(), loadedCatalog()), catalogLoadedMsg{})

	m = send(t, m, runes("a"), runes("l"), runes("a"), runes("a"))
	assert.Equal(t, 1, m.Cart().Quantity(1))
	assert.Equal(t, 2, m.Cart().Quantity(2))
	assert.Contains(t, m.View(), "Added Jacket")
	assert.Contains(t, m.View(), "Cart (3)")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	view := m.View()
	assert.Contains(t, view, "Shopping Cart")
	assert.Contains(t, view, "Subtotal       $120.00")
	assert.Contains(t, view, "Savings (10%) -$12.00")
	assert.Contains(t, view, "Total          $108.00")

	m = send(t, m, runes("+"))
	assert.Equal(t, 2, m.Cart().Quantity(1))

	m = send(t, m, runes("-"), runes("-"))
	assert.Equal(t, 0, m.Cart().Quantity(1))
	assert.Equal(t, 1, m.Cart().Len())

	m = send(t, m, runes("x"))
	assert.Equal(t, 0, m.Cart().Len())
	assert.Contains(t, m.View(), "Your cart is empty")

	m = send(t, m, runes("C"))
	assert.Contains(t, m.View(), "Checkout is not available")
}

func TestFilterKeys(t *testing.T) {
	m := send(t, NewModel(context.Background(), loadedCatalog()), catalogLoadedMsg{})

	m = send(t, m, runes("c"))
	assert.Contains(t, m.View(), "Category: bags")
	assert.Contains(t, m.View(), "1 product available")

	for i := 0; i < 98; i++ {
		m = send(t, m, runes("-"))
	}
	assert.Contains(t, m.View(), "Max price: $20.00")
	assert.Contains(t, m.View(), "1 product available")

	m = send(t, m, runes("-"))
	assert.Contains(t, m.View(), "No products match your filters")

	m = send(t, m, runes("r"))
	assert.Contains(t, m.View(), "2 products available")
}

func TestNextCategory(t *testing.T) {
	categories := []string{"bags", "clothing"}

	assert.Equal(t, "bags", nextCategory(categories, ""))
	assert.Equal(t, "clothing", nextCategory(categories, "bags"))
	assert.Equal(t, "", nextCategory(categories, "clothing"))
	assert.Equal(t, "", nextCategory(categories, "gone"))
	assert.Equal(t, "", nextCategory(nil, ""))
}

func TestRetryAfterFailure(t *testing.T) {
	c := &fakeCatalog{status: models.CatalogStatus{
		State:     models.CatalogFailed,
		Error:     "catalog load failed: source returned status 503",
		Retryable: true,
	}}
	m := send(t, NewModel(context.Background(), c), catalogLoadedMsg{})

	view := m.View()
	assert.Contains(t, view, "Could not load products: catalog load failed: source returned status 503")
	assert.Contains(t, view, "Press R to retry.")

	next, cmd := m.Update(runes("R"))
	require.NotNil(t, cmd)
	assert.Contains(t, next.View(), "Loading amazing products...")

	c.status = models.CatalogStatus{State: models.CatalogFailed, Error: "canceled"}
	m = send(t, m, catalogLoadedMsg{})
	_, cmd = m.Update(runes("R"))
	assert.Nil(t, cmd)
}
