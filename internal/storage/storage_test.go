package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drstein77/shophub/internal/catalog"
	"github.com/drstein77/shophub/internal/logger"
	"github.com/drstein77/shophub/internal/models"
)

type staticSource struct {
	products []models.Product
	err      error
}

func (s *staticSource) Fetch(context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func scenarioCatalog() []models.Product {
	return []models.Product{
		{ID: 1, Title: "one", Price: decimal.NewFromInt(20), Category: "a"},
		{ID: 2, Title: "two", Price: decimal.NewFromInt(50), Category: "b"},
	}
}

func loadedStorage(t *testing.T, products []models.Product) *MemoryStorage {
	t.Helper()
	store := catalog.NewStore(&staticSource{products: products}, logger.Nop())
	require.NoError(t, store.Load(context.Background()))
	return NewMemoryStorage(context.Background(), store, logger.Nop())
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	s := loadedStorage(t, scenarioCatalog())

	category := "b"
	maxPrice := decimal.NewFromInt(100)
	f := s.UpdateFilter(ctx, &category, &maxPrice)
	assert.Equal(t, "b", f.Category)

	visible := s.VisibleProducts(ctx)
	require.Len(t, visible, 1)
	assert.Equal(t, 2, visible[0].ID)

	_, err := s.AddToCart(ctx, 2)
	require.NoError(t, err)
	view, err := s.AddToCart(ctx, 2)
	require.NoError(t, err)

	require.Len(t, view.Entries, 1)
	assert.Equal(t, 2, view.Entries[0].Product.ID)
	assert.Equal(t, 2, view.Entries[0].Quantity)
	assert.Equal(t, "100", view.Totals.Subtotal.String())
	assert.Equal(t, "10", view.Totals.Discount.String())
	assert.Equal(t, "90", view.Totals.Total.String())
}

func TestUpdateFilterKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	s := loadedStorage(t, scenarioCatalog())

	category := "a"
	s.UpdateFilter(ctx, &category, nil)
	maxPrice := decimal.NewFromInt(10)
	f := s.UpdateFilter(ctx, nil, &maxPrice)

	assert.Equal(t, "a", f.Category)
	assert.Equal(t, "10", f.MaxPrice.String())
	assert.Empty(t, s.VisibleProducts(ctx))

	f = s.ResetFilter(ctx)
	assert.Equal(t, "", f.Category)
	assert.Equal(t, "1000", f.MaxPrice.String())
	assert.Len(t, s.VisibleProducts(ctx), 2)
}

func TestAddToCartErrors(t *testing.T) {
	ctx := context.Background()
	s := loadedStorage(t, scenarioCatalog())

	_, err := s.AddToCart(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	idle := NewMemoryStorage(ctx, catalog.NewStore(&staticSource{}, logger.Nop()), logger.Nop())
	_, err = idle.AddToCart(ctx, 1)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestCartTransitions(t *testing.T) {
	ctx := context.Background()
	s := loadedStorage(t, scenarioCatalog())

	_, err := s.AddToCart(ctx, 1)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, 2)
	require.NoError(t, err)

	view := s.UpdateQuantity(ctx, 1, 2)
	assert.Equal(t, 4, view.Totals.TotalItems)

	view = s.UpdateQuantity(ctx, 1, -3)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, 2, view.Entries[0].Product.ID)

	view = s.UpdateQuantity(ctx, 7, 1)
	assert.Len(t, view.Entries, 1)

	view = s.RemoveFromCart(ctx, 2)
	assert.Empty(t, view.Entries)
	assert.True(t, view.Totals.Total.IsZero())
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	source := &staticSource{err: errors.New("connection refused")}
	store := catalog.NewStore(source, logger.Nop())
	defer store.Close()
	require.Error(t, store.Load(ctx))

	s := NewMemoryStorage(ctx, store, logger.Nop())
	assert.Equal(t, models.CatalogFailed, s.Status(ctx).State)

	source.err = nil
	source.products = scenarioCatalog()
	require.NoError(t, s.Reload(ctx))
	<-store.Done()

	assert.Equal(t, models.CatalogLoaded, s.Status(ctx).State)
	assert.Equal(t, []string{"a", "b"}, s.Categories(ctx))

	err := s.Reload(ctx)
	assert.ErrorIs(t, err, ErrConflict)
}
