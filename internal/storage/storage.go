package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/drstein77/shophub/internal/cart"
	"github.com/drstein77/shophub/internal/catalog"
	"github.com/drstein77/shophub/internal/filter"
	"github.com/drstein77/shophub/internal/models"
)

var (
	ErrConflict  = errors.New("data conflict")
	ErrNotFound  = errors.New("not found")
	ErrNotLoaded = catalog.ErrNotLoaded
)

type Log interface {
	Info(string, ...zap.Field)
}

// Catalog is the read side of catalog.Store.
type Catalog interface {
	Start(context.Context)
	Status() models.CatalogStatus
	Products() []models.Product
	Categories() []string
	Product(id int) (models.Product, error)
}

// CartView is the cart with its derived totals.
type CartView struct {
	Entries []models.CartEntry `json:"entries"`
	Totals  models.Totals      `json:"totals"`
}

// MemoryStorage is one shopping session: the catalog, the active filter
// and the cart. Handlers run concurrently, so all state sits behind mx.
type MemoryStorage struct {
	ctx context.Context
	mx  sync.RWMutex

	catalog Catalog
	filter  *filter.State
	cart    *cart.Cart
	log     Log
}

// NewMemoryStorage creates a session with a default filter and an empty cart.
// ctx bounds catalog reloads triggered through Reload.
func NewMemoryStorage(ctx context.Context, catalog Catalog, log Log) *MemoryStorage {
	return &MemoryStorage{
		ctx:     ctx,
		catalog: catalog,
		filter:  filter.New(),
		cart:    cart.New(),
		log:     log,
	}
}

func (s *MemoryStorage) Status(_ context.Context) models.CatalogStatus {
	return s.catalog.Status()
}

// Reload retries a failed catalog load in the background.
// It returns ErrConflict once the catalog is loaded.
func (s *MemoryStorage) Reload(_ context.Context) error {
	switch s.catalog.Status().State {
	case models.CatalogLoaded:
		return fmt.Errorf("%w: catalog already loaded", ErrConflict)
	case models.CatalogLoading:
		return nil
	}
	s.log.Info("Reloading catalog")
	s.catalog.Start(s.ctx)
	return nil
}

func (s *MemoryStorage) Categories(_ context.Context) []string {
	return s.catalog.Categories()
}

// VisibleProducts applies the current filter to the catalog.
func (s *MemoryStorage) VisibleProducts(_ context.Context) []models.Product {
	s.mx.RLock()
	f := s.filter.Current()
	s.mx.RUnlock()
	return filter.Visible(s.catalog.Products(), f)
}

func (s *MemoryStorage) Filter(_ context.Context) models.Filter {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.filter.Current()
}

// UpdateFilter changes the fields that are non-nil and returns the result.
func (s *MemoryStorage) UpdateFilter(_ context.Context, category *string, maxPrice *decimal.Decimal) models.Filter {
	s.mx.Lock()
	defer s.mx.Unlock()
	if category != nil {
		s.filter.SetCategory(*category)
	}
	if maxPrice != nil {
		s.filter.SetMaxPrice(*maxPrice)
	}
	return s.filter.Current()
}

func (s *MemoryStorage) ResetFilter(_ context.Context) models.Filter {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.filter.Reset()
	return s.filter.Current()
}

func (s *MemoryStorage) Cart(_ context.Context) CartView {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.cartView()
}

// AddToCart adds one unit of the catalog product id.
func (s *MemoryStorage) AddToCart(_ context.Context, id int) (CartView, error) {
	p, err := s.catalog.Product(id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return CartView{}, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return CartView{}, err
	}

	s.mx.Lock()
	defer s.mx.Unlock()
	s.cart.Add(p)
	s.log.Info("Added to cart", zap.Int("product_id", id), zap.Int("quantity", s.cart.Quantity(id)))
	return s.cartView(), nil
}

// UpdateQuantity shifts the quantity of id by delta; unknown ids are ignored.
func (s *MemoryStorage) UpdateQuantity(_ context.Context, id, delta int) CartView {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.cart.UpdateQuantity(id, delta)
	return s.cartView()
}

func (s *MemoryStorage) RemoveFromCart(_ context.Context, id int) CartView {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.cart.Remove(id)
	return s.cartView()
}

func (s *MemoryStorage) cartView() CartView {
	return CartView{
		Entries: s.cart.Entries(),
		Totals:  s.cart.Totals().Rounded(),
	}
}
