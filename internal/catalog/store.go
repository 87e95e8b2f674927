// Package catalog loads the product catalog once and keeps it read-only.
package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/drstein77/shophub/internal/models"
)

// Source returns the full product list.
type Source interface {
	Fetch(ctx context.Context) ([]models.Product, error)
}

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Store is the catalog and the categories derived from it.
//
// The lifecycle is idle -> loading -> loaded | failed. A failed load can be
// retried; a loaded catalog is never fetched again.
type Store struct {
	source Source
	log    Log

	mx         sync.RWMutex
	state      models.CatalogState
	products   []models.Product
	categories []string
	err        *LoadError
	done       chan struct{}
	cancel     context.CancelFunc
	closed     bool

	wg sync.WaitGroup
}

// NewStore creates an idle store reading from source.
func NewStore(source Source, log Log) *Store {
	return &Store{
		source: source,
		log:    log,
		state:  models.CatalogIdle,
	}
}

// Load fetches the catalog and blocks until it is loaded or has failed.
// If a load is already in flight it waits for that one instead.
func (s *Store) Load(ctx context.Context) error {
	ctx, done, ok := s.begin(ctx)
	if !ok {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		return s.Err()
	}
	defer s.wg.Done()
	return s.fetch(ctx, done)
}

// Start loads the catalog in the background. Close cancels it.
func (s *Store) Start(ctx context.Context) {
	ctx, done, ok := s.begin(ctx)
	if !ok {
		return
	}
	go func() {
		defer s.wg.Done()
		_ = s.fetch(ctx, done)
	}()
}

// Close cancels an in-flight load, started by Load or Start, and waits for
// it to return. Further Load and Start calls do not fetch.
func (s *Store) Close() {
	s.mx.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mx.Unlock()
	s.wg.Wait()
}

// begin moves the store into loading. ok is false when no new fetch is
// needed; done then belongs to the current or finished load. When ok is
// true the caller owns one count on s.wg.
func (s *Store) begin(parent context.Context) (context.Context, chan struct{}, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()

	switch {
	case s.state == models.CatalogLoading:
		return parent, s.done, false
	case s.state == models.CatalogLoaded, s.closed:
		return parent, closedCh, false
	}

	ctx, cancel := context.WithCancel(parent)
	s.state = models.CatalogLoading
	s.err = nil
	s.done = make(chan struct{})
	s.cancel = cancel
	s.wg.Add(1)
	return ctx, s.done, true
}

func (s *Store) fetch(ctx context.Context, done chan struct{}) error {
	products, err := s.source.Fetch(ctx)

	s.mx.Lock()
	defer s.mx.Unlock()
	defer close(done)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if err != nil {
		s.err = asLoadError(ctx, err)
		s.state = models.CatalogFailed
		s.products = nil
		s.categories = nil
		s.log.Error("Failed to load catalog", zap.Error(s.err), zap.String("kind", string(s.err.Kind)))
		return s.err
	}

	s.products = products
	s.categories = Categories(products)
	s.state = models.CatalogLoaded
	s.log.Info("Catalog loaded", zap.Int("products", len(products)), zap.Int("categories", len(s.categories)))
	return nil
}

func asLoadError(ctx context.Context, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	if ctx.Err() != nil {
		return &LoadError{Kind: KindCanceled, Err: err}
	}
	return &LoadError{Kind: KindNetwork, Err: err}
}

// Done returns a channel closed once the current load has finished.
// It is already closed when no load is in flight.
func (s *Store) Done() <-chan struct{} {
	s.mx.RLock()
	defer s.mx.RUnlock()
	if s.state != models.CatalogLoading {
		return closedCh
	}
	return s.done
}

// State returns the current lifecycle state.
func (s *Store) State() models.CatalogState {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.state
}

// Err returns the last load failure, or nil.
func (s *Store) Err() error {
	s.mx.RLock()
	defer s.mx.RUnlock()
	if s.err == nil {
		return nil
	}
	return s.err
}

// Status summarizes the lifecycle for the view.
func (s *Store) Status() models.CatalogStatus {
	s.mx.RLock()
	defer s.mx.RUnlock()
	st := models.CatalogStatus{State: s.state, Count: len(s.products)}
	if s.err != nil {
		st.Error = s.err.Error()
		st.Retryable = s.err.Retryable()
	}
	return st
}

// Products returns the loaded catalog. The slice must not be modified.
func (s *Store) Products() []models.Product {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.products
}

// Categories returns the distinct categories of the loaded catalog.
func (s *Store) Categories() []string {
	s.mx.RLock()
	defer s.mx.RUnlock()
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Product looks up a loaded product by id.
func (s *Store) Product(id int) (models.Product, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	if s.state != models.CatalogLoaded {
		return models.Product{}, ErrNotLoaded
	}
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// Categories lists the distinct categories of products in order of first appearance.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
