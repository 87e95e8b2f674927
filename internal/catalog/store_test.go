package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/drstein77/shophub/internal/logger"
	"github.com/drstein77/shophub/internal/models"
)

type fakeSource struct {
	mu       sync.Mutex
	calls    int
	results  []error
	products []models.Product
	block    chan struct{}
}

func (f *fakeSource) Fetch(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if call < len(f.results) && f.results[call] != nil {
		return nil, f.results[call]
	}
	return f.products, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Category: "men's clothing"},
		{ID: 2, Title: "Ring", Price: decimal.RequireFromString("9.99"), Category: "jewelery"},
		{ID: 3, Title: "T-Shirt", Price: decimal.RequireFromString("22.3"), Category: "men's clothing"},
		{ID: 4, Title: "SSD", Price: decimal.RequireFromString("64"), Category: "electronics"},
	}
}

func TestLoadDerivesCategories(t *testing.T) {
	store := NewStore(&fakeSource{products: sampleProducts()}, logger.Nop())

	require.NoError(t, store.Load(context.Background()))

	assert.Equal(t, models.CatalogLoaded, store.State())
	assert.Len(t, store.Products(), 4)
	assert.Equal(t, []string{"men's clothing", "jewelery", "electronics"}, store.Categories())
	assert.Equal(t, models.CatalogStatus{State: models.CatalogLoaded, Count: 4}, store.Status())
}

func TestLoadedEmptyIsNotFailure(t *testing.T) {
	store := NewStore(&fakeSource{}, logger.Nop())

	require.NoError(t, store.Load(context.Background()))

	st := store.Status()
	assert.Equal(t, models.CatalogLoaded, st.State)
	assert.Empty(t, st.Error)
	assert.Equal(t, 0, st.Count)
	assert.Empty(t, store.Categories())
}

func TestLoadFailureIsSurfacedAndRetryable(t *testing.T) {
	source := &fakeSource{
		results:  []error{&LoadError{Kind: KindStatus, StatusCode: 503, Err: errors.New("Service Unavailable")}},
		products: sampleProducts(),
	}
	store := NewStore(source, logger.Nop())

	err := store.Load(context.Background())
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, KindStatus, le.Kind)

	st := store.Status()
	assert.Equal(t, models.CatalogFailed, st.State)
	assert.True(t, st.Retryable)
	assert.Contains(t, st.Error, "503")
	assert.Empty(t, store.Products())

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, models.CatalogLoaded, store.State())
	assert.Equal(t, 2, source.Calls())
}

func TestPlainErrorsAreWrapped(t *testing.T) {
	store := NewStore(&fakeSource{results: []error{errors.New("dial tcp: refused")}}, logger.Nop())

	err := store.Load(context.Background())

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, KindNetwork, le.Kind)
	assert.True(t, le.Retryable())
}

func TestLoadIsFetchedOnce(t *testing.T) {
	source := &fakeSource{products: sampleProducts()}
	store := NewStore(source, logger.Nop())

	require.NoError(t, store.Load(context.Background()))
	require.NoError(t, store.Load(context.Background()))
	store.Start(context.Background())
	<-store.Done()

	assert.Equal(t, 1, source.Calls())
}

func TestProductLookup(t *testing.T) {
	store := NewStore(&fakeSource{products: sampleProducts()}, logger.Nop())

	_, err := store.Product(1)
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, store.Load(context.Background()))

	p, err := store.Product(2)
	require.NoError(t, err)
	assert.Equal(t, "Ring", p.Title)

	_, err = store.Product(99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestStartRunsInBackground(t *testing.T) {
	defer goleak.VerifyNone(t)

	block := make(chan struct{})
	store := NewStore(&fakeSource{products: sampleProducts(), block: block}, logger.Nop())

	store.Start(context.Background())
	assert.Equal(t, models.CatalogLoading, store.State())

	close(block)
	select {
	case <-store.Done():
	case <-time.After(time.Second):
		t.Fatal("catalog load did not finish")
	}
	assert.Equal(t, models.CatalogLoaded, store.State())
	store.Close()
}

func TestCloseCancelsInFlightLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewStore(&fakeSource{products: sampleProducts(), block: make(chan struct{})}, logger.Nop())
	store.Start(context.Background())

	store.Close()

	st := store.Status()
	assert.Equal(t, models.CatalogFailed, st.State)
	assert.False(t, st.Retryable)

	store.Start(context.Background())
	assert.Equal(t, models.CatalogFailed, store.State())
}

// lingeringSource takes a while to unwind after its context is canceled.
type lingeringSource struct {
	started  chan struct{}
	finished atomic.Bool
}

func (l *lingeringSource) Fetch(ctx context.Context) ([]models.Product, error) {
	close(l.started)
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	l.finished.Store(true)
	return nil, ctx.Err()
}

func TestCloseWaitsForSynchronousLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &lingeringSource{started: make(chan struct{})}
	store := NewStore(source, logger.Nop())

	errCh := make(chan error, 1)
	go func() {
		errCh <- store.Load(context.Background())
	}()
	<-source.started

	store.Close()

	assert.True(t, source.finished.Load(), "Close returned before Load finished fetching")
	var le *LoadError
	require.ErrorAs(t, <-errCh, &le)
	assert.Equal(t, KindCanceled, le.Kind)
	assert.Equal(t, models.CatalogFailed, store.State())
}

func TestConcurrentLoadWaitsForInFlight(t *testing.T) {
	block := make(chan struct{})
	source := &fakeSource{products: sampleProducts(), block: block}
	store := NewStore(source, logger.Nop())
	store.Start(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- store.Load(context.Background())
	}()

	close(block)
	require.NoError(t, <-errCh)
	assert.Equal(t, 1, source.Calls())
	store.Close()
}
