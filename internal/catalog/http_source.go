package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/drstein77/shophub/internal/models"
)

// DefaultURL is the public product catalog used when none is configured.
const DefaultURL = "https://fakestoreapi.com/products"

// HTTPSource fetches the catalog with a single GET returning a JSON array of products.
type HTTPSource struct {
	httpClient *http.Client
	url        string
}

// NewHTTPSource creates a source for url. A non-positive timeout disables the client timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	if timeout < 0 {
		timeout = 0
	}
	return &HTTPSource{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

// Fetch downloads and decodes the product list. Every failure is a *LoadError.
func (s *HTTPSource) Fetch(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &LoadError{Kind: KindNetwork, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &LoadError{Kind: KindCanceled, Err: ctx.Err()}
		}
		return nil, &LoadError{Kind: KindNetwork, Err: fmt.Errorf("failed to make request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		if ctx.Err() != nil {
			return nil, &LoadError{Kind: KindCanceled, Err: ctx.Err()}
		}
		return nil, &LoadError{Kind: KindDecode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return products, nil
}
