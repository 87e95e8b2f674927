package catalog

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned when an operation needs products before the
// catalog has finished loading.
var ErrNotLoaded = errors.New("catalog not loaded")

// ErrProductNotFound is returned for an id absent from the catalog.
var ErrProductNotFound = errors.New("product not found")

// ErrorKind classifies why a catalog load failed.
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindStatus   ErrorKind = "status"
	KindDecode   ErrorKind = "decode"
	KindCanceled ErrorKind = "canceled"
)

// LoadError describes a failed catalog load. It is kept by the Store so the
// view can tell a failure apart from a catalog that loaded with no products.
type LoadError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *LoadError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("catalog load failed: source returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog load failed (%s): %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Retryable reports whether calling Load again may succeed.
func (e *LoadError) Retryable() bool {
	return e.Kind != KindCanceled
}
