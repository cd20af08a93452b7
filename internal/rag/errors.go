package rag

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks fatal construction-time failures: an
// unsupported provider kind or a missing credential. The process must
// not start serving when it occurs.
var ErrConfiguration = errors.New("configuration error")

// ConfigErrorf wraps ErrConfiguration with context.
func ConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// ValidationError is a malformed or out-of-contract request. Always
// recoverable; surfaced to the caller as a structured error.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// DimensionMismatchError is raised when a query vector's dimension
// disagrees with the store's configured dimension. Recoverable at
// query scope.
type DimensionMismatchError struct {
	Want, Got int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension %d does not match store dimension %d", e.Got, e.Want)
}

// ProviderError wraps any remote-call failure (network, auth,
// throttling) from an embedding, store, or generative dependency.
// Providers never retry internally; retry policy belongs to callers.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
