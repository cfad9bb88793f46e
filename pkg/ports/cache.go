package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by ResponseCache.Get when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

// ResponseCache memoizes generation responses keyed by model and prompt.
// It holds no workflow state; runs are never resumed from it.
type ResponseCache interface {
	// Get returns the cached response or ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a response, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
