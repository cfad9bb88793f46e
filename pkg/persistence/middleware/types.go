// Package middleware decorates response caches with extra behavior.
package middleware

import "github.com/aretw0/scribe/pkg/ports"

// Middleware allows wrapping a ResponseCache to add behavior.
type Middleware func(ports.ResponseCache) ports.ResponseCache

// Chain applies mws so that the first one is the outermost.
func Chain(cache ports.ResponseCache, mws ...Middleware) ports.ResponseCache {
	for i := len(mws) - 1; i >= 0; i-- {
		cache = mws[i](cache)
	}
	return cache
}
