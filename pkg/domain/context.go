package domain

import (
	"fmt"
	"sort"
)

// Context is the string-keyed store shared by every step of a single run.
// Steps communicate exclusively through it: each step reads its declared inputs
// and writes exactly one output key.
//
// A Context is owned by one run and is not safe for concurrent mutation.
type Context map[string]any

// NewContext creates a Context pre-populated with a copy of initial.
// The caller's map is never aliased.
func NewContext(initial map[string]any) Context {
	c := make(Context, len(initial))
	for k, v := range initial {
		c[k] = v
	}
	return c
}

// Get returns the value stored under key, or an error wrapping ErrMissingKey.
func (c Context) Get(key string) (any, error) {
	v, ok := c[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return v, nil
}

// Lookup returns the value stored under key and whether it was present.
func (c Context) Lookup(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// Set stores value under key, overwriting any previous value.
func (c Context) Set(key string, value any) {
	c[key] = value
}

// Has reports whether key is present.
func (c Context) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Clone returns a shallow copy of the Context.
func (c Context) Clone() Context {
	return NewContext(c)
}

// Keys returns the context keys in lexical order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
