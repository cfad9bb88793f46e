package scribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/scribe/internal/runtime"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/registry"
)

// ErrNoResult is returned by Result when a finished run did not produce
// the expected key.
var ErrNoResult = errors.New("run produced no result")

// Engine is the high-level entry point of the library.
// It wraps the internal runtime and is safe for concurrent runs.
type Engine struct {
	runtime  *runtime.Engine
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxSteps int
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSteps caps the number of steps a single run may execute.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithName labels the workflow in logs and lifecycle events.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New binds a built graph to a snapshot of the registry.
func New(g *domain.Graph, steps *registry.Registry, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	rt, err := runtime.NewEngine(g, steps,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithMaxSteps(eng.maxSteps),
		runtime.WithFlowName(eng.Name),
	)
	if err != nil {
		return nil, err
	}
	eng.runtime = rt
	return eng, nil
}

// Run executes one workflow run from a copy of initial.
func (e *Engine) Run(ctx context.Context, initial map[string]any) (domain.Context, error) {
	return e.runtime.Run(ctx, initial)
}

// RunWithID executes one run under a caller-chosen identifier.
func (e *Engine) RunWithID(ctx context.Context, runID string, initial map[string]any) (domain.Context, error) {
	return e.runtime.RunWithID(ctx, runID, initial)
}

// Graph returns the bound graph for introspection.
func (e *Engine) Graph() *domain.Graph {
	return e.runtime.Graph()
}

// Steps returns the registry snapshot bound to the engine.
func (e *Engine) Steps() *registry.Registry {
	return e.runtime.Steps()
}

// Result returns the value of key from a finished run, or ErrNoResult.
func Result(c domain.Context, key string) (any, error) {
	v, ok := c.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q not in final context", ErrNoResult, key)
	}
	return v, nil
}
