package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/scribe/internal/validator"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/registry"
	"github.com/google/uuid"
)

// Engine executes a validated graph one step at a time.
// It is read-only after construction and safe for concurrent runs.
type Engine struct {
	graph    *domain.Graph
	steps    *registry.Registry
	flow     string
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSteps int
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps caps the number of steps a single run may execute.
// Zero or a negative value means unlimited.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithFlowName names the workflow in logs and events.
func WithFlowName(name string) Option {
	return func(e *Engine) {
		e.flow = name
	}
}

// NewEngine binds a graph to a snapshot of the registry. The graph is
// checked again against the snapshot; a GraphConfigurationError prevents
// any run.
func NewEngine(g *domain.Graph, steps *registry.Registry, opts ...Option) (*Engine, error) {
	if g == nil || steps == nil {
		return nil, &domain.GraphConfigurationError{Problems: []string{"engine requires a graph and a registry"}}
	}

	e := &Engine{
		graph:  g,
		steps:  steps.Snapshot(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := validator.ValidateGraph(g, e.steps).Err(); err != nil {
		return nil, err
	}
	return e, nil
}

// Graph returns the bound graph.
func (e *Engine) Graph() *domain.Graph {
	return e.graph
}

// Steps returns the registry snapshot the engine executes against.
func (e *Engine) Steps() *registry.Registry {
	return e.steps
}

// Flow returns the configured workflow name.
func (e *Engine) Flow() string {
	return e.flow
}

// Run executes the graph from its entry step with a copy of initial as the
// context and returns the final context. The first error aborts the run
// and is returned as is; no partial context is returned.
func (e *Engine) Run(ctx context.Context, initial map[string]any) (domain.Context, error) {
	return e.RunWithID(ctx, uuid.NewString(), initial)
}

// RunWithID is Run with a caller-supplied run identifier.
func (e *Engine) RunWithID(ctx context.Context, runID string, initial map[string]any) (domain.Context, error) {
	c := domain.NewContext(initial)
	logger := e.logger.With("run_id", runID)
	if e.flow != "" {
		logger = logger.With("flow", e.flow)
	}

	started := time.Now()
	e.emitRunStart(ctx, runID)
	logger.InfoContext(ctx, "run started", "entry", e.graph.Entry(), "keys", len(c))

	executed, err := e.loop(ctx, runID, c, logger)

	e.emitRunFinish(ctx, runID, executed, time.Since(started), err)
	if err != nil {
		logger.ErrorContext(ctx, "run failed", "step", domain.FailedStep(err), "steps", executed, "error", err)
		return nil, err
	}
	logger.InfoContext(ctx, "run finished", "steps", executed, "took", time.Since(started))
	return c, nil
}

func (e *Engine) loop(ctx context.Context, runID string, c domain.Context, logger *slog.Logger) (int, error) {
	current := e.graph.Entry()
	executed := 0

	for {
		if err := ctx.Err(); err != nil {
			return executed, fmt.Errorf("run cancelled before step '%s': %w", current, err)
		}
		if e.maxSteps > 0 && executed >= e.maxSteps {
			return executed, fmt.Errorf("%w: %d steps executed, next was '%s'", domain.ErrStepLimitExceeded, executed, current)
		}

		if err := e.execute(ctx, runID, current, c, logger); err != nil {
			return executed + 1, err
		}
		executed++

		next, ok, err := e.next(current, c)
		if err != nil {
			return executed, err
		}
		if !ok {
			if len(e.graph.Routes(current)) > 0 {
				logger.DebugContext(ctx, "no route matched, run ends", "step", current)
			}
			return executed, nil
		}
		current = next
	}
}

// next evaluates the routes of current like Graph.Next, turning a panicking
// guard into an error attributed to current.
func (e *Engine) next(current string, c domain.Context) (target string, ok bool, err error) {
	routes := e.graph.Routes(current)
	for _, r := range routes {
		if r.Unconditional() {
			return r.Target, true, nil
		}
	}

	var label string
	defer func() {
		if p := recover(); p != nil {
			target, ok = "", false
			err = &domain.StepExecutionError{Step: current, Err: fmt.Errorf("guard %q: panic: %v", label, p)}
		}
	}()
	for _, r := range routes {
		label = r.Label
		if r.Guard(c) {
			return r.Target, true, nil
		}
	}
	return "", false, nil
}

func (e *Engine) execute(ctx context.Context, runID, name string, c domain.Context, logger *slog.Logger) error {
	step, _ := e.steps.Lookup(name)

	e.emitStepEnter(ctx, runID, step)
	logger.DebugContext(ctx, "step started", "step", name, "kind", step.Kind)

	started := time.Now()
	err := e.steps.Invoke(ctx, name, c)
	took := time.Since(started)

	e.emitStepLeave(ctx, runID, step, took, err)
	if err != nil {
		return err
	}
	logger.DebugContext(ctx, "step finished", "step", name, "output", step.Output, "took", took)
	return nil
}
