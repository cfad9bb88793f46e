package dsl

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/scribe/internal/validator"
	"github.com/aretw0/scribe/pkg/domain"
)

// Catalog is the set of defined steps a graph may reference.
// *registry.Registry satisfies it.
type Catalog = validator.Catalog

type link struct {
	from  string
	route domain.Route
}

// Builder records topology calls and validates them on Build.
// It holds no run-time state and can be discarded after Build.
type Builder struct {
	steps    Catalog
	logger   *slog.Logger
	entry    string
	links    []link
	branched map[string]bool
	problems []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build warnings such as unreachable steps.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New creates a builder over the given step catalog.
func New(steps Catalog, opts ...Option) *Builder {
	b := &Builder{
		steps:    steps,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		branched: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Entry sets the step a run starts from.
func (b *Builder) Entry(step string) *Builder {
	b.entry = step
	return b
}

// Link adds one unconditional edge.
func (b *Builder) Link(from, to string) *Builder {
	b.links = append(b.links, link{from: from, route: domain.Route{Target: to}})
	return b
}

// Sequence links each step to the next one unconditionally.
func (b *Builder) Sequence(steps ...string) *Builder {
	for i := 0; i+1 < len(steps); i++ {
		b.Link(steps[i], steps[i+1])
	}
	return b
}

// Branch adds the ordered guarded routes leaving source. At run time the
// first route whose condition holds is taken; if none holds the run ends.
// A step accepts a single Branch call.
func (b *Builder) Branch(source string, routes ...RouteSpec) *Builder {
	if len(routes) == 0 {
		b.problems = append(b.problems, fmt.Sprintf("branch from '%s' declares no routes", source))
		return b
	}
	if b.branched[source] {
		b.problems = append(b.problems, fmt.Sprintf("step '%s' declares more than one branch", source))
		return b
	}
	b.branched[source] = true

	for _, r := range routes {
		if r.cond.Guard == nil {
			b.problems = append(b.problems, fmt.Sprintf("route from '%s' to '%s' has no condition", source, r.target))
			continue
		}
		b.links = append(b.links, link{
			from:  source,
			route: domain.Route{Target: r.target, Guard: r.cond.Guard, Label: r.cond.Label},
		})
	}
	return b
}

// Build validates the recorded topology and returns the immutable graph.
// All problems are reported together in a single GraphConfigurationError.
func (b *Builder) Build() (*domain.Graph, error) {
	routes := make(map[string][]domain.Route)
	for _, l := range b.links {
		routes[l.from] = append(routes[l.from], l.route)
	}
	g := domain.NewGraph(b.entry, routes)

	report := validator.ValidateGraph(g, b.steps)
	report.Problems = append(append([]string(nil), b.problems...), report.Problems...)
	if err := report.Err(); err != nil {
		return nil, err
	}

	for _, id := range report.Unreachable {
		b.logger.Warn("step is unreachable from entry", "step", id, "entry", b.entry)
	}
	return g, nil
}
