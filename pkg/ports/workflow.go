package ports

import (
	"context"

	"github.com/aretw0/scribe/pkg/domain"
)

// Workflow is a runnable graph. *scribe.Engine implements it.
type Workflow interface {
	// RunWithID executes one run from a copy of initial.
	RunWithID(ctx context.Context, runID string, initial map[string]any) (domain.Context, error)

	// Graph returns the graph for introspection.
	Graph() *domain.Graph
}

// WorkflowCatalog resolves workflows by name for the outer surfaces.
type WorkflowCatalog interface {
	// Names lists the available workflows, sorted.
	Names() []string

	// Workflow returns the named workflow, or false if unknown.
	Workflow(name string) (Workflow, bool)
}
