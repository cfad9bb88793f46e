package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/registry"
)

// StepSource resolves step definitions for shape selection. *registry.Registry
// satisfies it.
type StepSource interface {
	Lookup(name string) (registry.Step, bool)
}

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []string
	FailedStep   string
}

// GenerateMermaid produces a Mermaid flowchart for g.
// Shapes:
// - Entry: ((Circle))
// - Generative: [[Subroutine]]
// - Terminal (no outgoing routes): ([Stadium])
// - Default: [Rectangle]
// Guarded routes carry their label. steps and overlay may be nil.
func GenerateMermaid(g *domain.Graph, steps StepSource, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, name := range g.Steps() {
		safeID := sanitizeMermaidID(name)
		routes := g.Routes(name)

		opener, closer := "[", "]"
		switch {
		case name == g.Entry():
			opener, closer = "((", "))"
		case isGenerative(steps, name):
			opener, closer = "[[", "]]"
		case len(routes) == 0:
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, name, closer))

		for _, r := range routes {
			arrow := "-->"
			if !r.Unconditional() {
				label := r.Label
				if label == "" {
					label = "guard"
				}
				// Mermaid labels cannot contain double quotes
				arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(label, "\"", "'"))
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(r.Target)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(name)
			if safeID == "" || seen[safeID] || name == overlay.FailedStep {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
		}
		if overlay.FailedStep != "" {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", sanitizeMermaidID(overlay.FailedStep)))
		}
	}

	return sb.String()
}

func isGenerative(steps StepSource, name string) bool {
	if steps == nil {
		return false
	}
	step, ok := steps.Lookup(name)
	return ok && step.Kind == registry.KindGenerative
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
