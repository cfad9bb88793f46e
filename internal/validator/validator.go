package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/scribe/pkg/domain"
)

// Catalog reports which step names are defined.
type Catalog interface {
	Has(name string) bool
}

// Report is the outcome of a graph check. Problems prevent execution;
// Unreachable steps are only worth a warning.
type Report struct {
	Problems    []string
	Unreachable []string
}

// Err returns a GraphConfigurationError carrying every problem, or nil.
func (r Report) Err() error {
	if len(r.Problems) == 0 {
		return nil
	}
	return &domain.GraphConfigurationError{Problems: append([]string(nil), r.Problems...)}
}

// ValidateGraph checks that every step the graph mentions is defined, that
// each source has either one unconditional route or only guarded routes,
// that the entry step exists and that no cycle exists.
func ValidateGraph(g *domain.Graph, steps Catalog) Report {
	var report Report

	entry := g.Entry()
	if entry == "" {
		report.Problems = append(report.Problems, "no entry step set")
	} else if !steps.Has(entry) {
		report.Problems = append(report.Problems, fmt.Sprintf("entry step '%s' is not registered", entry))
	}

	for _, from := range g.Sources() {
		if !steps.Has(from) {
			report.Problems = append(report.Problems, fmt.Sprintf("source step '%s' is not registered", from))
		}

		unconditional, guarded := 0, 0
		for _, r := range g.Routes(from) {
			if r.Target == "" {
				report.Problems = append(report.Problems, fmt.Sprintf("step '%s' has a route with no target", from))
				continue
			}
			if !steps.Has(r.Target) {
				report.Problems = append(report.Problems, fmt.Sprintf("step '%s' links to unregistered step '%s'", from, r.Target))
			}
			if r.Unconditional() {
				unconditional++
			} else {
				guarded++
			}
		}

		switch {
		case unconditional > 1:
			report.Problems = append(report.Problems, fmt.Sprintf("step '%s' has %d unconditional links", from, unconditional))
		case unconditional == 1 && guarded > 0:
			report.Problems = append(report.Problems, fmt.Sprintf("step '%s' mixes an unconditional link with a branch", from))
		}
	}

	if cycle := findCycle(g); cycle != nil {
		report.Problems = append(report.Problems, "cycle detected: "+strings.Join(cycle, " -> "))
	}

	if entry != "" {
		report.Unreachable = unreachable(g, entry)
	}
	return report
}

// Reachable crawls the graph from start and returns the visited steps in
// breadth-first order.
func Reachable(g *domain.Graph, start string) []string {
	visited := map[string]bool{start: true}
	order := []string{start}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, r := range g.Routes(current) {
			if r.Target == "" || visited[r.Target] {
				continue
			}
			visited[r.Target] = true
			order = append(order, r.Target)
			queue = append(queue, r.Target)
		}
	}
	return order
}

func unreachable(g *domain.Graph, entry string) []string {
	seen := make(map[string]bool)
	for _, id := range Reachable(g, entry) {
		seen[id] = true
	}
	var out []string
	for _, id := range g.Steps() {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

const (
	white = iota
	grey
	black
)

// findCycle returns the first cycle found as a closed path, or nil.
func findCycle(g *domain.Graph) []string {
	color := make(map[string]int)
	var path []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		path = append(path, id)
		for _, r := range g.Routes(id) {
			switch color[r.Target] {
			case grey:
				for i, p := range path {
					if p == r.Target {
						cycle = append(append([]string(nil), path[i:]...), r.Target)
						break
					}
				}
				return true
			case white:
				if visit(r.Target) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return false
	}

	for _, id := range g.Steps() {
		if color[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}
