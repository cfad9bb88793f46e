package domain

import "sort"

// Guard is a predicate over the current Context that decides whether a route fires.
type Guard func(Context) bool

// Route is a directed edge from a step to a target step.
// A nil Guard marks an unconditional route.
type Route struct {
	Target string
	Guard  Guard
	// Label describes the guard for visualization (e.g. `file_type == "pdf"`).
	Label string
}

// Unconditional reports whether the route fires regardless of the Context.
func (r Route) Unconditional() bool {
	return r.Guard == nil
}

// Graph is the immutable transition table of a workflow: an entry step plus
// the ordered outgoing routes of every step.
type Graph struct {
	entry  string
	routes map[string][]Route
}

// NewGraph creates a Graph, copying routes so later changes to the argument
// have no effect. It performs no validation; use the dsl builder for that.
func NewGraph(entry string, routes map[string][]Route) *Graph {
	g := &Graph{
		entry:  entry,
		routes: make(map[string][]Route, len(routes)),
	}
	for from, rs := range routes {
		g.routes[from] = append([]Route(nil), rs...)
	}
	return g
}

// Entry returns the step a run starts from.
func (g *Graph) Entry() string {
	return g.entry
}

// Routes returns a copy of the outgoing routes of step, in declaration order.
func (g *Graph) Routes(step string) []Route {
	return append([]Route(nil), g.routes[step]...)
}

// Sources returns every step that has outgoing routes, sorted.
func (g *Graph) Sources() []string {
	ids := make([]string, 0, len(g.routes))
	for id := range g.routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Steps returns every step mentioned by the graph (entry, sources and
// targets), sorted.
func (g *Graph) Steps() []string {
	seen := map[string]bool{}
	if g.entry != "" {
		seen[g.entry] = true
	}
	for from, rs := range g.routes {
		seen[from] = true
		for _, r := range rs {
			seen[r.Target] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Next picks the route to follow from step given the updated Context.
// An unconditional route always wins; otherwise the first guard returning
// true wins. ok is false when nothing matches, which ends the run.
func (g *Graph) Next(step string, c Context) (target string, ok bool) {
	rs := g.routes[step]
	for _, r := range rs {
		if r.Unconditional() {
			return r.Target, true
		}
	}
	for _, r := range rs {
		if r.Guard(c) {
			return r.Target, true
		}
	}
	return "", false
}
