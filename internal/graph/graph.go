// Package graph maintains the in-memory dependency graph between workspace
// members. It enforces the workspace invariants: no self edges, no duplicate
// edges, and no cycles through member-only edges. External dependencies never
// enter the graph.
package graph

import (
	"fmt"
	"sort"

	"github.com/kochmaxence/peniche/pkg/types"
)

// Edge is a directed dependency from Source to Target with an optional
// version constraint.
type Edge struct {
	Source     string
	Target     string
	Constraint string
}

// Graph is a directed acyclic graph over workspace member names.
type Graph struct {
	nodes map[string]bool
	// edges maps source -> target -> constraint.
	edges map[string]map[string]string
}

// New builds an empty graph over the given member names.
func New(members []string) *Graph {
	g := &Graph{
		nodes: make(map[string]bool, len(members)),
		edges: make(map[string]map[string]string),
	}
	for _, m := range members {
		g.nodes[m] = true
	}
	return g
}

// AddNode registers a member. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	g.nodes[name] = true
}

// RemoveNode drops a member and all edges touching it.
func (g *Graph) RemoveNode(name string) {
	delete(g.nodes, name)
	delete(g.edges, name)
	for _, targets := range g.edges {
		delete(targets, name)
	}
}

// HasNode reports whether name is a member of the graph.
func (g *Graph) HasNode(name string) bool { return g.nodes[name] }

// HasEdge reports whether the edge source -> target exists.
func (g *Graph) HasEdge(source, target string) bool {
	_, ok := g.edges[source][target]
	return ok
}

// CheckEdge verifies that the edge source -> target could be inserted
// without violating an invariant. It never mutates the graph, which lets
// callers run the check, commit the matching manifest edit, and only then
// confirm the edge in memory.
func (g *Graph) CheckEdge(source, target string) error {
	if !g.nodes[source] {
		return fmt.Errorf("%w: %s", types.ErrCrateNotFound, source)
	}
	if !g.nodes[target] {
		return fmt.Errorf("%w: %s", types.ErrCrateNotFound, target)
	}
	if source == target {
		return fmt.Errorf("%w: %s", types.ErrSelfEdge, source)
	}
	if _, ok := g.edges[source][target]; ok {
		return fmt.Errorf("%w: %s -> %s", types.ErrDuplicateEdge, source, target)
	}
	if g.reachable(target, source) {
		return fmt.Errorf("%w: %s -> %s would close a loop", types.ErrCycleDetected, source, target)
	}
	return nil
}

// AddEdge inserts the edge source -> target. The invariant checks run
// before any mutation, so a rejected edge leaves the graph untouched.
func (g *Graph) AddEdge(source, target, constraint string) error {
	if err := g.CheckEdge(source, target); err != nil {
		return err
	}
	g.SetEdge(source, target, constraint)
	return nil
}

// SetEdge inserts an edge without invariant checks. It exists for
// hydrating the graph from manifests, which may have been hand-edited into
// an invalid state; TopologicalOrder reports such damage.
func (g *Graph) SetEdge(source, target, constraint string) {
	g.nodes[source] = true
	g.nodes[target] = true
	if g.edges[source] == nil {
		g.edges[source] = make(map[string]string)
	}
	g.edges[source][target] = constraint
}

// RemoveEdge deletes the edge source -> target.
func (g *Graph) RemoveEdge(source, target string) error {
	if _, ok := g.edges[source][target]; !ok {
		return fmt.Errorf("%w: %s -> %s", types.ErrEdgeNotFound, source, target)
	}
	delete(g.edges[source], target)
	return nil
}

// reachable reports whether to can be reached from from by following edges.
// Depth-first search; the graph stays small enough that repeated scans beat
// maintaining incremental structures.
func (g *Graph) reachable(from, to string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range g.edges[n] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Dependents returns the members holding an edge targeting name, sorted.
func (g *Graph) Dependents(name string) []string {
	var deps []string
	for source, targets := range g.edges {
		if _, ok := targets[name]; ok {
			deps = append(deps, source)
		}
	}
	sort.Strings(deps)
	return deps
}

// Edges returns every edge, sorted by source then target.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for source, targets := range g.edges {
		for target, constraint := range targets {
			out = append(out, Edge{Source: source, Target: target, Constraint: constraint})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// TopologicalOrder returns the members so that each edge's source precedes
// its target. Ties break lexicographically, making the order deterministic.
// Fails with ErrCycleDetected if the acyclicity invariant was violated
// behind the graph's back (hand-edited manifests).
func (g *Graph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for n := range g.nodes {
		indegree[n] = 0
	}
	for _, targets := range g.edges {
		for target := range targets {
			indegree[target]++
		}
	}

	var ready []string
	for n, d := range indegree {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var unlocked []string
		for target := range g.edges[n] {
			indegree[target]--
			if indegree[target] == 0 {
				unlocked = append(unlocked, target)
			}
		}
		sort.Strings(unlocked)
		ready = mergeSorted(ready, unlocked)
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("%w: workspace manifests contain a dependency loop", types.ErrCycleDetected)
	}
	return order, nil
}

// mergeSorted merges two sorted string slices.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	for len(a) > 0 && len(b) > 0 {
		if a[0] <= b[0] {
			out = append(out, a[0])
			a = a[1:]
		} else {
			out = append(out, b[0])
			b = b[1:]
		}
	}
	out = append(out, a...)
	return append(out, b...)
}
