// Package depgraph keeps the value dependency graph of the snippet engine.
//
// Each node is a value name; an edge a -> b means computing a reads b. Names
// are interned into an arena and edges are stored as index lists sorted by
// name, so every traversal is deterministic.
package depgraph

import "sort"

// Graph is a directed graph over value names. It is not safe for concurrent
// use.
type Graph struct {
	index map[string]int
	names []string
	edges [][]int
	live  []bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

func (g *Graph) intern(name string) int {
	if idx, ok := g.index[name]; ok {
		return idx
	}

	idx := len(g.names)
	g.index[name] = idx
	g.names = append(g.names, name)
	g.edges = append(g.edges, nil)
	g.live = append(g.live, false)

	return idx
}

// Set defines name and replaces its direct dependencies.
func (g *Graph) Set(name string, deps []string) {
	idx := g.intern(name)
	g.live[idx] = true

	seen := make(map[int]struct{}, len(deps))
	out := make([]int, 0, len(deps))

	for _, dep := range deps {
		d := g.intern(dep)
		if _, dup := seen[d]; dup {
			continue
		}

		seen[d] = struct{}{}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return g.names[out[i]] < g.names[out[j]] })
	g.edges[idx] = out
}

// Remove deletes name and every edge pointing at it.
func (g *Graph) Remove(name string) {
	idx, ok := g.index[name]
	if !ok {
		return
	}

	g.live[idx] = false
	g.edges[idx] = nil

	for i, deps := range g.edges {
		for j, d := range deps {
			if d == idx {
				g.edges[i] = append(deps[:j:j], deps[j+1:]...)
				break
			}
		}
	}
}

// Has reports whether name is defined.
func (g *Graph) Has(name string) bool {
	idx, ok := g.index[name]
	return ok && g.live[idx]
}

// Names returns every defined name, sorted.
func (g *Graph) Names() []string {
	var out []string

	for i, name := range g.names {
		if g.live[i] {
			out = append(out, name)
		}
	}

	sort.Strings(out)

	return out
}

// Direct returns the direct dependencies of name, sorted.
func (g *Graph) Direct(name string) []string {
	idx, ok := g.index[name]
	if !ok {
		return nil
	}

	return g.toNames(g.edges[idx])
}

// References returns the defined names that depend directly on name, sorted.
func (g *Graph) References(name string) []string {
	target, ok := g.index[name]
	if !ok {
		return nil
	}

	var out []string

	for i, deps := range g.edges {
		for _, d := range deps {
			if d == target {
				out = append(out, g.names[i])
				break
			}
		}
	}

	sort.Strings(out)

	return out
}

// Closure returns roots together with every name reachable from them, sorted.
func (g *Graph) Closure(roots []string) []string {
	seen := make(map[string]struct{}, len(roots))
	stack := make([]int, 0, len(roots))

	for _, root := range roots {
		if _, dup := seen[root]; dup {
			continue
		}

		seen[root] = struct{}{}

		if idx, ok := g.index[root]; ok {
			stack = append(stack, idx)
		}
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range g.edges[n] {
			name := g.names[d]
			if _, ok := seen[name]; ok {
				continue
			}

			seen[name] = struct{}{}
			stack = append(stack, d)
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// FindCycle reports whether a producer of targets that reads from would
// close a cycle. It searches, in name order, for a path from one of from to
// one of targets, and returns the loop target -> from ... -> target. Names for
// which skip returns true are treated as absent. It returns nil when no such
// path exists.
func (g *Graph) FindCycle(targets, from []string, skip func(string) bool) []string {
	isTarget := make(map[string]bool, len(targets))
	for _, t := range targets {
		isTarget[t] = true
	}

	starts := append([]string(nil), from...)
	sort.Strings(starts)

	visited := make(map[int]bool)

	var (
		path []string
		walk func(name string) bool
	)

	walk = func(name string) bool {
		path = append(path, name)

		if isTarget[name] {
			return true
		}

		idx, ok := g.index[name]
		if !ok || visited[idx] || (skip != nil && skip(name)) {
			path = path[:len(path)-1]
			return false
		}

		visited[idx] = true

		for _, d := range g.edges[idx] {
			if walk(g.names[d]) {
				return true
			}
		}

		path = path[:len(path)-1]

		return false
	}

	for _, start := range starts {
		if walk(start) {
			target := path[len(path)-1]
			return append([]string{target}, path...)
		}
	}

	return nil
}

func (g *Graph) toNames(idx []int) []string {
	if len(idx) == 0 {
		return nil
	}

	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.names[i])
	}

	return out
}
