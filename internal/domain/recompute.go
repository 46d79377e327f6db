package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

// recompute re-evaluates every snippet until a whole pass changes nothing,
// so that hoisted imports, dependencies and errors agree with the current
// definitions. It returns the failures that arose for snippets other than
// trigger.
func (e *engine) recompute(ctx context.Context, b *batch, trigger string) error {
	limit := e.passLimit()

	var errs []error

	for pass := 0; pass < limit; pass++ {
		changed := false

		for _, id := range e.evaluationOrder() {
			s := e.snippets[id]
			ev, err := e.evaluate(ctx, s, s.source)

			e.mu.Lock()

			if err != nil {
				if !sameError(s.err, err) {
					changed = true

					b.dependency(id)

					if id != trigger {
						errs = append(errs, err)
					}
				}

				s.err = err
				s.state = m.SnippetErrored
			} else if e.commit(s, ev, b) {
				changed = true

				b.dependency(id)
			}

			e.mu.Unlock()
		}

		e.mu.Lock()
		if e.refreshDependents() {
			changed = true
		}
		e.mu.Unlock()

		if !changed {
			slog.Debug("Dependencies settled", "passes", pass+1, "snippets", len(e.snippets))
			return errors.Join(errs...)
		}
	}

	slog.Error("Dependencies did not settle", "passes", limit, "snippets", len(e.snippets))

	return errors.Join(append(errs, fmt.Errorf("%w after %d passes", ErrNoFixedPoint, limit))...)
}

// refreshDependents recomputes every snippet's transitive dependencies and
// reports whether any changed. Callers hold mu.
func (e *engine) refreshDependents() bool {
	changed := false

	for _, s := range e.snippets {
		deps := e.graph.Closure(e.snippetEdges(m.Owner{Kind: m.OwnerSnippet, ID: s.id}, s.imports))
		if !slices.Equal(deps, s.deps) {
			s.deps = deps
			changed = true
		}
	}

	return changed
}

// evaluationOrder lists snippet ids so that a snippet comes after the
// snippets it imports from, breaking ties by id. Snippets caught in a loop
// follow in id order.
func (e *engine) evaluationOrder() []string {
	ids := e.snippetIDs()

	indegree := make(map[string]int, len(ids))
	dependents := make(map[string][]string, len(ids))

	for _, id := range ids {
		for _, dep := range e.producers(e.snippets[id]) {
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []string

	for _, id := range ids {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(ids))
	placed := make(map[string]bool, len(ids))

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]

		order = append(order, id)
		placed[id] = true

		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				pos, _ := slices.BinarySearch(ready, next)
				ready = slices.Insert(ready, pos, next)
			}
		}
	}

	for _, id := range ids {
		if !placed[id] {
			order = append(order, id)
		}
	}

	return order
}

// producers returns the sorted ids of the other snippets s imports from.
func (e *engine) producers(s *snippet) []string {
	seen := make(map[string]bool)

	var ids []string

	for _, name := range s.imports {
		owner, ok := e.owners[name]
		if !ok || owner.Kind != m.OwnerSnippet || owner.ID == s.id || seen[owner.ID] {
			continue
		}

		seen[owner.ID] = true
		ids = append(ids, owner.ID)
	}

	slices.Sort(ids)

	return ids
}
