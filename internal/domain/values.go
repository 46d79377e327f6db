package domain

import (
	"context"
	"log/slog"
	"reflect"
	"slices"
	"sort"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

// updateSnippetExports stores the values of id's exports and notifies the
// snippets that read a value that changed.
func (e *engine) updateSnippetExports(ctx context.Context, id string, source m.SourceHandle, values map[string]any) error {
	s, ok := e.snippets[id]
	if !ok {
		return notFound(id)
	}

	b := newBatch()
	defer e.flush(ctx, b)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}

	sort.Strings(names)

	e.mu.Lock()
	defer e.mu.Unlock()

	changed := make(map[string]bool)

	for _, name := range names {
		if _, exported := slices.BinarySearch(s.exports, name); !exported {
			slog.Debug("Ignoring value of a name the snippet does not export", "id", id, "name", name)
			continue
		}

		old, had := e.values[name]
		if !had || !sameValue(old, values[name]) {
			changed[name] = true
		}

		e.values[name] = values[name]
		e.valueSources[name] = source
	}

	if old := s.valueHandle; old != source {
		s.valueHandle = source

		if old != s.handle {
			b.revoke(id, old)
		}
	}

	if len(changed) == 0 {
		return nil
	}

	fromModule := e.moduleSpecifiers()

	for _, otherID := range e.snippetIDs() {
		other := e.snippets[otherID]

		if otherID != id && readsAny(other, changed, fromModule) {
			b.dependency(otherID)
		}

		if !intersects(other.defaultParams, changed) {
			continue
		}

		params := make(map[string]any)
		for _, p := range other.defaultParams {
			if v, ok := e.values[p]; ok {
				params[p] = v
			}
		}

		b.params = append(b.params, m.RenderParamsUpdate{
			ID:     otherID,
			Params: slices.Clone(other.defaultParams),
			Values: params,
		})
	}

	return nil
}

// readsAny reports whether s imports one of names. A namespace import from
// anything but a module may read any name.
func readsAny(s *snippet, names map[string]bool, fromModule map[string]bool) bool {
	if intersects(s.imports, names) {
		return true
	}

	for _, def := range s.importDefs {
		if def.NamespaceImport != "" && !fromModule[def.Specifier] {
			return true
		}
	}

	return false
}

func intersects(list []string, set map[string]bool) bool {
	for _, name := range list {
		if set[name] {
			return true
		}
	}

	return false
}

// sameValue compares with == when both values have the same comparable
// type, and deeply otherwise. Interfaces nested in a comparable type may
// still hold incomparable values, which makes == panic.
func sameValue(a, b any) (same bool) {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	if ta == nil || ta.Comparable() {
		defer func() {
			if recover() != nil {
				same = reflect.DeepEqual(a, b)
			}
		}()

		return a == b
	}

	return reflect.DeepEqual(a, b)
}
