package domain

import (
	"context"
	"slices"
	"sort"

	"snipgraph.dev/pkg/snipgraph/internal/adapter"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
	"snipgraph.dev/pkg/snipgraph/internal/scanner"
)

func (e *engine) upsertModule(ctx context.Context, id string, spec ModuleSpec) error {
	defs := spec.Imports
	if spec.Code != "" {
		defs = scanner.ScanSource(spec.Code).ImportDefinitions()
	}

	defs = slices.Clone(defs)

	seen := make(map[string]bool)

	var names []string

	for _, def := range defs {
		for _, name := range def.LocalNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	sort.Strings(names)

	self := m.Owner{Kind: m.OwnerModule, ID: id}

	for _, name := range names {
		if owner, ok := e.owners[name]; ok && owner != self {
			return &DuplicateDefinitionError{Definer: self, Name: name, Owner: owner}
		}
	}

	b := newBatch()
	defer e.flush(ctx, b)

	e.mu.Lock()

	if old, ok := e.modules[id]; ok {
		for _, name := range old.exports {
			if !seen[name] {
				e.dropName(name)
			}
		}
	}

	for _, name := range names {
		e.owners[name] = self
		e.graph.Set(name, nil)
	}

	e.modules[id] = &module{id: id, importDefs: defs, exports: names}

	e.mu.Unlock()

	b.module(id)

	return e.recompute(ctx, b, "")
}

func (e *engine) deleteModule(ctx context.Context, id string) error {
	mod, ok := e.modules[id]
	if !ok {
		return nil
	}

	b := newBatch()
	defer e.flush(ctx, b)

	e.mu.Lock()

	for _, name := range mod.exports {
		e.dropName(name)
	}

	delete(e.modules, id)

	e.mu.Unlock()

	b.module(id)

	return e.recompute(ctx, b, "")
}

func (e *engine) reloadModules(ctx context.Context, resolver adapter.Resolver) error {
	b := newBatch()
	defer e.flush(ctx, b)

	e.mu.Lock()
	e.resolver = resolver
	e.mu.Unlock()

	for _, id := range e.moduleIDs() {
		b.module(id)
	}

	return e.recompute(ctx, b, "")
}
