package domain

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
	"snipgraph.dev/pkg/snipgraph/internal/scanner"
)

// evaluation is the outcome of transpiling one snippet against the current
// definitions. It is computed without holding the engine lock and applied by
// commit.
type evaluation struct {
	transformed   string
	importDefs    []m.ImportDefinition
	exports       []string
	imports       []string
	edges         []string
	hasDefault    bool
	defaultParams []string
	handle        m.SourceHandle
}

// evaluate transpiles code for s with every name defined elsewhere hoisted in
// front of it, and checks the result for duplicate definitions and cycles.
// The transformed code is published through the source host when it differs
// from the snippet's current code.
func (e *engine) evaluate(ctx context.Context, s *snippet, code string) (*evaluation, error) {
	plain, err := e.transform(ctx, s.id, code)
	if err != nil {
		return nil, err
	}

	bare := scanner.ScanSource(plain)

	own := make(map[string]bool)
	for _, name := range bare.DeclaredNames() {
		own[name] = true
	}

	full := code
	if prefix := e.hoistedPrefix(s.id, own); prefix != "" {
		full = prefix + "\n" + code
	}

	out, err := e.transform(ctx, s.id, full)
	if err != nil {
		return nil, err
	}

	// Parameters come from the code without the prefix: esbuild renames
	// parameters that shadow a hoisted import.
	res := scanner.ScanSource(out)
	ev := &evaluation{
		transformed:   out,
		importDefs:    res.ImportDefinitions(),
		exports:       res.ExportNames(),
		hasDefault:    bare.HasDefault(),
		defaultParams: bare.DefaultParams(),
	}

	ev.imports = snippetImports(ev.importDefs, e.moduleSpecifiers())

	self := m.Owner{Kind: m.OwnerSnippet, ID: s.id}
	ev.edges = e.snippetEdges(self, ev.imports)

	if err := e.checkDefinitions(self, ev.exports, ev.imports); err != nil {
		return nil, err
	}

	exported := make(map[string]bool, len(ev.exports))
	for _, name := range ev.exports {
		exported[name] = true
	}

	stale := func(name string) bool {
		return e.owners[name] == self && !exported[name]
	}

	if path := e.graph.FindCycle(ev.exports, ev.edges, stale); path != nil {
		return nil, &CyclicReferenceError{ID: s.id, Path: path}
	}

	ev.handle = s.handle

	if ev.transformed != s.transformed || s.handle == "" {
		handle, err := e.host.BuildSource(ctx, s.id, ev.transformed)
		if err != nil {
			return nil, fmt.Errorf("snippet %s: failed to build source: %w", s.id, err)
		}

		ev.handle = handle
	}

	return ev, nil
}

func (e *engine) transform(ctx context.Context, id, code string) (string, error) {
	res, err := e.transpiler.Transform(ctx, code)
	if err != nil {
		return "", &TranspileError{ID: id, Err: err}
	}

	if len(res.Errors) > 0 {
		return "", &TranspileError{ID: id, Messages: res.Errors}
	}

	return res.Code, nil
}

// hoistedPrefix renders the imports placed in front of snippet id: the
// imports of every module, resolved, followed by the exports of every other
// snippet. Names in own are declared by the snippet itself and left out.
func (e *engine) hoistedPrefix(id string, own map[string]bool) string {
	var lines []string

	for _, modID := range e.moduleIDs() {
		for _, def := range e.modules[modID].importDefs {
			if hoisted, ok := hoistDefinition(def, e.resolver(def.Specifier), own); ok {
				lines = append(lines, hoisted.String())
			}
		}
	}

	for _, otherID := range e.snippetIDs() {
		other := e.snippets[otherID]
		if otherID == id || other.handle == "" {
			continue
		}

		def := m.ImportDefinition{Specifier: string(other.handle), ImportBinding: map[string]string{}}

		for _, name := range other.exports {
			if !own[name] {
				def.Named = append(def.Named, name)
				def.ImportBinding[name] = name
			}
		}

		if len(def.Named) > 0 {
			lines = append(lines, def.String())
		}
	}

	return strings.Join(lines, "\n")
}

// hoistDefinition copies def under specifier without the locals in own. It
// reports false when nothing is left to import.
func hoistDefinition(def m.ImportDefinition, specifier string, own map[string]bool) (m.ImportDefinition, bool) {
	out := m.ImportDefinition{Specifier: specifier, All: def.All, ImportBinding: map[string]string{}}

	locals := make([]string, 0, len(def.ImportBinding))
	for local := range def.ImportBinding {
		locals = append(locals, local)
	}

	sort.Strings(locals)

	for _, local := range locals {
		if own[local] {
			continue
		}

		imported := def.ImportBinding[local]
		out.ImportBinding[local] = imported

		if imported == "default" {
			out.Default = true
		} else {
			out.Named = append(out.Named, imported)
		}
	}

	if def.NamespaceImport != "" && !own[def.NamespaceImport] {
		out.Namespace = true
		out.NamespaceImport = def.NamespaceImport
	}

	return out, out.All || len(out.ImportBinding) > 0 || out.NamespaceImport != ""
}

// moduleSpecifiers returns the resolved specifiers of every module import.
func (e *engine) moduleSpecifiers() map[string]bool {
	specs := make(map[string]bool)

	for _, mod := range e.modules {
		for _, def := range mod.importDefs {
			specs[e.resolver(def.Specifier)] = true
		}
	}

	return specs
}

// snippetImports returns the sorted local names bound by imports whose
// specifier is not a module's.
func snippetImports(defs []m.ImportDefinition, fromModule map[string]bool) []string {
	seen := make(map[string]bool)

	var names []string

	for _, def := range defs {
		if fromModule[def.Specifier] {
			continue
		}

		for _, name := range def.LocalNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	sort.Strings(names)

	return names
}

// snippetEdges returns the imported names that another snippet defines.
func (e *engine) snippetEdges(self m.Owner, imports []string) []string {
	var edges []string

	for _, name := range imports {
		if owner, ok := e.owners[name]; ok && owner.Kind == m.OwnerSnippet && owner != self {
			edges = append(edges, name)
		}
	}

	return edges
}

func (e *engine) checkDefinitions(self m.Owner, exports, imports []string) error {
	for _, name := range exports {
		if _, ok := slices.BinarySearch(imports, name); ok {
			return &DuplicateDefinitionError{Definer: self, Name: name, Owner: self}
		}

		if owner, ok := e.owners[name]; ok && owner != self {
			return &DuplicateDefinitionError{Definer: self, Name: name, Owner: owner}
		}
	}

	return nil
}

// commit applies ev to s and reports whether anything other snippets or the
// evaluator can observe changed. Callers hold mu.
func (e *engine) commit(s *snippet, ev *evaluation, b *batch) bool {
	self := m.Owner{Kind: m.OwnerSnippet, ID: s.id}

	kept := make(map[string]bool, len(ev.exports))
	for _, name := range ev.exports {
		kept[name] = true
	}

	for _, name := range s.exports {
		if !kept[name] {
			e.dropName(name)
		}
	}

	for _, name := range ev.exports {
		e.owners[name] = self
		e.graph.Set(name, ev.edges)
	}

	changed := s.err != nil ||
		s.state != m.SnippetRegistered ||
		s.transformed != ev.transformed ||
		!slices.Equal(s.exports, ev.exports)

	if ev.handle != s.handle {
		old := s.handle
		s.handle = ev.handle

		if old != s.valueHandle {
			b.revoke(s.id, old)
		}
	}

	s.transformed = ev.transformed
	s.importDefs = ev.importDefs
	s.exports = ev.exports
	s.imports = ev.imports
	s.hasDefault = ev.hasDefault
	s.defaultParams = ev.defaultParams
	s.deps = e.graph.Closure(ev.edges)
	s.err = nil
	s.state = m.SnippetRegistered

	return changed
}
