package domain

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"snipgraph.dev/pkg/snipgraph/internal/adapter"
	"snipgraph.dev/pkg/snipgraph/internal/depgraph"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
	"snipgraph.dev/pkg/snipgraph/internal/taskqueue"
)

const minPasses = 32

// ModuleSpec describes an externally resolved module. When Code is set its
// import declarations are scanned and Imports is ignored.
type ModuleSpec struct {
	Code    string
	Imports []m.ImportDefinition
}

// Engine tracks the names snippets and modules define, keeps every snippet's
// hoisted imports consistent with the others and notifies the evaluator when
// a snippet has to run again.
//
// Mutating operations are queued and run one at a time. Operations on the
// same snippet or module coalesce: a pending operation is dropped when a
// newer one with the same target is queued, and its caller receives nil.
// Listeners run on the engine's scheduler goroutine and must not wait for
// engine operations.
type Engine interface {
	UpsertSnippet(ctx context.Context, id, code string) error
	DeleteSnippet(ctx context.Context, id string) error
	// UpdateSnippetExports records the runtime values the evaluator computed
	// for a snippet's exports, loaded from source.
	UpdateSnippetExports(ctx context.Context, id string, source m.SourceHandle, values map[string]any) error
	UpsertModule(ctx context.Context, id string, spec ModuleSpec) error
	DeleteModule(ctx context.Context, id string) error
	// ReloadModule switches the module specifier resolver and recomputes
	// every snippet's hoisted imports.
	ReloadModule(ctx context.Context, resolver adapter.Resolver) error
	// ReplaceSnippets makes snippets the complete snippet set in one task.
	ReplaceSnippets(ctx context.Context, snippets map[string]string) error
	// PauseTasks holds queued operations until the returned function is
	// called. Pauses nest.
	PauseTasks() func()

	Snippet(id string) (m.Snippet, bool)
	Snippets() []m.Snippet
	Module(id string) (m.ModuleRecord, bool)
	Modules() []m.ModuleRecord
	DefinedValues() map[string]m.Owner
	Owner(name string) (m.Owner, bool)
	ExportValue(name string) (any, m.SourceHandle, bool)
	ValueDependencies(name string) []string

	OnDependencyUpdate(fn func(m.DependencyUpdate)) func()
	OnModuleUpdate(fn func(m.ModuleUpdate)) func()
	OnRenderParamsUpdate(fn func(m.RenderParamsUpdate)) func()
	OnSourceRevoke(fn func(m.SourceRevoke)) func()

	Close()
}

// Option configures an engine.
type Option func(*engine)

// WithResolver sets the initial module specifier resolver.
func WithResolver(resolver adapter.Resolver) Option {
	return func(e *engine) {
		if resolver != nil {
			e.resolver = resolver
		}
	}
}

// WithStrict halts the task queue on the first failed operation.
func WithStrict(strict bool) Option {
	return func(e *engine) {
		e.strict = strict
	}
}

// WithMaxPasses caps the passes of one dependency recomputation. Zero selects
// the larger of 32 and twice the number of snippets.
func WithMaxPasses(n int) Option {
	return func(e *engine) {
		e.maxPasses = n
	}
}

type snippet struct {
	id          string
	source      string
	transformed string
	importDefs  []m.ImportDefinition
	exports     []string
	// imports are the local names bound by imports that do not come from a
	// module.
	imports       []string
	deps          []string
	hasDefault    bool
	defaultParams []string
	err           error
	state         m.SnippetState
	handle        m.SourceHandle
	valueHandle   m.SourceHandle
}

type module struct {
	id         string
	importDefs []m.ImportDefinition
	exports    []string
}

type engine struct {
	transpiler adapter.Transpiler
	host       adapter.SourceHost
	queue      *taskqueue.Queue
	strict     bool
	maxPasses  int

	// mu guards the fields below. They are only written by tasks, so a task
	// may read them without the lock.
	mu           sync.RWMutex
	resolver     adapter.Resolver
	snippets     map[string]*snippet
	modules      map[string]*module
	owners       map[string]m.Owner
	graph        *depgraph.Graph
	values       map[string]any
	valueSources map[string]m.SourceHandle

	dependencyUpdates   Listeners[m.DependencyUpdate]
	moduleUpdates       Listeners[m.ModuleUpdate]
	renderParamsUpdates Listeners[m.RenderParamsUpdate]
	sourceRevokes       Listeners[m.SourceRevoke]
}

// NewEngine creates an engine that transpiles snippets with transpiler and
// publishes their code through host. Close must be called to release it.
func NewEngine(transpiler adapter.Transpiler, host adapter.SourceHost, opts ...Option) Engine {
	e := &engine{
		transpiler:   transpiler,
		host:         host,
		resolver:     adapter.IdentityResolver,
		snippets:     make(map[string]*snippet),
		modules:      make(map[string]*module),
		owners:       make(map[string]m.Owner),
		graph:        depgraph.New(),
		values:       make(map[string]any),
		valueSources: make(map[string]m.SourceHandle),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.queue = taskqueue.New(taskqueue.WithStrict(e.strict))

	return e
}

func snippetKey(id string) string { return "snippetChange:" + id }

func (e *engine) UpsertSnippet(ctx context.Context, id, code string) error {
	return e.queue.Do(ctx, snippetKey(id), func(ctx context.Context, stale func() bool) error {
		return e.upsertSnippet(ctx, id, code, stale)
	})
}

func (e *engine) DeleteSnippet(ctx context.Context, id string) error {
	return e.queue.Do(ctx, snippetKey(id), func(ctx context.Context, _ func() bool) error {
		return e.deleteSnippet(ctx, id)
	})
}

func (e *engine) UpdateSnippetExports(ctx context.Context, id string, source m.SourceHandle, values map[string]any) error {
	values = maps.Clone(values)

	return e.queue.Do(ctx, "snippetExports:"+id, func(ctx context.Context, _ func() bool) error {
		return e.updateSnippetExports(ctx, id, source, values)
	})
}

func (e *engine) UpsertModule(ctx context.Context, id string, spec ModuleSpec) error {
	return e.queue.Do(ctx, "moduleChange:"+id, func(ctx context.Context, _ func() bool) error {
		return e.upsertModule(ctx, id, spec)
	})
}

func (e *engine) DeleteModule(ctx context.Context, id string) error {
	return e.queue.Do(ctx, "moduleChange:"+id, func(ctx context.Context, _ func() bool) error {
		return e.deleteModule(ctx, id)
	})
}

func (e *engine) ReloadModule(ctx context.Context, resolver adapter.Resolver) error {
	if resolver == nil {
		resolver = adapter.IdentityResolver
	}

	return e.queue.Do(ctx, "moduleReload", func(ctx context.Context, _ func() bool) error {
		return e.reloadModules(ctx, resolver)
	})
}

func (e *engine) ReplaceSnippets(ctx context.Context, snippets map[string]string) error {
	snippets = maps.Clone(snippets)

	return e.queue.Do(ctx, "replaceSnippets", func(ctx context.Context, _ func() bool) error {
		return e.replaceSnippets(ctx, snippets)
	})
}

func (e *engine) PauseTasks() func() {
	return e.queue.Pause()
}

func (e *engine) Close() {
	e.queue.Close()
}

func (e *engine) OnDependencyUpdate(fn func(m.DependencyUpdate)) func() {
	return e.dependencyUpdates.Add(fn)
}

func (e *engine) OnModuleUpdate(fn func(m.ModuleUpdate)) func() {
	return e.moduleUpdates.Add(fn)
}

func (e *engine) OnRenderParamsUpdate(fn func(m.RenderParamsUpdate)) func() {
	return e.renderParamsUpdates.Add(fn)
}

func (e *engine) OnSourceRevoke(fn func(m.SourceRevoke)) func() {
	return e.sourceRevokes.Add(fn)
}

func (e *engine) Snippet(id string) (m.Snippet, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.snippets[id]
	if !ok {
		return m.Snippet{ID: id, State: m.SnippetAbsent}, false
	}

	return s.snapshot(), true
}

func (e *engine) Snippets() []m.Snippet {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]m.Snippet, 0, len(e.snippets))
	for _, id := range e.snippetIDs() {
		out = append(out, e.snippets[id].snapshot())
	}

	return out
}

func (e *engine) Module(id string) (m.ModuleRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	mod, ok := e.modules[id]
	if !ok {
		return m.ModuleRecord{}, false
	}

	return mod.record(), true
}

func (e *engine) Modules() []m.ModuleRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]m.ModuleRecord, 0, len(e.modules))
	for _, id := range e.moduleIDs() {
		out = append(out, e.modules[id].record())
	}

	return out
}

func (e *engine) DefinedValues() map[string]m.Owner {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]m.Owner, len(e.owners))
	for name, owner := range e.owners {
		out[name] = owner
	}

	return out
}

func (e *engine) Owner(name string) (m.Owner, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	owner, ok := e.owners[name]

	return owner, ok
}

func (e *engine) ExportValue(name string) (any, m.SourceHandle, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.values[name]

	return v, e.valueSources[name], ok
}

func (e *engine) ValueDependencies(name string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.graph.Direct(name)
}

func (s *snippet) snapshot() m.Snippet {
	return m.Snippet{
		ID:                    s.id,
		SourceCode:            s.source,
		TransformedCode:       s.transformed,
		ImportDefs:            slices.Clone(s.importDefs),
		ExportNames:           slices.Clone(s.exports),
		DependentValues:       slices.Clone(s.deps),
		HasDefaultExport:      s.hasDefault,
		DefaultFunctionParams: slices.Clone(s.defaultParams),
		DependencyError:       s.err,
		State:                 s.state,
		Source:                s.handle,
		ValueSource:           s.valueHandle,
	}
}

func (mod *module) record() m.ModuleRecord {
	return m.ModuleRecord{
		ID:           mod.id,
		ImportDefs:   slices.Clone(mod.importDefs),
		ExportValues: slices.Clone(mod.exports),
	}
}

func (e *engine) snippetIDs() []string {
	ids := make([]string, 0, len(e.snippets))
	for id := range e.snippets {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func (e *engine) moduleIDs() []string {
	ids := make([]string, 0, len(e.modules))
	for id := range e.modules {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func (e *engine) passLimit() int {
	if e.maxPasses > 0 {
		return e.maxPasses
	}

	return max(minPasses, 2*len(e.snippets))
}

// upsertSnippet evaluates code against the current definitions. On failure
// the snippet is marked errored and keeps its previous contribution.
func (e *engine) upsertSnippet(ctx context.Context, id, code string, stale func() bool) error {
	b := newBatch()
	defer e.flush(ctx, b)

	s, known := e.snippets[id]
	if !known {
		s = &snippet{id: id}
	}

	ev, evalErr := e.evaluate(ctx, s, code)

	if stale() {
		if ev != nil && ev.handle != s.handle {
			b.revoke(id, ev.handle)
		}

		return nil
	}

	e.mu.Lock()

	if !known {
		e.snippets[id] = s
	}

	s.source = code

	if evalErr != nil {
		s.err = evalErr
		s.state = m.SnippetErrored
	} else {
		e.commit(s, ev, b)
	}

	e.mu.Unlock()

	b.dependency(id)

	if evalErr != nil {
		return errors.Join(evalErr, e.recompute(ctx, b, id))
	}

	return e.recompute(ctx, b, id)
}

func (e *engine) deleteSnippet(ctx context.Context, id string) error {
	s, ok := e.snippets[id]
	if !ok {
		return nil
	}

	b := newBatch()
	defer e.flush(ctx, b)

	e.mu.Lock()
	e.removeSnippet(s, b)
	e.mu.Unlock()

	return e.recompute(ctx, b, "")
}

// removeSnippet drops s and everything it defines. Callers hold mu.
func (e *engine) removeSnippet(s *snippet, b *batch) {
	for _, name := range s.exports {
		e.dropName(name)
	}

	delete(e.snippets, s.id)

	b.revoke(s.id, s.handle)

	if s.valueHandle != s.handle {
		b.revoke(s.id, s.valueHandle)
	}
}

// dropName forgets a defined name. Callers hold mu.
func (e *engine) dropName(name string) {
	delete(e.owners, name)
	delete(e.values, name)
	delete(e.valueSources, name)
	e.graph.Remove(name)
}

func (e *engine) replaceSnippets(ctx context.Context, snippets map[string]string) error {
	b := newBatch()
	defer e.flush(ctx, b)

	e.mu.Lock()

	for _, id := range e.snippetIDs() {
		if _, keep := snippets[id]; !keep {
			e.removeSnippet(e.snippets[id], b)
		}
	}

	e.mu.Unlock()

	ids := make([]string, 0, len(snippets))
	for id := range snippets {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	var errs []error

	for _, id := range ids {
		code := snippets[id]

		s, known := e.snippets[id]
		if known && s.source == code && s.err == nil {
			continue
		}

		if !known {
			s = &snippet{id: id}
		}

		ev, err := e.evaluate(ctx, s, code)

		e.mu.Lock()

		if !known {
			e.snippets[id] = s
		}

		s.source = code

		if err != nil {
			s.err = err
			s.state = m.SnippetErrored

			errs = append(errs, err)
		} else {
			e.commit(s, ev, b)
		}

		e.mu.Unlock()

		b.dependency(id)
	}

	if err := e.recompute(ctx, b, ""); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrSnippetNotFound, id)
}
