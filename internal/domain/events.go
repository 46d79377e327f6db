package domain

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

// Listeners is a set of callbacks for one event type.
type Listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

// Add registers fn and returns a function that unregisters it.
func (l *Listeners[T]) Add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}

	id := l.next
	l.next++
	l.fns[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		delete(l.fns, id)
	}
}

// Emit calls every registered callback in registration order.
func (l *Listeners[T]) Emit(ev T) {
	l.mu.Lock()

	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}

	fns := make([]func(T), 0, len(ids))

	sort.Ints(ids)

	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}

	l.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

type revocation struct {
	id     string
	handle m.SourceHandle
}

// batch collects the events of one task. They are delivered by flush once
// the task has committed and released the engine lock.
type batch struct {
	dependencies []string
	seen         map[string]bool
	modules      []string
	params       []m.RenderParamsUpdate
	revocations  []revocation
}

func newBatch() *batch {
	return &batch{seen: make(map[string]bool)}
}

func (b *batch) dependency(id string) {
	if b.seen[id] {
		return
	}

	b.seen[id] = true
	b.dependencies = append(b.dependencies, id)
}

func (b *batch) module(id string) {
	b.modules = append(b.modules, id)
}

func (b *batch) revoke(id string, handle m.SourceHandle) {
	if handle == "" {
		return
	}

	b.revocations = append(b.revocations, revocation{id: id, handle: handle})
}

// flush revokes released handles and emits the batch. Dependency updates
// carry the snippet's state at flush time; snippets deleted meanwhile are
// skipped.
func (e *engine) flush(ctx context.Context, b *batch) {
	e.mu.RLock()

	updates := make([]m.DependencyUpdate, 0, len(b.dependencies))

	for _, id := range b.dependencies {
		s, ok := e.snippets[id]
		if !ok {
			continue
		}

		updates = append(updates, m.DependencyUpdate{
			ID:              id,
			TransformedCode: s.transformed,
			Err:             s.err,
			Source:          s.handle,
		})
	}

	e.mu.RUnlock()

	for _, r := range b.revocations {
		if err := e.host.RevokeSource(ctx, r.handle); err != nil {
			slog.Warn("Failed to revoke source", "id", r.id, "source", r.handle, "error", err)
		}

		e.sourceRevokes.Emit(m.SourceRevoke{ID: r.id, Source: r.handle})
	}

	for _, id := range b.modules {
		e.moduleUpdates.Emit(m.ModuleUpdate{ID: id})
	}

	for _, u := range updates {
		e.dependencyUpdates.Emit(u)
	}

	for _, p := range b.params {
		e.renderParamsUpdates.Emit(p)
	}
}
