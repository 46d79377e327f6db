package domain

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"snipgraph.dev/pkg/snipgraph/internal/controller"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
	"snipgraph.dev/pkg/snipgraph/pkg/eventlog"
)

// watchSession turns engine events into UI changes and journal entries.
type watchSession struct {
	ctx     context.Context
	ui      controller.UI
	journal eventlog.Log[m.JournalEntry]
	now     func() time.Time

	mu      sync.Mutex
	loading bool
	// code is the last transformed code seen per snippet.
	code map[string]string
}

func newWatchSession(ctx context.Context, ui controller.UI, journal eventlog.Log[m.JournalEntry]) *watchSession {
	return &watchSession{
		ctx:     ctx,
		ui:      ui,
		journal: journal,
		now:     time.Now,
		loading: true,
		code:    make(map[string]string),
	}
}

// attach subscribes to every engine event and returns the function that
// unsubscribes again.
func (s *watchSession) attach(e Engine) func() {
	unsubscribe := []func(){
		e.OnDependencyUpdate(s.onDependencyUpdate),
		e.OnModuleUpdate(func(u m.ModuleUpdate) {
			s.record(m.JournalEntry{Kind: m.EventModuleUpdate, ID: u.ID})
		}),
		e.OnRenderParamsUpdate(func(u m.RenderParamsUpdate) {
			s.record(m.JournalEntry{Kind: m.EventRenderParamsUpdate, ID: u.ID, Params: u.Params})
		}),
		e.OnSourceRevoke(func(u m.SourceRevoke) {
			s.record(m.JournalEntry{Kind: m.EventSourceRevoke, ID: u.ID, Source: u.Source})
		}),
	}

	return func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}
}

// loaded ends the initial load. Changes seen before are journaled but not
// displayed.
func (s *watchSession) loaded() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
}

func (s *watchSession) onDependencyUpdate(u m.DependencyUpdate) {
	s.mu.Lock()
	before := s.code[u.ID]
	s.code[u.ID] = u.TransformedCode
	quiet := s.loading
	s.mu.Unlock()

	change := m.SnippetChange{
		At:     s.now(),
		ID:     u.ID,
		State:  m.SnippetRegistered,
		Source: u.Source,
		Diff:   diffCode(u.ID, before, u.TransformedCode),
	}

	entry := m.JournalEntry{Kind: m.EventDependencyUpdate, ID: u.ID, Source: u.Source}

	if u.Err != nil {
		change.State = m.SnippetErrored
		change.Error = u.Err.Error()
		entry.Error = change.Error
	}

	s.record(entry)

	if !quiet {
		s.ui.DisplayChange(s.ctx, change)
	}
}

// removed reports a deleted snippet, which produces no dependency update.
func (s *watchSession) removed(id string) {
	s.mu.Lock()
	delete(s.code, id)
	s.mu.Unlock()

	s.ui.DisplayChange(s.ctx, m.SnippetChange{At: s.now(), ID: id, State: m.SnippetAbsent})
}

func (s *watchSession) record(entry m.JournalEntry) {
	if s.journal == nil {
		return
	}

	entry.At = s.now()

	if err := s.journal.Append(entry); err != nil {
		slog.Warn("Failed to journal event", "kind", entry.Kind, "id", entry.ID, "error", err)
	}
}

// diffCode renders a unified diff of a snippet's transformed code.
func diffCode(id, before, after string) string {
	if before == after {
		return ""
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: id + " (previous)",
		ToFile:   id,
		Context:  2,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		slog.Warn("Failed to diff transformed code", "id", id, "error", err)
		return ""
	}

	return text
}
