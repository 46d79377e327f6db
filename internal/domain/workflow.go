package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"snipgraph.dev/pkg/snipgraph/internal/adapter"
	"snipgraph.dev/pkg/snipgraph/internal/controller"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
	"snipgraph.dev/pkg/snipgraph/internal/scanner"
	"snipgraph.dev/pkg/snipgraph/internal/taskqueue"
	"snipgraph.dev/pkg/snipgraph/pkg/eventlog"
)

// ErrSnippetsErrored is returned by Check and Build when a snippet ends in
// the errored state.
var ErrSnippetsErrored = errors.New("snippets failed")

// EngineArgs configures the engine a workflow runs.
type EngineArgs struct {
	Strict    bool
	MaxPasses int
	// Resolve maps module specifiers to the specifiers used in hoisted
	// imports.
	Resolve map[string]string
}

func (a EngineArgs) options() []Option {
	opts := []Option{WithStrict(a.Strict), WithMaxPasses(a.MaxPasses)}
	if len(a.Resolve) > 0 {
		opts = append(opts, WithResolver(adapter.MapResolver(a.Resolve)))
	}

	return opts
}

// CheckArgs contains the arguments for checking a document.
type CheckArgs struct {
	EngineArgs
	Path m.Path
}

// BuildArgs contains the arguments for building a document to disk.
type BuildArgs struct {
	EngineArgs
	Path   m.Path
	Output m.Path
}

// WatchArgs contains the arguments for watching a snippet directory.
type WatchArgs struct {
	EngineArgs
	Dir      m.Path
	Debounce time.Duration
	// Journal is where engine events are recorded. Empty disables the
	// journal.
	Journal m.Path
}

// ScanArgs contains the arguments for scanning files.
type ScanArgs struct {
	Paths []m.Path
	// Raw scans the files as written instead of their transpiled form.
	Raw bool
}

// EventsArgs contains the arguments for printing a journal.
type EventsArgs struct {
	Journal m.Path
}

// Workflow runs the CLI operations on top of the engine.
type Workflow interface {
	Check(ctx context.Context, args CheckArgs) error
	Build(ctx context.Context, args BuildArgs) error
	Watch(ctx context.Context, args WatchArgs) error
	Scan(ctx context.Context, args ScanArgs) error
	Events(ctx context.Context, args EventsArgs) error
}

// WatcherFactory creates the watcher used by Watch.
type WatcherFactory func(dir m.Path, debounce time.Duration, accept func(m.Path) bool) adapter.Watcher

// WorkflowOption configures a workflow.
type WorkflowOption func(*workflow)

// WithWatcherFactory replaces the fsnotify watcher.
func WithWatcherFactory(factory WatcherFactory) WorkflowOption {
	return func(w *workflow) {
		w.newWatcher = factory
	}
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.DocumentStore
	controller.UI

	transpiler adapter.Transpiler
	newWatcher WatcherFactory
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	store adapter.DocumentStore,
	ui controller.UI,
	transpiler adapter.Transpiler,
	opts ...WorkflowOption,
) Workflow {
	w := &workflow{
		SourceFSAdapter: fsAdapter,
		DocumentStore:   store,
		UI:              ui,
		transpiler:      transpiler,
		newWatcher: func(dir m.Path, debounce time.Duration, accept func(m.Path) bool) adapter.Watcher {
			return adapter.NewFSNotifyWatcher(dir, debounce, accept)
		},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Check loads a document into an in-memory engine and reports every snippet.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	doc, err := w.Load(ctx, args.Path)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	eng := NewEngine(w.transpiler, adapter.NewMemorySourceHost(), args.options()...)
	defer eng.Close()

	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	report, err := w.apply(ctx, eng, doc)
	if err != nil {
		return err
	}

	if err := w.DisplayReport(ctx, report); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return erroredSnippets(report)
}

// Build writes every snippet's transformed code next to a manifest.
func (w *workflow) Build(ctx context.Context, args BuildArgs) error {
	doc, err := w.Load(ctx, args.Path)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	host := adapter.NewDiskSourceHost(w.SourceFSAdapter, args.Output)

	eng := NewEngine(w.transpiler, host, args.options()...)
	defer eng.Close()

	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	report, err := w.apply(ctx, eng, doc)
	if err != nil {
		return err
	}

	if err := host.WriteManifest(manifest(report)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	slog.Info("Built snippets", "output", args.Output, "snippets", len(report.Reports), "errored", report.Errored())

	if err := w.DisplayBuild(ctx, args.Output, report); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return erroredSnippets(report)
}

func manifest(report m.DocumentReport) adapter.Manifest {
	out := adapter.Manifest{Snippets: make([]adapter.ManifestEntry, 0, len(report.Reports))}

	for _, rep := range report.Reports {
		entry := adapter.ManifestEntry{
			ID:      rep.ID,
			File:    strings.TrimPrefix(string(rep.Source), "./"),
			Exports: rep.ExportNames,
		}

		if rep.Error != nil {
			entry.Error = rep.Error.Error()
		}

		out.Snippets = append(out.Snippets, entry)
	}

	return out
}

func erroredSnippets(report m.DocumentReport) error {
	if n := report.Errored(); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrSnippetsErrored, n, len(report.Reports))
	}

	return nil
}

// apply loads doc's modules and snippets into eng and reports the result.
// Failures of single snippets are part of the report, not errors.
func (w *workflow) apply(ctx context.Context, eng Engine, doc m.Document) (m.DocumentReport, error) {
	if err := syncModules(ctx, eng, doc.Modules); err != nil {
		return m.DocumentReport{}, err
	}

	if err := eng.ReplaceSnippets(ctx, doc.Snippets); err != nil {
		if ctx.Err() != nil {
			return m.DocumentReport{}, ctx.Err()
		}

		slog.Debug("Some snippets failed to register", "error", err)
	}

	return documentReport(eng), nil
}

// syncModules makes modules the engine's complete module set.
func syncModules(ctx context.Context, eng Engine, modules map[string]string) error {
	for _, mod := range eng.Modules() {
		if _, ok := modules[mod.ID]; ok {
			continue
		}

		if err := eng.DeleteModule(ctx, mod.ID); err != nil {
			return fmt.Errorf("delete module %s: %w", mod.ID, err)
		}
	}

	ids := make([]string, 0, len(modules))
	for id := range modules {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		if err := eng.UpsertModule(ctx, id, ModuleSpec{Code: modules[id]}); err != nil {
			return fmt.Errorf("module %s: %w", id, err)
		}
	}

	return nil
}

func documentReport(eng Engine) m.DocumentReport {
	snippets := eng.Snippets()

	report := m.DocumentReport{
		Modules: eng.Modules(),
		Reports: make([]m.Report, 0, len(snippets)),
	}

	for _, s := range snippets {
		report.Reports = append(report.Reports, m.Report{
			ID:          s.ID,
			State:       s.State,
			ExportNames: s.ExportNames,
			DependsOn:   s.DependentValues,
			Source:      s.Source,
			Error:       s.DependencyError,
		})
	}

	return report
}

// Watch keeps an engine in sync with a snippet directory until ctx ends or
// the user closes the UI.
func (w *workflow) Watch(ctx context.Context, args WatchArgs) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	info, err := w.FileInfo(args.Dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", args.Dir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", args.Dir)
	}

	doc, err := w.Load(ctx, args.Dir)
	if err != nil {
		return fmt.Errorf("load directory: %w", err)
	}

	var journal eventlog.Log[m.JournalEntry]

	if args.Journal != "" {
		journal, err = eventlog.Create[m.JournalEntry](string(args.Journal))
		if err != nil {
			return fmt.Errorf("create journal: %w", err)
		}

		defer func() {
			if err := journal.Close(); err != nil {
				slog.Warn("Failed to close journal", "path", journal.Path(), "error", err)
			}
		}()
	}

	eng := NewEngine(w.transpiler, adapter.NewMemorySourceHost(), args.options()...)
	defer eng.Close()

	session := newWatchSession(ctx, w.UI, journal)
	defer session.attach(eng)()

	if err := w.Start(ctx, controller.WithWatchMode(string(args.Dir))); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(context.WithoutCancel(ctx))

	report, err := w.apply(ctx, eng, doc)
	if err != nil {
		return err
	}

	session.loaded()

	if err := w.DisplayReport(ctx, report); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	watcher := w.newWatcher(args.Dir, args.Debounce, w.watched)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watcher.Run(gctx, func(ctx context.Context, change adapter.Change) error {
			return w.applyChange(ctx, eng, session, args.Dir, change)
		})
	})

	g.Go(func() error {
		w.Wait(gctx)
		cancel()

		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	slog.Info("Stopped watching", "dir", args.Dir)

	return nil
}

func (w *workflow) watched(path m.Path) bool {
	return w.IsSnippetFile(path) || filepath.Base(string(path)) == adapter.ModulesFile
}

// applyChange forwards one debounced change set to the engine. Snippet
// failures reach the UI through dependency updates and are not returned.
func (w *workflow) applyChange(ctx context.Context, eng Engine, session *watchSession, dir m.Path, change adapter.Change) error {
	var errs []error

	if touchesModules(change) {
		doc, err := w.Load(ctx, dir)
		if err != nil {
			return fmt.Errorf("reload modules: %w", err)
		}

		if err := syncModules(ctx, eng, doc.Modules); err != nil {
			errs = append(errs, err)
		}
	}

	for _, path := range change.Removed {
		if !w.IsSnippetFile(path) {
			continue
		}

		id := w.SnippetID(path)
		if err := eng.DeleteSnippet(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}

		session.removed(id)
	}

	for _, path := range change.Updated {
		if !w.IsSnippetFile(path) {
			continue
		}

		id, code, err := w.LoadFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable snippet file", "path", path, "error", err)
			continue
		}

		if err := eng.UpsertSnippet(ctx, id, code); err != nil {
			slog.Debug("Snippet failed to register", "id", id, "error", err)

			if isFatal(err) {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func touchesModules(change adapter.Change) bool {
	for _, paths := range [][]m.Path{change.Updated, change.Removed} {
		for _, path := range paths {
			if filepath.Base(string(path)) == adapter.ModulesFile {
				return true
			}
		}
	}

	return false
}

// isFatal reports whether err stops the engine from accepting changes.
func isFatal(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, taskqueue.ErrClosed) || errors.Is(err, taskqueue.ErrHalted)
}

// Scan reports the declarations found in each file, or in each snippet of a
// document.
func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		return err
	}

	defer w.Close(ctx)

	var reports []m.ScanReport

	for _, path := range args.Paths {
		sources, err := w.scanSources(ctx, path)
		if err != nil {
			return err
		}

		for _, src := range sources {
			report, err := w.scanOne(ctx, src.label, src.code, args.Raw)
			if err != nil {
				return err
			}

			reports = append(reports, report)
		}
	}

	if err := w.DisplayScan(ctx, reports); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

type scanSource struct {
	label string
	code  string
}

func (w *workflow) scanSources(ctx context.Context, path m.Path) ([]scanSource, error) {
	if w.IsSnippetFile(path) {
		_, code, err := w.LoadFile(path)
		if err != nil {
			return nil, err
		}

		return []scanSource{{label: string(path), code: code}}, nil
	}

	doc, err := w.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	ids := make([]string, 0, len(doc.Snippets))
	for id := range doc.Snippets {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	sources := make([]scanSource, 0, len(ids))

	for _, id := range ids {
		label := string(path) + "#" + id
		if file, ok := doc.Files[id]; ok {
			label = string(file.Path)
		}

		sources = append(sources, scanSource{label: label, code: doc.Snippets[id]})
	}

	return sources, nil
}

func (w *workflow) scanOne(ctx context.Context, label, code string, raw bool) (m.ScanReport, error) {
	if !raw {
		res, err := w.transpiler.Transform(ctx, code)
		if err != nil {
			return m.ScanReport{}, fmt.Errorf("%s: failed to transpile: %w", label, err)
		}

		if len(res.Errors) > 0 {
			return m.ScanReport{}, fmt.Errorf("%s: failed to transpile: %s", label, adapter.FormatMessages(res.Errors))
		}

		code = res.Code
	}

	res := scanner.ScanSource(code)

	report := m.ScanReport{
		Path:          label,
		Exports:       res.ExportNames(),
		Declared:      res.DeclaredNames(),
		HasDefault:    res.HasDefault(),
		DefaultParams: res.DefaultParams(),
	}

	for _, def := range res.ImportDefinitions() {
		imp := m.ScanImport{Specifier: def.Specifier, All: def.All, Namespace: def.NamespaceImport}
		if len(def.ImportBinding) > 0 {
			imp.Bindings = maps.Clone(def.ImportBinding)
		}

		report.Imports = append(report.Imports, imp)
	}

	return report, nil
}

// Events prints a journal recorded by Watch.
func (w *workflow) Events(ctx context.Context, args EventsArgs) error {
	entries, err := eventlog.Read[m.JournalEntry](string(args.Journal))
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		return err
	}

	defer w.Close(ctx)

	if err := w.DisplayJournal(ctx, entries); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}
