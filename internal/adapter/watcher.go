package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

const defaultDebounce = 200 * time.Millisecond

// Change is a debounced set of snippet files that were written or removed.
type Change struct {
	Updated []m.Path
	Removed []m.Path
}

// Watcher reports debounced changes to the snippet files of one directory.
type Watcher interface {
	// Run blocks until ctx ends, calling onChange once per quiet period with
	// the files that changed during it. It returns nil when ctx is cancelled.
	Run(ctx context.Context, onChange func(context.Context, Change) error) error
}

// FSNotifyWatcher implements Watcher with fsnotify.
type FSNotifyWatcher struct {
	dir      m.Path
	debounce time.Duration
	accept   func(m.Path) bool
}

// NewFSNotifyWatcher watches dir for files accepted by accept. A non-positive
// debounce selects the default.
func NewFSNotifyWatcher(dir m.Path, debounce time.Duration, accept func(m.Path) bool) *FSNotifyWatcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &FSNotifyWatcher{dir: dir, debounce: debounce, accept: accept}
}

// Run watches the directory until ctx ends.
func (w *FSNotifyWatcher) Run(ctx context.Context, onChange func(context.Context, Change) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	defer func() {
		if closeErr := fsw.Close(); closeErr != nil {
			slog.Warn("Failed to close fsnotify watcher", "error", closeErr)
		}
	}()

	if err := fsw.Add(string(w.dir)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	// pending maps a path to whether it still exists.
	pending := make(map[m.Path]bool)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			path := m.Path(filepath.Clean(event.Name))
			if w.accept != nil && !w.accept(path) {
				continue
			}

			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				pending[path] = false
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				pending[path] = true
			default:
				continue
			}

			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

			slog.Warn("File watcher error", "dir", w.dir, "error", err)
		case <-timer.C:
			change := drain(pending)
			if len(change.Updated) == 0 && len(change.Removed) == 0 {
				continue
			}

			if err := onChange(ctx, change); err != nil {
				slog.Error("Failed to apply snippet changes", "error", err)
			}
		}
	}
}

func drain(pending map[m.Path]bool) Change {
	var change Change

	for path, exists := range pending {
		if exists {
			change.Updated = append(change.Updated, path)
		} else {
			change.Removed = append(change.Removed, path)
		}

		delete(pending, path)
	}

	sort.Slice(change.Updated, func(i, j int) bool { return change.Updated[i] < change.Updated[j] })
	sort.Slice(change.Removed, func(i, j int) bool { return change.Removed[i] < change.Removed[j] })

	return change
}
