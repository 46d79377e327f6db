// Package eventlog provides an append-only journal of gob encoded records.
package eventlog

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Log is an append-only journal of items of type T stored in one file.
type Log[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Get(index uint64) (T, error)
	Range(f func(index uint64, item T) error) error
	Close() error
}

type logImpl[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
	closed  bool
}

// Create truncates or creates the journal at path. An empty path creates a
// temporary journal.
func Create[T any](path string) (Log[T], error) {
	var (
		file *os.File
		err  error
	)

	if path == "" {
		dir := filepath.Join(os.TempDir(), "snipgraph")
		if err := os.MkdirAll(dir, 0o750); err != nil {
			slog.Error("Failed to create journal directory", "path", dir, "error", err)
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}

		file, err = os.CreateTemp(dir, "journal-*.gob")
	} else {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create journal directory: %w", err)
			}
		}

		file, err = os.Create(filepath.Clean(path))
	}

	if err != nil {
		slog.Error("Failed to create journal", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}

	slog.Debug("Created journal", "path", file.Name())

	return &logImpl[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Read decodes every record of the journal at path.
func Read[T any](path string) ([]T, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("Failed to close journal", "path", path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	var items []T

	for {
		var item T

		err := decoder.Decode(&item)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return items, fmt.Errorf("failed to decode record %d: %w", len(items), err)
		}

		items = append(items, item)
	}

	slog.Debug("Read journal", "path", path, "count", len(items))

	return items, nil
}

// Append implements Log.
func (l *logImpl[T]) Append(item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return fmt.Errorf("journal %s is closed", l.path)
	}

	if err := l.encoder.Encode(item); err != nil {
		slog.Error("Failed to encode record", "path", l.path, "index", l.length, "error", err)
		return fmt.Errorf("failed to encode record: %w", err)
	}

	l.length++

	return nil
}

// AppendBatch implements Log.
func (l *logImpl[T]) AppendBatch(items []T) error {
	for _, item := range items {
		if err := l.Append(item); err != nil {
			return err
		}
	}

	return nil
}

// Path implements Log.
func (l *logImpl[T]) Path() string {
	return l.path
}

// Len implements Log.
func (l *logImpl[T]) Len() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.length
}

// Close implements Log. Records stay readable after Close.
func (l *logImpl[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true

	if err := l.file.Close(); err != nil {
		slog.Error("Failed to close journal", "path", l.path, "error", err)
		return err
	}

	slog.Debug("Closed journal", "path", l.path, "length", l.length)

	return nil
}

// Get implements Log.
func (l *logImpl[T]) Get(index uint64) (T, error) {
	var zero T

	if index >= l.Len() {
		return zero, fmt.Errorf("index %d out of bounds (length %d)", index, l.Len())
	}

	var found T

	err := l.Range(func(i uint64, item T) error {
		if i == index {
			found = item
			return errStop
		}

		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return zero, err
	}

	return found, nil
}

var errStop = errors.New("stop")

// Range implements Log.
func (l *logImpl[T]) Range(fn func(index uint64, item T) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("Failed to close journal", "path", l.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := range l.length {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return fmt.Errorf("failed to decode record %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}
