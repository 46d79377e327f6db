package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

// SnippetExtensions lists the file extensions loaded as snippets from a
// directory.
var SnippetExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs"}

// ModulesFile is the optional module list of a snippet directory.
const ModulesFile = "modules.yaml"

const maxParallelReads = 8

// DocumentStore loads snippet documents.
type DocumentStore interface {
	// Load reads a YAML document file or a directory of snippet files.
	Load(ctx context.Context, path m.Path) (m.Document, error)
	// LoadFile reads a single snippet file and returns its id and code.
	LoadFile(path m.Path) (string, string, error)
	// IsSnippetFile reports whether path names a snippet file.
	IsSnippetFile(path m.Path) bool
	// SnippetID returns the snippet id a file path maps to.
	SnippetID(path m.Path) string
}

type documentEntry struct {
	ID   string `yaml:"id"`
	Code string `yaml:"code"`
}

type documentFile struct {
	Modules  []documentEntry `yaml:"modules"`
	Snippets []documentEntry `yaml:"snippets"`
}

// LocalDocumentStore implements DocumentStore on a SourceFSAdapter.
type LocalDocumentStore struct {
	fs SourceFSAdapter
}

// NewLocalDocumentStore constructs a LocalDocumentStore.
func NewLocalDocumentStore(fs SourceFSAdapter) *LocalDocumentStore {
	return &LocalDocumentStore{fs: fs}
}

// Load reads path, which is either a YAML document or a directory.
func (s *LocalDocumentStore) Load(ctx context.Context, path m.Path) (m.Document, error) {
	info, err := s.fs.FileInfo(path)
	if err != nil {
		return m.Document{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.IsDir() {
		return s.loadDir(ctx, path)
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return m.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return decodeDocument(path, data)
}

func decodeDocument(path m.Path, data []byte) (m.Document, error) {
	var file documentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return m.Document{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	doc := m.Document{
		Modules:  make(map[string]string, len(file.Modules)),
		Snippets: make(map[string]string, len(file.Snippets)),
		Files:    map[string]m.File{},
	}

	for _, mod := range file.Modules {
		if mod.ID == "" {
			return m.Document{}, fmt.Errorf("%s: module without id", path)
		}

		if _, dup := doc.Modules[mod.ID]; dup {
			return m.Document{}, fmt.Errorf("%s: duplicate module id %q", path, mod.ID)
		}

		doc.Modules[mod.ID] = mod.Code
	}

	for _, snip := range file.Snippets {
		if snip.ID == "" {
			return m.Document{}, fmt.Errorf("%s: snippet without id", path)
		}

		if _, dup := doc.Snippets[snip.ID]; dup {
			return m.Document{}, fmt.Errorf("%s: duplicate snippet id %q", path, snip.ID)
		}

		doc.Snippets[snip.ID] = snip.Code
	}

	return doc, nil
}

func (s *LocalDocumentStore) loadDir(ctx context.Context, dir m.Path) (m.Document, error) {
	var files []m.Path

	err := s.fs.Walk(dir, false, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && s.IsSnippetFile(m.Path(path)) {
			files = append(files, m.Path(path))
		}

		return nil
	})
	if err != nil {
		return m.Document{}, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	doc := m.Document{
		Modules:  map[string]string{},
		Snippets: make(map[string]string, len(files)),
		Files:    make(map[string]m.File, len(files)),
	}

	modulesPath := s.fs.JoinPath(string(dir), ModulesFile)
	if data, err := s.fs.ReadFile(modulesPath); err == nil {
		modules, err := decodeDocument(modulesPath, data)
		if err != nil {
			return m.Document{}, err
		}

		doc.Modules = modules.Modules
	} else if !errors.Is(err, os.ErrNotExist) {
		return m.Document{}, fmt.Errorf("failed to read %s: %w", modulesPath, err)
	}

	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)

	for _, file := range files {
		g.Go(func() error {
			id, code, err := s.LoadFile(file)
			if err != nil {
				return err
			}

			hash, err := s.fs.HashFile(file)
			if err != nil {
				return fmt.Errorf("failed to hash %s: %w", file, err)
			}

			mu.Lock()
			defer mu.Unlock()

			if _, dup := doc.Snippets[id]; dup {
				return fmt.Errorf("duplicate snippet id %q from %s", id, file)
			}

			doc.Snippets[id] = code
			doc.Files[id] = m.File{Path: file, Hash: hash}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return m.Document{}, err
	}

	slog.Debug("Loaded snippet directory", "dir", dir, "snippets", len(doc.Snippets), "modules", len(doc.Modules))

	return doc, nil
}

// LoadFile reads one snippet file.
func (s *LocalDocumentStore) LoadFile(path m.Path) (string, string, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return s.SnippetID(path), string(data), nil
}

// IsSnippetFile reports whether path has a snippet extension.
func (s *LocalDocumentStore) IsSnippetFile(path m.Path) bool {
	ext := strings.ToLower(filepath.Ext(string(path)))
	for _, e := range SnippetExtensions {
		if ext == e {
			return true
		}
	}

	return false
}

// SnippetID is the file's base name without its extension.
func (s *LocalDocumentStore) SnippetID(path m.Path) string {
	base := filepath.Base(string(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
