package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

// SourceHost turns transformed snippet code into an addressable handle that
// other snippets can import from.
type SourceHost interface {
	// BuildSource publishes code for snippet id and returns its handle.
	BuildSource(ctx context.Context, id string, code string) (m.SourceHandle, error)
	// RevokeSource releases a handle that is no longer referenced. Unknown
	// handles are ignored.
	RevokeSource(ctx context.Context, handle m.SourceHandle) error
}

// Resolver maps a module specifier to the specifier used in hoisted imports.
type Resolver func(specifier string) string

// IdentityResolver returns specifiers unchanged.
func IdentityResolver(specifier string) string {
	return specifier
}

// MapResolver resolves specifiers through a fixed table and leaves unknown
// specifiers unchanged.
func MapResolver(table map[string]string) Resolver {
	resolved := make(map[string]string, len(table))
	for k, v := range table {
		resolved[k] = v
	}

	return func(specifier string) string {
		if r, ok := resolved[specifier]; ok {
			return r
		}

		return specifier
	}
}

func contentHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// MemorySourceHost keeps built code in memory under content-addressed
// snippet://<id>/<hash> handles.
type MemorySourceHost struct {
	mu      sync.RWMutex
	sources map[m.SourceHandle]string
}

// NewMemorySourceHost constructs an empty MemorySourceHost.
func NewMemorySourceHost() *MemorySourceHost {
	return &MemorySourceHost{sources: make(map[m.SourceHandle]string)}
}

// BuildSource stores code and returns its handle.
func (h *MemorySourceHost) BuildSource(_ context.Context, id string, code string) (m.SourceHandle, error) {
	handle := m.SourceHandle("snippet://" + url.PathEscape(id) + "/" + contentHash(code)[:12])

	h.mu.Lock()
	defer h.mu.Unlock()

	h.sources[handle] = code

	return handle, nil
}

// RevokeSource forgets handle.
func (h *MemorySourceHost) RevokeSource(_ context.Context, handle m.SourceHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.sources, handle)

	return nil
}

// Code returns the code stored under handle.
func (h *MemorySourceHost) Code(handle m.SourceHandle) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	code, ok := h.sources[handle]

	return code, ok
}

// Handles returns every live handle, sorted.
func (h *MemorySourceHost) Handles() []m.SourceHandle {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]m.SourceHandle, 0, len(h.sources))
	for handle := range h.sources {
		out = append(out, handle)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// ManifestEntry describes one built snippet.
type ManifestEntry struct {
	ID      string   `yaml:"id"`
	File    string   `yaml:"file"`
	Exports []string `yaml:"exports,omitempty"`
	Error   string   `yaml:"error,omitempty"`
}

// Manifest lists the snippets written by a DiskSourceHost.
type Manifest struct {
	Snippets []ManifestEntry `yaml:"snippets"`
}

// ManifestFile is the name of the manifest written next to built snippets.
const ManifestFile = "manifest.yaml"

// DiskSourceHost writes built snippets as <dir>/<id>.<hash>.js. Handles are
// relative "./<file>" specifiers, so built files import each other directly.
type DiskSourceHost struct {
	fs  SourceFSAdapter
	dir m.Path

	once    sync.Once
	initErr error
}

// NewDiskSourceHost constructs a host writing into dir.
func NewDiskSourceHost(fs SourceFSAdapter, dir m.Path) *DiskSourceHost {
	return &DiskSourceHost{fs: fs, dir: dir}
}

// Dir returns the output directory.
func (h *DiskSourceHost) Dir() m.Path {
	return h.dir
}

// BuildSource writes code to a content-addressed file.
func (h *DiskSourceHost) BuildSource(ctx context.Context, id string, code string) (m.SourceHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	h.once.Do(func() {
		h.initErr = h.fs.MkdirAll(h.dir)
	})

	if h.initErr != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", h.dir, h.initErr)
	}

	name := fileName(id) + "." + contentHash(code)[:8] + ".js"
	if err := h.fs.WriteFile(h.fs.JoinPath(string(h.dir), name), []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("failed to write snippet %s: %w", id, err)
	}

	return m.SourceHandle("./" + name), nil
}

// RevokeSource deletes the file behind handle. Handles not produced by this
// host are ignored.
func (h *DiskSourceHost) RevokeSource(_ context.Context, handle m.SourceHandle) error {
	name, ok := strings.CutPrefix(string(handle), "./")
	if !ok || strings.ContainsAny(name, `/\`) {
		return nil
	}

	return h.fs.Remove(h.fs.JoinPath(string(h.dir), name))
}

// WriteManifest writes the manifest into the output directory.
func (h *DiskSourceHost) WriteManifest(manifest Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := h.fs.MkdirAll(h.dir); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", h.dir, err)
	}

	return h.fs.WriteFile(h.fs.JoinPath(string(h.dir), ManifestFile), data, 0o644)
}

// fileName makes a snippet id safe to use as a file name.
func fileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}

		return r
	}, id)
}
