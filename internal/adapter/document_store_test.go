package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

func TestLocalDocumentStore_LoadYAML(t *testing.T) {
	store := NewLocalDocumentStore(NewLocalSourceFSAdapter())
	path := filepath.Join(t.TempDir(), "doc.yaml")

	writeTestFile(t, path, `modules:
  - id: react
    code: import React, { useState } from "react";
snippets:
  - id: A
    code: export const a = 1;
  - id: B
    code: |
      export const b = a + 1;
`)

	doc, err := store.Load(context.Background(), m.Path(path))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"react": `import React, { useState } from "react";`}, doc.Modules)
	assert.Equal(t, map[string]string{"A": "export const a = 1;", "B": "export const b = a + 1;\n"}, doc.Snippets)
}

func TestLocalDocumentStore_LoadYAMLErrors(t *testing.T) {
	store := NewLocalDocumentStore(NewLocalSourceFSAdapter())
	dir := t.TempDir()

	tests := map[string]string{
		"duplicate.yaml": "snippets:\n  - id: A\n    code: x\n  - id: A\n    code: y\n",
		"noid.yaml":      "snippets:\n  - code: x\n",
		"broken.yaml":    "snippets: [",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeTestFile(t, path, content)

			_, err := store.Load(context.Background(), m.Path(path))
			assert.Error(t, err)
		})
	}

	_, err := store.Load(context.Background(), m.Path(filepath.Join(dir, "missing.yaml")))
	assert.Error(t, err)
}

func TestLocalDocumentStore_LoadDir(t *testing.T) {
	store := NewLocalDocumentStore(NewLocalSourceFSAdapter())
	dir := t.TempDir()

	writeTestFile(t, filepath.Join(dir, "A.ts"), "export const a: number = 1;")
	writeTestFile(t, filepath.Join(dir, "Card.tsx"), "export default () => <div />;")
	writeTestFile(t, filepath.Join(dir, "notes.md"), "# not a snippet")
	writeTestFile(t, filepath.Join(dir, ModulesFile), "modules:\n  - id: lodash\n    code: import { chunk } from \"lodash\";\n")
	mustMkdir(t, filepath.Join(dir, "nested"))
	writeTestFile(t, filepath.Join(dir, "nested", "C.js"), "export const c = 1;")

	doc, err := store.Load(context.Background(), m.Path(dir))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"A":    "export const a: number = 1;",
		"Card": "export default () => <div />;",
	}, doc.Snippets)
	assert.Equal(t, map[string]string{"lodash": `import { chunk } from "lodash";`}, doc.Modules)
	assert.Equal(t, m.Path(filepath.Join(dir, "A.ts")), doc.Files["A"].Path)
	assert.Len(t, doc.Files["A"].Hash, 64)
}

func TestLocalDocumentStore_DuplicateIDsInDir(t *testing.T) {
	store := NewLocalDocumentStore(NewLocalSourceFSAdapter())
	dir := t.TempDir()

	writeTestFile(t, filepath.Join(dir, "A.js"), "export const a = 1;")
	writeTestFile(t, filepath.Join(dir, "A.ts"), "export const a = 2;")

	_, err := store.Load(context.Background(), m.Path(dir))
	assert.ErrorContains(t, err, "duplicate snippet id")
}

func TestLocalDocumentStore_FileHelpers(t *testing.T) {
	store := NewLocalDocumentStore(NewLocalSourceFSAdapter())

	assert.True(t, store.IsSnippetFile("x/A.TSX"))
	assert.True(t, store.IsSnippetFile("x/A.mjs"))
	assert.False(t, store.IsSnippetFile("x/modules.yaml"))
	assert.Equal(t, "Card", store.SnippetID("dir/Card.tsx"))
}

func TestFSNotifyWatcher(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalDocumentStore(NewLocalSourceFSAdapter())
	existing := filepath.Join(dir, "old.js")
	writeTestFile(t, existing, "export const old = 1;")

	w := NewFSNotifyWatcher(m.Path(dir), 20*time.Millisecond, store.IsSnippetFile)

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan Change, 8)
	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx, func(_ context.Context, c Change) error {
			changes <- c
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeTestFile(t, filepath.Join(dir, "new.js"), "export const n = 1;")
	writeTestFile(t, filepath.Join(dir, "ignored.txt"), "x")
	require.NoError(t, os.Remove(existing))

	updated := map[m.Path]bool{}
	removed := map[m.Path]bool{}

	require.Eventually(t, func() bool {
		for {
			select {
			case c := <-changes:
				for _, p := range c.Updated {
					updated[p] = true
				}

				for _, p := range c.Removed {
					removed[p] = true
				}
			default:
				return updated[m.Path(filepath.Join(dir, "new.js"))] && removed[m.Path(existing)]
			}
		}
	}, 5*time.Second, 10*time.Millisecond)

	assert.False(t, updated[m.Path(filepath.Join(dir, "ignored.txt"))])

	cancel()
	require.NoError(t, <-done)
}
