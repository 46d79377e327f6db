package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

func TestTUI_DisplayReport_SmallList(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	require.NoError(t, tui.Start(context.Background()))
	require.NoError(t, tui.DisplayReport(context.Background(), sampleReport()))

	got := buf.String()
	assert.Contains(t, got, "Snippet Report")
	assert.Contains(t, got, "exports foo")
	assert.Contains(t, got, "<- foo")
	assert.Contains(t, got, "Total: 3 snippets | Errored: 1 | Modules: 1")
	assert.Contains(t, got, "cyclic reference")

	tui.Wait(context.Background())
	tui.Close(context.Background())
}

func TestTUI_DisplayJournal_Empty(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	require.NoError(t, tui.DisplayJournal(context.Background(), nil))
	assert.Contains(t, buf.String(), "Nothing to show")
}

func TestTUI_DisplayChange_WithoutDashboard(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	tui.DisplayChange(context.Background(), m.SnippetChange{ID: "a", State: m.SnippetRegistered, Source: "snippet://a/1"})
	assert.Contains(t, buf.String(), "a")
	assert.Contains(t, buf.String(), "snippet://a/1")
}

func TestTUI_DisplayBuildAndScan(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	require.NoError(t, tui.DisplayBuild(context.Background(), "dist", sampleReport()))
	assert.Contains(t, buf.String(), "Wrote 2 snippet(s) to dist")

	buf.Reset()
	require.NoError(t, tui.DisplayScan(context.Background(), []m.ScanReport{{Path: "x.js", HasDefault: true}}))
	assert.Contains(t, buf.String(), "has_default: true")
}

func pageLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}

	return lines
}

func press(model tea.Model, key string) tea.Model {
	var msg tea.KeyMsg

	switch key {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}

	next, _ := model.Update(msg)

	return next
}

func TestPageModel_Pagination(t *testing.T) {
	pm := newPageModel("Test", pageLines(50), []string{"summary"})

	next, _ := pm.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	pm = next.(pageModel)

	per := pm.itemsPerPage()
	require.Equal(t, 20-pm.reserved(), per)
	require.True(t, pm.needsPagination())
	require.Equal(t, 50-per, pm.maxOffset())

	pm = press(pm, "j").(pageModel)
	assert.Equal(t, 1, pm.offset)

	pm = press(pm, "k").(pageModel)
	pm = press(pm, "k").(pageModel)
	assert.Equal(t, 0, pm.offset)

	pm = press(pm, "G").(pageModel)
	assert.Equal(t, pm.maxOffset(), pm.offset)

	pm = press(pm, "d").(pageModel)
	assert.Equal(t, pm.maxOffset(), pm.offset)

	pm = press(pm, "g").(pageModel)
	pm = press(pm, "d").(pageModel)
	assert.Equal(t, per, pm.offset)

	pm = press(pm, "u").(pageModel)
	assert.Equal(t, 0, pm.offset)

	view := pm.View()
	assert.Contains(t, view, "line 0")
	assert.NotContains(t, view, "line 49")
	assert.Contains(t, view, fmt.Sprintf("Lines 1-%d of 50", per))
}

func TestPageModel_Quit(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			pm := newPageModel("Test", pageLines(3), nil)

			next, cmd := pm.Update(tea.KeyMsg(keyFor(key)))
			require.NotNil(t, cmd)
			assert.True(t, next.(pageModel).quitting)
		})
	}
}

func keyFor(key string) tea.Key {
	switch key {
	case "esc":
		return tea.Key{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.Key{Type: tea.KeyCtrlC}
	default:
		return tea.Key{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestPageModel_NoPaginationWithoutHeight(t *testing.T) {
	pm := newPageModel("Test", pageLines(50), nil)

	assert.False(t, pm.needsPagination())
	assert.Contains(t, pm.View(), "line 49")
}

func TestWatchModel(t *testing.T) {
	wm := newWatchModel("snippets", 80, 30)

	next, _ := wm.Update(reportMsg(sampleReport()))
	wm = next.(watchModel)
	require.Equal(t, []string{"a", "b", "c"}, wm.ids)

	next, _ = wm.Update(changeMsg(m.SnippetChange{
		ID:    "a",
		State: m.SnippetRegistered,
		Diff:  "--- a\n+++ a\n-const x = 1\n+const x = 2\n",
	}))
	wm = next.(watchModel)
	assert.Equal(t, 1, wm.events)
	assert.Contains(t, wm.viewport.View(), "+const x = 2")

	wm = press(wm, "j").(watchModel)
	wm = press(wm, "j").(watchModel)
	wm = press(wm, "j").(watchModel)
	assert.Equal(t, 2, wm.cursor)
	assert.Contains(t, wm.viewport.View(), "cyclic reference")

	next, _ = wm.Update(changeMsg(m.SnippetChange{ID: "c", State: m.SnippetAbsent}))
	wm = next.(watchModel)
	assert.Equal(t, []string{"a", "b"}, wm.ids)
	assert.Equal(t, 1, wm.cursor)

	next, _ = wm.Update(changeMsg(m.SnippetChange{ID: "aa", State: m.SnippetErrored, Error: "bad"}))
	wm = next.(watchModel)
	assert.Equal(t, []string{"a", "aa", "b"}, wm.ids)

	view := wm.View()
	assert.Contains(t, view, "watching snippets")
	assert.Contains(t, view, "3 snippets | 1 errored | 3 updates")

	wm = press(wm, "q").(watchModel)
	assert.True(t, wm.quitting)
	assert.Empty(t, wm.View())
}

func TestRenderChange(t *testing.T) {
	out := renderChange(m.SnippetChange{Error: "boom", Diff: "@@ -1 +1 @@\n-a\n+b\n"})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "boom")
	assert.Contains(t, lines[2], "-a")
	assert.Contains(t, lines[3], "+b")
}
