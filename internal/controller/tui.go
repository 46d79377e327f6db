package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"gopkg.in/yaml.v3"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	addedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	removedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

const navigationHelp = "  ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit"

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	mode    StartMode
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the live dashboard in watch mode.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = cfg.mode
	if cfg.mode != ModeWatch || t.program != nil {
		return nil
	}

	width, height := t.size()
	model := newWatchModel(cfg.title, width, height)

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen(), tea.WithContext(ctx))
	done := make(chan struct{})

	go func() {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Debug("TUI stopped", "error", err)
		}
	}()

	t.program = program
	t.done = done

	return nil
}

// Close stops the dashboard and waits for it to restore the terminal.
func (t *TUI) Close(ctx context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program, t.done = nil, nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Wait blocks until the user quits the dashboard or ctx is done.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (t *TUI) send(msg tea.Msg) bool {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return false
	}

	program.Send(msg)

	return true
}

func (t *TUI) size() (int, int) {
	f, ok := t.output.(*os.File)
	if !ok {
		return 0, 0
	}

	width, height, err := term.GetSize(f.Fd())
	if err != nil {
		return 0, 0
	}

	return width, height
}

// DisplayReport shows the report in a pager, or feeds it to the dashboard in
// watch mode.
func (t *TUI) DisplayReport(ctx context.Context, report m.DocumentReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.send(reportMsg(report)) {
		return nil
	}

	summary := []string{
		fmt.Sprintf("  Total: %d snippets | Errored: %d | Modules: %d",
			len(report.Reports), report.Errored(), len(report.Modules)),
	}

	return t.page(newPageModel("Snippet Report", reportLines(report), summary))
}

// DisplayBuild shows the build report.
func (t *TUI) DisplayBuild(ctx context.Context, output m.Path, report m.DocumentReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	summary := []string{
		fmt.Sprintf("  Wrote %d snippet(s) to %s | Errored: %d",
			len(report.Reports)-report.Errored(), output, report.Errored()),
	}

	return t.page(newPageModel("Build", reportLines(report), summary))
}

// DisplayChange forwards a re-evaluation to the dashboard.
func (t *TUI) DisplayChange(ctx context.Context, change m.SnippetChange) {
	if ctx.Err() != nil {
		return
	}

	if t.send(changeMsg(change)) {
		return
	}

	_, _ = fmt.Fprintf(t.output, "%s %s %s\n", change.ID, stateLabel(change.State), change.Source)
}

// DisplayScan prints the scan reports as YAML.
func (t *TUI) DisplayScan(ctx context.Context, reports []m.ScanReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode scan report: %w", err)
	}

	_, err = fmt.Fprint(t.output, string(data))

	return err
}

// DisplayJournal shows recorded engine events in a pager.
func (t *TUI) DisplayJournal(ctx context.Context, entries []m.JournalEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("  %s  %-13s %s  %s",
			mutedStyle.Render(entry.At.Format(timeLayout)), entry.Kind, entry.ID, journalDetail(entry)))
	}

	summary := []string{fmt.Sprintf("  Total: %d events", len(entries))}

	return t.page(newPageModel("Event Journal", lines, summary))
}

// page prints short content directly and runs a pager for long content.
func (t *TUI) page(model pageModel) error {
	model.width, model.height = t.size()

	if !model.needsPagination() {
		_, err := fmt.Fprint(t.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func stateLabel(state m.SnippetState) string {
	switch state {
	case m.SnippetRegistered:
		return okStyle.Render("✓ " + state.String())
	case m.SnippetErrored:
		return errorStyle.Render("✗ " + state.String())
	default:
		return mutedStyle.Render("- " + state.String())
	}
}

func reportLines(report m.DocumentReport) []string {
	lines := make([]string, 0, len(report.Reports))

	for _, rep := range report.Reports {
		line := fmt.Sprintf("  %s %s", stateLabel(rep.State), rep.ID)

		if len(rep.ExportNames) > 0 {
			line += " exports " + strings.Join(rep.ExportNames, ", ")
		}

		if len(rep.DependsOn) > 0 {
			line += mutedStyle.Render(" <- " + strings.Join(rep.DependsOn, ", "))
		}

		lines = append(lines, line)

		if rep.Error != nil {
			lines = append(lines, "      "+errorStyle.Render(firstLine(rep.Error.Error())))
		}
	}

	return lines
}

// pageModel is a scrollable list of pre-rendered lines.
type pageModel struct {
	title    string
	lines    []string
	summary  []string
	height   int
	width    int
	offset   int
	quitting bool
}

func newPageModel(title string, lines, summary []string) pageModel {
	return pageModel{title: title, lines: lines, summary: summary}
}

func (pm pageModel) Init() tea.Cmd {
	return nil
}

func (pm pageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.height = msg.Height
		pm.width = msg.Width

		return pm, nil

	case tea.KeyMsg:
		return pm.handleKeyPress(msg)
	}

	return pm, nil
}

func (pm pageModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // only quit keys are matched by type
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		pm.quitting = true
		return pm, tea.Quit
	}

	switch msg.String() {
	case "q":
		pm.quitting = true
		return pm, tea.Quit
	case "down", "j":
		pm.offset = min(pm.offset+1, pm.maxOffset())
	case "up", "k":
		pm.offset = max(pm.offset-1, 0)
	case "g", "home":
		pm.offset = 0
	case "G", "end":
		pm.offset = pm.maxOffset()
	case "d", "pgdown":
		pm.offset = min(pm.offset+pm.itemsPerPage(), pm.maxOffset())
	case "u", "pgup":
		pm.offset = max(pm.offset-pm.itemsPerPage(), 0)
	}

	return pm, nil
}

func (pm pageModel) reserved() int {
	// header, blank, summary block and a two-line footer
	return 4 + len(pm.summary) + 3
}

func (pm pageModel) itemsPerPage() int {
	if pm.height == 0 {
		return 10
	}

	return max(pm.height-pm.reserved(), 1)
}

func (pm pageModel) maxOffset() int {
	return max(len(pm.lines)-pm.itemsPerPage(), 0)
}

func (pm pageModel) needsPagination() bool {
	return pm.height > 0 && len(pm.lines) > pm.itemsPerPage()
}

func (pm pageModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render("  snipgraph · "+pm.title))

	if len(pm.lines) == 0 {
		b.WriteString("  📭 Nothing to show\n")
		return b.String()
	}

	visible := pm.lines

	if pm.needsPagination() {
		start := min(pm.offset, pm.maxOffset())
		end := min(start+pm.itemsPerPage(), len(pm.lines))
		visible = pm.lines[start:end]
	}

	for _, line := range visible {
		fmt.Fprintf(&b, "%s\n", line)
	}

	b.WriteString("\n")

	for _, line := range pm.summary {
		fmt.Fprintf(&b, "%s\n", line)
	}

	if pm.needsPagination() {
		start := min(pm.offset, pm.maxOffset())
		end := min(start+pm.itemsPerPage(), len(pm.lines))

		fmt.Fprintf(&b, "\n  Lines %d-%d of %d\n", start+1, end, len(pm.lines))
		b.WriteString(mutedStyle.Render(navigationHelp) + "\n")
	}

	return b.String()
}

type changeMsg m.SnippetChange

type reportMsg m.DocumentReport

// watchModel is the live dashboard: a list of snippets with their latest
// state and a viewport showing the selected snippet's last diff.
type watchModel struct {
	title    string
	ids      []string
	latest   map[string]m.SnippetChange
	events   int
	cursor   int
	viewport viewport.Model
	width    int
	height   int
	quitting bool
}

func newWatchModel(title string, width, height int) watchModel {
	wm := watchModel{
		title:    title,
		latest:   make(map[string]m.SnippetChange),
		viewport: viewport.New(max(width, 40), 5),
		width:    width,
		height:   height,
	}

	return wm.resize()
}

func (wm watchModel) Init() tea.Cmd {
	return nil
}

func (wm watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		wm.width = msg.Width
		wm.height = msg.Height

		return wm.resize(), nil

	case changeMsg:
		wm = wm.record(m.SnippetChange(msg))
		wm.events++

		return wm.resize().refresh(), nil

	case reportMsg:
		for _, rep := range msg.Reports {
			change := m.SnippetChange{ID: rep.ID, State: rep.State, Source: rep.Source}
			if rep.Error != nil {
				change.Error = rep.Error.Error()
			}

			wm = wm.record(change)
		}

		return wm.resize().refresh(), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			wm.quitting = true
			return wm, tea.Quit
		case "down", "j":
			wm.cursor = min(wm.cursor+1, max(len(wm.ids)-1, 0))
			return wm.refresh(), nil
		case "up", "k":
			wm.cursor = max(wm.cursor-1, 0)
			return wm.refresh(), nil
		case "g", "home":
			wm.cursor = 0
			return wm.refresh(), nil
		case "G", "end":
			wm.cursor = max(len(wm.ids)-1, 0)
			return wm.refresh(), nil
		}
	}

	var cmd tea.Cmd

	wm.viewport, cmd = wm.viewport.Update(msg)

	return wm, cmd
}

func (wm watchModel) record(change m.SnippetChange) watchModel {
	if _, known := wm.latest[change.ID]; !known {
		pos, _ := slices.BinarySearch(wm.ids, change.ID)
		wm.ids = slices.Insert(slices.Clone(wm.ids), pos, change.ID)
	}

	if change.State == m.SnippetAbsent {
		delete(wm.latest, change.ID)

		pos, _ := slices.BinarySearch(wm.ids, change.ID)
		wm.ids = slices.Delete(slices.Clone(wm.ids), pos, pos+1)
		wm.cursor = min(wm.cursor, max(len(wm.ids)-1, 0))

		return wm
	}

	wm.latest[change.ID] = change

	return wm
}

// listRows is how many snippet rows fit above the viewport.
func (wm watchModel) listRows() int {
	if wm.height == 0 {
		return min(len(wm.ids), 10)
	}

	return min(len(wm.ids), max(wm.height/3, 1))
}

func (wm watchModel) resize() watchModel {
	if wm.width > 0 {
		wm.viewport.Width = wm.width
	}

	if wm.height > 0 {
		// title, stats, two separators and the footer
		wm.viewport.Height = max(wm.height-wm.listRows()-6, 3)
	}

	return wm
}

func (wm watchModel) refresh() watchModel {
	if len(wm.ids) == 0 {
		wm.viewport.SetContent("")
		return wm
	}

	wm.viewport.SetContent(renderChange(wm.latest[wm.ids[wm.cursor]]))
	wm.viewport.GotoTop()

	return wm
}

func renderChange(change m.SnippetChange) string {
	var b strings.Builder

	if change.Error != "" {
		b.WriteString(errorStyle.Render(change.Error))
		b.WriteString("\n")
	}

	for _, line := range strings.Split(strings.TrimRight(change.Diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(mutedStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addedStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(removedStyle.Render(line))
		default:
			b.WriteString(line)
		}

		b.WriteString("\n")
	}

	return b.String()
}

func (wm watchModel) View() string {
	if wm.quitting {
		return ""
	}

	var b strings.Builder

	errored := 0

	for _, id := range wm.ids {
		if wm.latest[id].State == m.SnippetErrored {
			errored++
		}
	}

	fmt.Fprintf(&b, "%s\n", titleStyle.Render("  snipgraph · watching "+wm.title))
	fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("  %d snippets | %d errored | %d updates",
		len(wm.ids), errored, wm.events)))

	rows := wm.listRows()
	start := min(max(wm.cursor-rows+1, 0), max(len(wm.ids)-rows, 0))

	for i := start; i < start+rows && i < len(wm.ids); i++ {
		change := wm.latest[wm.ids[i]]

		line := fmt.Sprintf("%s %s", stateLabel(change.State), change.ID)
		if i == wm.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}

		fmt.Fprintf(&b, "%s %s\n", line, mutedStyle.Render(string(change.Source)))
	}

	b.WriteString(mutedStyle.Render(strings.Repeat("─", max(wm.viewport.Width, 1))) + "\n")
	b.WriteString(wm.viewport.View() + "\n")
	b.WriteString(mutedStyle.Render("  ↑/k ↓/j: select | pgup/pgdn: scroll diff | q: quit"))

	return b.String()
}
