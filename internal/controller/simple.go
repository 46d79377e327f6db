package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

const timeLayout = "15:04:05"

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command

	mu   sync.Mutex
	mode StartMode
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	s.mu.Lock()
	s.mode = cfg.mode
	s.mu.Unlock()

	if cfg.mode == ModeWatch && cfg.title != "" {
		s.printf("Watching %s (press ctrl+c to stop)\n", cfg.title)
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until ctx is done in watch mode.
func (s *SimpleUI) Wait(ctx context.Context) {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	if mode != ModeWatch {
		return
	}

	<-ctx.Done()
}

// DisplayReport prints one row per snippet.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.DocumentReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderReportTable(report))

	for _, rep := range report.Reports {
		if rep.Error != nil {
			s.printf("\n%s: %v\n", rep.ID, rep.Error)
		}
	}

	return nil
}

// DisplayBuild prints where the snippets were written and the report.
func (s *SimpleUI) DisplayBuild(ctx context.Context, output m.Path, report m.DocumentReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("Wrote %d snippet(s) to %s\n", len(report.Reports)-report.Errored(), output)

	return s.DisplayReport(ctx, report)
}

func renderReportTable(report m.DocumentReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Snippet", "State", "Exports", "Depends On", "Error"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	for _, rep := range report.Reports {
		errText := ""
		if rep.Error != nil {
			errText = firstLine(rep.Error.Error())
		}

		table.Append([]string{
			rep.ID,
			rep.State.String(),
			strings.Join(rep.ExportNames, ", "),
			strings.Join(rep.DependsOn, ", "),
			errText,
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Snippets %d", len(report.Reports)),
		fmt.Sprintf("%d errored", report.Errored()),
		fmt.Sprintf("%d module(s)", len(report.Modules)),
		"",
		"",
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayChange prints a re-evaluation and its diff.
func (s *SimpleUI) DisplayChange(ctx context.Context, change m.SnippetChange) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("[%s] %s %s %s\n", change.At.Format(timeLayout), change.ID, change.State, change.Source)

	if change.Error != "" {
		s.printf("  error: %s\n", change.Error)
	}

	if change.Diff != "" {
		s.printf("%s\n", strings.TrimRight(change.Diff, "\n"))
	}
}

// DisplayScan prints the scan reports as YAML.
func (s *SimpleUI) DisplayScan(ctx context.Context, reports []m.ScanReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode scan report: %w", err)
	}

	s.printf("%s", data)

	return nil
}

// DisplayJournal prints recorded engine events.
func (s *SimpleUI) DisplayJournal(ctx context.Context, entries []m.JournalEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderJournalTable(entries))

	return nil
}

func renderJournalTable(entries []m.JournalEntry) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Time", "Event", "ID", "Detail"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, entry := range entries {
		table.Append([]string{
			entry.At.Format(timeLayout),
			string(entry.Kind),
			entry.ID,
			journalDetail(entry),
		})
	}

	table.SetFooter([]string{"Total Events", fmt.Sprintf("%d", len(entries)), "", ""})
	table.Render()

	return tableBuffer.String()
}

func journalDetail(entry m.JournalEntry) string {
	switch {
	case entry.Error != "":
		return firstLine(entry.Error)
	case len(entry.Params) > 0:
		return "params: " + strings.Join(entry.Params, ", ")
	default:
		return string(entry.Source)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
