// Package controller provides output adapters for displaying snippet graph
// reports and live updates.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeReport StartMode = iota
	ModeWatch
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	title string
}

// WithReportMode sets the UI to print one-shot reports.
func WithReportMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeReport
	}
}

// WithWatchMode sets the UI to follow live updates until closed.
func WithWatchMode(title string) StartOption {
	return func(c *StartConfig) {
		c.mode = ModeWatch
		c.title = title
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeReport}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines the interface for displaying snippet reports.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	// Wait blocks until the user closes the UI or ctx is done. It returns at
	// once in report mode.
	Wait(ctx context.Context)
	DisplayReport(ctx context.Context, report m.DocumentReport) error
	DisplayBuild(ctx context.Context, output m.Path, report m.DocumentReport) error
	DisplayChange(ctx context.Context, change m.SnippetChange)
	DisplayScan(ctx context.Context, reports []m.ScanReport) error
	DisplayJournal(ctx context.Context, entries []m.JournalEntry) error
}

// NewUI picks the interactive TUI on a terminal and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
