package model

import "time"

// DependencyUpdate tells the evaluator that a snippet must be re-evaluated.
type DependencyUpdate struct {
	ID              string
	TransformedCode string
	Err             error
	Source          SourceHandle
}

// ModuleUpdate reports that a module was added, changed or removed.
type ModuleUpdate struct {
	ID string
}

// RenderParamsUpdate reports that values feeding a default-exported
// function's parameters changed.
type RenderParamsUpdate struct {
	ID     string
	Params []string
	Values map[string]any
}

// SourceRevoke reports that a source handle is no longer referenced.
type SourceRevoke struct {
	ID     string
	Source SourceHandle
}

// EventKind names a journal entry kind.
type EventKind string

const (
	EventDependencyUpdate   EventKind = "dependency"
	EventModuleUpdate       EventKind = "module"
	EventRenderParamsUpdate EventKind = "render-params"
	EventSourceRevoke       EventKind = "revoke"
)

// JournalEntry is the serialisable form of an engine event.
type JournalEntry struct {
	At     time.Time
	Kind   EventKind
	ID     string
	Source SourceHandle
	Error  string
	Params []string
}
