package model

import "time"

// Report summarises one snippet after a document was loaded into the engine.
type Report struct {
	ID          string
	State       SnippetState
	ExportNames []string
	DependsOn   []string
	Source      SourceHandle
	Error       error
}

// DocumentReport holds the reports of a whole document, sorted by id.
type DocumentReport struct {
	Modules []ModuleRecord
	Reports []Report
}

// Errored returns how many snippets ended in the errored state.
func (r DocumentReport) Errored() int {
	n := 0

	for _, rep := range r.Reports {
		if rep.State == SnippetErrored {
			n++
		}
	}

	return n
}

// SnippetChange is one re-evaluation observed while watching a directory.
type SnippetChange struct {
	At     time.Time
	ID     string
	State  SnippetState
	Source SourceHandle
	// Diff is a unified diff of the transformed code against the previous
	// version seen for the snippet.
	Diff  string
	Error string
}

// ScanImport is the YAML form of one import definition.
type ScanImport struct {
	Specifier string            `yaml:"specifier"`
	All       bool              `yaml:"all,omitempty"`
	Namespace string            `yaml:"namespace,omitempty"`
	Bindings  map[string]string `yaml:"bindings,omitempty"`
}

// ScanReport is what the declaration scanner found in one file.
type ScanReport struct {
	Path          string       `yaml:"path"`
	Exports       []string     `yaml:"exports"`
	Declared      []string     `yaml:"declared"`
	HasDefault    bool         `yaml:"has_default"`
	DefaultParams []string     `yaml:"default_params,omitempty"`
	Imports       []ScanImport `yaml:"imports,omitempty"`
}
