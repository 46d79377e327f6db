// Package model defines the data structures shared by the snippet engine,
// its adapters and the CLI.
package model

// SnippetState is the lifecycle state of a snippet.
type SnippetState int

const (
	// SnippetAbsent means the engine does not know the snippet.
	SnippetAbsent SnippetState = iota
	// SnippetRegistered means the last upsert succeeded.
	SnippetRegistered
	// SnippetErrored means the last upsert failed. The snippet keeps the
	// contribution of its last successful upsert.
	SnippetErrored
)

func (s SnippetState) String() string {
	switch s {
	case SnippetAbsent:
		return "absent"
	case SnippetRegistered:
		return "registered"
	case SnippetErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Snippet is a snapshot of one independently editable code fragment.
type Snippet struct {
	ID         string
	SourceCode string
	// TransformedCode is the last successfully transpiled code, including the
	// hoisted import prefix.
	TransformedCode string
	ImportDefs      []ImportDefinition
	// ExportNames is sorted and never contains "default".
	ExportNames []string
	// DependentValues is the sorted transitive closure of names the snippet
	// reads from other snippets.
	DependentValues  []string
	HasDefaultExport bool
	// DefaultFunctionParams is nil unless the default export is a function.
	DefaultFunctionParams []string
	DependencyError       error
	State                 SnippetState
	// Source is the handle of the built transformed code.
	Source SourceHandle
	// ValueSource is the handle last reported by the evaluator.
	ValueSource SourceHandle
}

// OwnerKind tells whether a defined value comes from a snippet or a module.
type OwnerKind string

const (
	OwnerSnippet OwnerKind = "snippet"
	OwnerModule  OwnerKind = "module"
)

// Owner identifies the producer of a defined value.
type Owner struct {
	Kind OwnerKind
	ID   string
}

func (o Owner) String() string {
	return string(o.Kind) + " " + o.ID
}

// ModuleRecord is an externally resolved module contributing names without
// snippet code.
type ModuleRecord struct {
	ID         string
	ImportDefs []ImportDefinition
	// ExportValues is sorted.
	ExportValues []string
}
