package domain

import (
	"errors"
	"fmt"
	"strings"

	"snipgraph.dev/pkg/snipgraph/internal/adapter"
	m "snipgraph.dev/pkg/snipgraph/internal/model"
)

var (
	// ErrSnippetNotFound is returned by operations on a snippet the engine
	// does not know.
	ErrSnippetNotFound = errors.New("snippet not found")
	// ErrNoFixedPoint is returned when dependency recomputation keeps
	// changing after the configured number of passes.
	ErrNoFixedPoint = errors.New("dependency recomputation did not settle")
)

// TranspileError reports snippet code that could not be transpiled or built.
type TranspileError struct {
	ID       string
	Messages []adapter.Message
	Err      error
}

func (e *TranspileError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("snippet %s: failed to transpile: %s", e.ID, adapter.FormatMessages(e.Messages))
	}

	return fmt.Sprintf("snippet %s: failed to transpile: %v", e.ID, e.Err)
}

func (e *TranspileError) Unwrap() error {
	return e.Err
}

// DuplicateDefinitionError reports a name that Definer tried to export while
// Owner already defines it. Definer and Owner are equal when the name is both
// imported and exported by the same snippet.
type DuplicateDefinitionError struct {
	Definer m.Owner
	Name    string
	Owner   m.Owner
}

func (e *DuplicateDefinitionError) Error() string {
	if e.Definer == e.Owner {
		return fmt.Sprintf("%s: %q is both imported and exported", e.Definer, e.Name)
	}

	return fmt.Sprintf("%s: duplicate definition of %q, already defined by %s", e.Definer, e.Name, e.Owner)
}

// CyclicReferenceError reports that snippet ID would close a dependency loop.
// Path starts and ends with the same name.
type CyclicReferenceError struct {
	ID   string
	Path []string
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("snippet %s: cyclic reference: %s", e.ID, strings.Join(e.Path, " -> "))
}

func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Error() == b.Error()
}
