package adapter

import (
	"context"
	"crypto/sha256"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Message is a diagnostic reported by a transpiler. Line is 1-based and
// Column is a 0-based byte offset.
type Message struct {
	Text     string
	Line     int
	Column   int
	LineText string
}

// TransformResult is the outcome of transpiling one snippet. Errors is
// non-empty when the input could not be transpiled.
type TransformResult struct {
	Code     string
	Errors   []Message
	Warnings []Message
}

// Transpiler turns snippet source (TypeScript, JSX) into plain ES module code.
type Transpiler interface {
	Transform(ctx context.Context, code string) (TransformResult, error)
}

// JSXMode selects how JSX is compiled.
type JSXMode string

const (
	JSXTransform JSXMode = "transform"
	JSXAutomatic JSXMode = "automatic"
	JSXPreserve  JSXMode = "preserve"
)

// EsbuildOptions configures EsbuildTranspiler.
type EsbuildOptions struct {
	JSX         JSXMode
	JSXFactory  string
	JSXFragment string
}

// EsbuildTranspiler transpiles with esbuild's TSX loader. Imports that the
// code never reads are dropped from the output, which is what keeps unused
// hoisted imports out of a snippet's dependencies.
type EsbuildTranspiler struct {
	opts api.TransformOptions
}

// NewEsbuildTranspiler constructs an EsbuildTranspiler.
func NewEsbuildTranspiler(opts EsbuildOptions) *EsbuildTranspiler {
	transform := api.TransformOptions{
		Loader:      api.LoaderTSX,
		Target:      api.ESNext,
		Sourcefile:  "snippet.tsx",
		LogLevel:    api.LogLevelSilent,
		JSXFactory:  opts.JSXFactory,
		JSXFragment: opts.JSXFragment,
	}

	switch opts.JSX {
	case JSXAutomatic:
		transform.JSX = api.JSXAutomatic
	case JSXPreserve:
		transform.JSX = api.JSXPreserve
	default:
		transform.JSX = api.JSXTransform
	}

	return &EsbuildTranspiler{opts: transform}
}

// Transform transpiles code. Syntax errors are reported in the result, not
// as an error.
func (t *EsbuildTranspiler) Transform(ctx context.Context, code string) (TransformResult, error) {
	if err := ctx.Err(); err != nil {
		return TransformResult{}, err
	}

	res := api.Transform(code, t.opts)

	return TransformResult{
		Code:     string(res.Code),
		Errors:   convertMessages(res.Errors),
		Warnings: convertMessages(res.Warnings),
	}, nil
}

func convertMessages(msgs []api.Message) []Message {
	if len(msgs) == 0 {
		return nil
	}

	out := make([]Message, 0, len(msgs))

	for _, msg := range msgs {
		converted := Message{Text: msg.Text}
		if msg.Location != nil {
			converted.Line = msg.Location.Line
			converted.Column = msg.Location.Column
			converted.LineText = msg.Location.LineText
		}

		out = append(out, converted)
	}

	return out
}

// CachedTranspiler memoises another transpiler's results in an LRU cache keyed
// by the SHA-256 of the input. Failed calls are not cached.
type CachedTranspiler struct {
	next  Transpiler
	cache *lru.Cache[[sha256.Size]byte, TransformResult]
}

// NewCachedTranspiler wraps next with a cache of at most size entries.
func NewCachedTranspiler(next Transpiler, size int) (*CachedTranspiler, error) {
	cache, err := lru.New[[sha256.Size]byte, TransformResult](size)
	if err != nil {
		return nil, err
	}

	return &CachedTranspiler{next: next, cache: cache}, nil
}

// Transform returns the cached result for code or delegates to the wrapped
// transpiler.
func (t *CachedTranspiler) Transform(ctx context.Context, code string) (TransformResult, error) {
	key := sha256.Sum256([]byte(code))

	if res, ok := t.cache.Get(key); ok {
		return res, nil
	}

	res, err := t.next.Transform(ctx, code)
	if err != nil {
		return TransformResult{}, err
	}

	t.cache.Add(key, res)

	return res, nil
}

// Len returns the number of cached results.
func (t *CachedTranspiler) Len() int {
	return t.cache.Len()
}

// FormatMessages renders diagnostics one per line as "line:column: text".
func FormatMessages(msgs []Message) string {
	var b strings.Builder

	for i, msg := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}

		if msg.Line > 0 {
			b.WriteString(strconv.Itoa(msg.Line))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(msg.Column))
			b.WriteString(": ")
		}

		b.WriteString(msg.Text)
	}

	return b.String()
}
