package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEsbuildTranspiler(t *testing.T) {
	ctx := context.Background()
	tr := NewEsbuildTranspiler(EsbuildOptions{})

	t.Run("drops unused imports", func(t *testing.T) {
		res, err := tr.Transform(ctx, "import { unused } from \"snippet://B/1\";\nimport { used } from \"snippet://C/2\";\nexport const a = used();")
		require.NoError(t, err)
		require.Empty(t, res.Errors)

		assert.NotContains(t, res.Code, "unused")
		assert.Contains(t, res.Code, `from "snippet://C/2"`)
		assert.Contains(t, res.Code, "export const a = used();")
	})

	t.Run("strips types and compiles JSX", func(t *testing.T) {
		res, err := tr.Transform(ctx, "type P = { n: number };\nexport const view = (p: P) => <b>{p.n}</b>;")
		require.NoError(t, err)
		require.Empty(t, res.Errors)

		assert.NotContains(t, res.Code, "type P")
		assert.Contains(t, res.Code, "React.createElement")
	})

	t.Run("custom JSX factory", func(t *testing.T) {
		custom := NewEsbuildTranspiler(EsbuildOptions{JSXFactory: "h", JSXFragment: "Fragment"})

		res, err := custom.Transform(ctx, "export const v = <><i /></>;")
		require.NoError(t, err)
		assert.Contains(t, res.Code, "h(Fragment")
	})

	t.Run("reports syntax errors", func(t *testing.T) {
		res, err := tr.Transform(ctx, "export const = ;")
		require.NoError(t, err)
		require.NotEmpty(t, res.Errors)
		assert.Equal(t, 1, res.Errors[0].Line)
		assert.NotEmpty(t, FormatMessages(res.Errors))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := tr.Transform(cancelled, "export const a = 1;")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type countingTranspiler struct {
	calls int
}

func (c *countingTranspiler) Transform(_ context.Context, code string) (TransformResult, error) {
	c.calls++
	return TransformResult{Code: code}, nil
}

func TestCachedTranspiler(t *testing.T) {
	ctx := context.Background()
	next := &countingTranspiler{}

	cached, err := NewCachedTranspiler(next, 2)
	require.NoError(t, err)

	for range 3 {
		res, err := cached.Transform(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "a", res.Code)
	}

	assert.Equal(t, 1, next.calls)

	_, _ = cached.Transform(ctx, "b")
	_, _ = cached.Transform(ctx, "c")

	assert.Equal(t, 2, cached.Len())

	_, _ = cached.Transform(ctx, "a")
	assert.Equal(t, 4, next.calls)

	_, err = NewCachedTranspiler(next, 0)
	assert.Error(t, err)
}

func TestFormatMessages(t *testing.T) {
	out := FormatMessages([]Message{
		{Text: "Expected identifier", Line: 1, Column: 13},
		{Text: "no location"},
	})

	assert.Equal(t, "1:13: Expected identifier\nno location", out)
}
