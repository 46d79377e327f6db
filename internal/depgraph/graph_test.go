package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph(t *testing.T) {
	t.Run("Set and Direct", func(t *testing.T) {
		g := New()
		g.Set("c", []string{"b", "a", "b"})

		assert.True(t, g.Has("c"))
		assert.False(t, g.Has("a"))
		assert.Equal(t, []string{"a", "b"}, g.Direct("c"))
		assert.Equal(t, []string{"c"}, g.Names())
		assert.Nil(t, g.Direct("missing"))
	})

	t.Run("Closure follows edges transitively", func(t *testing.T) {
		g := New()
		g.Set("a", nil)
		g.Set("b", []string{"a"})
		g.Set("c", []string{"b"})
		g.Set("d", nil)

		assert.Equal(t, []string{"a", "b"}, g.Closure([]string{"b"}))
		assert.Equal(t, []string{"a", "b", "c"}, g.Closure([]string{"c", "b"}))
		assert.Equal(t, []string{"unknown"}, g.Closure([]string{"unknown"}))
		assert.Empty(t, g.Closure(nil))
	})

	t.Run("Remove scrubs references", func(t *testing.T) {
		g := New()
		g.Set("a", nil)
		g.Set("b", []string{"a"})
		g.Set("c", []string{"a", "b"})

		assert.Equal(t, []string{"b", "c"}, g.References("a"))

		g.Remove("a")

		assert.False(t, g.Has("a"))
		assert.Nil(t, g.Direct("b"))
		assert.Equal(t, []string{"b"}, g.Direct("c"))
		assert.Empty(t, g.References("a"))
		assert.Equal(t, []string{"b", "c"}, g.Names())

		g.Remove("never-defined")
	})

	t.Run("Set after Remove redefines", func(t *testing.T) {
		g := New()
		g.Set("a", []string{"x"})
		g.Remove("a")
		g.Set("a", []string{"y"})

		assert.True(t, g.Has("a"))
		assert.Equal(t, []string{"y"}, g.Direct("a"))
	})
}

func TestFindCycle(t *testing.T) {
	t.Run("detects a loop through other producers", func(t *testing.T) {
		g := New()
		g.Set("a", []string{"b"})
		g.Set("c", []string{"a"})

		// A producer of b that reads c closes b -> c -> a -> b.
		path := g.FindCycle([]string{"b"}, []string{"c"}, nil)
		require.NotNil(t, path)
		assert.Equal(t, []string{"b", "c", "a", "b"}, path)
	})

	t.Run("no cycle", func(t *testing.T) {
		g := New()
		g.Set("a", nil)
		g.Set("b", []string{"a"})

		assert.Nil(t, g.FindCycle([]string{"c"}, []string{"b"}, nil))
	})

	t.Run("direct self reference", func(t *testing.T) {
		g := New()
		assert.Equal(t, []string{"x", "x"}, g.FindCycle([]string{"x"}, []string{"x"}, nil))
	})

	t.Run("skipped names are treated as absent", func(t *testing.T) {
		g := New()
		g.Set("old", []string{"target"})
		g.Set("a", []string{"old"})

		assert.NotNil(t, g.FindCycle([]string{"target"}, []string{"a"}, nil))
		assert.Nil(t, g.FindCycle([]string{"target"}, []string{"a"}, func(name string) bool { return name == "old" }))
	})

	t.Run("witness is deterministic", func(t *testing.T) {
		g := New()
		g.Set("m", []string{"z", "t"})
		g.Set("n", []string{"t"})

		for range 5 {
			assert.Equal(t, []string{"t", "m", "t"}, g.FindCycle([]string{"t"}, []string{"n", "m"}, nil))
		}
	})
}
