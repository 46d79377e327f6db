package eventlog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type record struct {
	Kind string
	ID   string
	At   time.Time
}

func TestLog(t *testing.T) {
	t.Run("Create at path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "events.gob")

		log, err := Create[int](path)
		require.NoError(t, err)
		defer log.Close()

		require.Equal(t, path, log.Path())
		require.Equal(t, uint64(0), log.Len())
	})

	t.Run("Create temporary", func(t *testing.T) {
		log, err := Create[int]("")
		require.NoError(t, err)
		defer log.Close()

		require.Contains(t, log.Path(), "snipgraph")
	})

	t.Run("Append and Get", func(t *testing.T) {
		log, err := Create[string](filepath.Join(t.TempDir(), "j.gob"))
		require.NoError(t, err)
		defer log.Close()

		require.NoError(t, log.Append("first"))
		require.NoError(t, log.Append("second"))

		v, err := log.Get(1)
		require.NoError(t, err)
		require.Equal(t, "second", v)

		v, err = log.Get(0)
		require.NoError(t, err)
		require.Equal(t, "first", v)

		_, err = log.Get(2)
		require.Error(t, err)
	})

	t.Run("Range stops on callback error", func(t *testing.T) {
		log, err := Create[int](filepath.Join(t.TempDir(), "j.gob"))
		require.NoError(t, err)
		defer log.Close()

		require.NoError(t, log.AppendBatch([]int{1, 2, 3}))

		count := 0
		err = log.Range(func(index uint64, _ int) error {
			count++
			if index == 1 {
				return errors.New("stop")
			}

			return nil
		})

		require.Error(t, err)
		require.Equal(t, 2, count)
	})

	t.Run("Append after Close fails", func(t *testing.T) {
		log, err := Create[int](filepath.Join(t.TempDir(), "j.gob"))
		require.NoError(t, err)

		require.NoError(t, log.Append(1))
		require.NoError(t, log.Close())
		require.NoError(t, log.Close())
		require.Error(t, log.Append(2))

		v, err := log.Get(0)
		require.NoError(t, err)
		require.Equal(t, 1, v)
	})
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.gob")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	log, err := Create[record](path)
	require.NoError(t, err)

	want := []record{
		{Kind: "dependency", ID: "a", At: at},
		{Kind: "module", ID: "react", At: at.Add(time.Second)},
	}

	require.NoError(t, log.AppendBatch(want))
	require.NoError(t, log.Close())

	got, err := Read[record](path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, want[0].ID, got[0].ID)
	require.True(t, want[1].At.Equal(got[1].At))

	_, err = Read[record](filepath.Join(t.TempDir(), "missing.gob"))
	require.Error(t, err)
}

func TestReadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gob")

	log, err := Create[record](path)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	got, err := Read[record](path)
	require.NoError(t, err)
	require.Empty(t, got)
}

func BenchmarkAppend(b *testing.B) {
	log, err := Create[record](filepath.Join(b.TempDir(), "bench.gob"))
	if err != nil {
		b.Fatalf("failed to create journal: %v", err)
	}
	defer log.Close()

	r := record{Kind: "dependency", ID: "a"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = log.Append(r)
	}
}
