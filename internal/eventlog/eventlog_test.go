package eventlog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	Tick int    `json:"tick"`
	Kind string `json:"kind"`
}

func TestWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "a", "events.jsonl.zst")
	w, err := Create(path)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())

	for i := 1; i <= 3; i++ {
		require.NoError(t, w.Write(event{Tick: i, Kind: "spawn"}))
	}
	assert.Equal(t, 3, w.Lines())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	got, err := ReadAll[event](path)
	require.NoError(t, err)
	assert.Equal(t, []event{{1, "spawn"}, {2, "spawn"}, {3, "spawn"}}, got)

	assert.ErrorIs(t, w.Write(event{}), ErrClosed)
}

func TestWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl.zst")
	w, err := Create(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				assert.NoError(t, w.Write(event{Tick: g*100 + i}))
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, w.Close())

	n := 0
	require.NoError(t, Scan(path, func([]byte) error { n++; return nil }))
	assert.Equal(t, 400, n)
}

func TestWriter_RejectsUnmarshalable(t *testing.T) {
	w, err := Create(filepath.Join(t.TempDir(), "events.jsonl.zst"))
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Write(func() {}))
	assert.Zero(t, w.Lines())
}

func TestReadAll_Errors(t *testing.T) {
	_, err := ReadAll[event](filepath.Join(t.TempDir(), "missing.jsonl.zst"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.jsonl.zst")
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Write("not an object"))
	require.NoError(t, w.Close())

	_, err = ReadAll[event](path)
	assert.ErrorContains(t, err, "bad.jsonl.zst:1")
}
