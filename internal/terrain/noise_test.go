package terrain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoiseField_Deterministic(t *testing.T) {
	for _, kind := range []NoiseKind{NoisePerlin, NoiseValue} {
		cfg := DefaultConfig(42)
		cfg.Noise = kind
		a, err := NewNoiseField(cfg)
		require.NoError(t, err, kind)
		b, err := NewNoiseField(cfg)
		require.NoError(t, err, kind)
		for _, p := range []ChunkPosition{Pos(0, 0), Pos(-3, 7), Pos(120, -45)} {
			sa := a.SampleChunk(p)
			require.Len(t, sa, cfg.ChunkTileCount*cfg.ChunkTileCount, kind)
			assert.Equal(t, sa, b.SampleChunk(p), "%s: fresh field at %v", kind, p)
			assert.Equal(t, sa, a.SampleChunk(p), "%s: repeated sampling at %v", kind, p)
		}
	}
}

func TestNoiseField_SeedChangesOutput(t *testing.T) {
	a, err := NewNoiseField(DefaultConfig(1))
	require.NoError(t, err)
	b, err := NewNoiseField(DefaultConfig(2))
	require.NoError(t, err)
	assert.NotEqual(t, a.SampleChunk(Pos(3, 3)), b.SampleChunk(Pos(3, 3)))
}

func TestNoiseField_ChunksAreContinuous(t *testing.T) {
	// Chunk tile count 10 vs 20 sample the same world tile coordinates.
	fs, err := NewNoiseField(DefaultConfig(9).WithChunkTileCount(10))
	require.NoError(t, err)
	fb, err := NewNoiseField(DefaultConfig(9))
	require.NoError(t, err)
	gs := fs.SampleChunk(Pos(1, 1)) // tiles 10..19
	gb := fb.SampleChunk(Pos(0, 0)) // tiles 0..19
	for row := 0; row < 10; row++ {
		for col := 0; col < 10; col++ {
			require.Equal(t, gb[(row+10)*20+col+10], gs[row*10+col],
				"tile (%d,%d) differs between granularities", col+10, row+10)
		}
	}
}

func TestNoiseField_RejectsInvalidConfig(t *testing.T) {
	_, err := NewNoiseField(DefaultConfig(1).WithChunkTileCount(0))
	assert.ErrorIs(t, err, ErrInvalidChunkTileCount)
}

func TestNoiseField_Matches(t *testing.T) {
	cfg := DefaultConfig(5)
	f, err := NewNoiseField(cfg)
	require.NoError(t, err)
	assert.NoError(t, f.Matches(cfg))
	// Tile size is a display parameter and does not invalidate the field.
	assert.NoError(t, f.Matches(cfg.WithTilePixelSize(40)))
	assert.ErrorIs(t, f.Matches(cfg.WithChunkTileCount(30)), ErrFieldMismatch)
	assert.ErrorIs(t, f.Matches(cfg.WithSeed(6)), ErrFieldMismatch)
}

func TestNoiseField_ConcurrentReads(t *testing.T) {
	f, err := NewNoiseField(DefaultConfig(77))
	require.NoError(t, err)
	want := f.SampleChunk(Pos(2, -2))

	got := make([][]float64, 8)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = f.SampleChunk(Pos(2, -2))
		}()
	}
	wg.Wait()
	for i := range got {
		assert.Equal(t, want, got[i], "reader %d", i)
	}
}

func TestValueNoise_Range(t *testing.T) {
	seed := int64(12345)
	for y := -10.0; y < 10.0; y += 0.37 {
		for x := -10.0; x < 10.0; x += 0.37 {
			require.InDelta(t, 0, octave(x, y, uint64(seed)), 1, "octave at (%.2f,%.2f)", x, y)
		}
	}
	assert.Equal(t, corner(1, 3, -7), octave(3, -7, 1), "octave on a lattice point")

	vn := newValueNoise(seed, perlinOctaves)
	for x := -5.0; x < 5.0; x += 0.11 {
		require.InDelta(t, 0, vn.sample(x, -x), 1, "octave value noise at %.2f", x)
	}
}
