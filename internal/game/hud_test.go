package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Tile-Stream/internal/stream"
	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

func hundredPixelConfig() terrain.Config {
	return terrain.DefaultConfig(1).WithTilePixelSize(5).WithChunkTileCount(20)
}

func TestHUDLines_ShowsState(t *testing.T) {
	s := hudState{
		Tick:    42,
		Loaded:  64,
		Sprites: 64,
		Epoch:   2,
		Config:  hundredPixelConfig().WithSeed(9),
		Borders: terrain.BordersShown,
		Camera:  Camera{X: 250, Y: -20, Zoom: 1},
		Window:  &stream.WindowReport{SampleCount: 10, Spawned: 12, Despawned: 4, MaxBatch: 8},
		Status:  "seed copied",
		Last:    stream.TickReport{Spawned: 3, Despawned: 1},
	}
	out := strings.Join(hudLines(s), "\n")
	for _, want := range []string{
		"tick 42  chunks 64",
		"seed 9  noise perlin  borders shown",
		"chunk 20 tiles (100px)",
		"in chunk (2,-1)",
		"+12 -4  max batch 8",
		"seed copied",
		"last tick: +3 -1",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "F1=panel", "key help shown while hidden")

	s.ShowKeys = true
	assert.Contains(t, strings.Join(hudLines(s), "\n"), "F1=panel")
}

func TestLoadFace(t *testing.T) {
	_, err := loadFace(14)
	require.NoError(t, err)
}
