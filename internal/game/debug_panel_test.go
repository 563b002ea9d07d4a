package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

func TestDebouncer_FiresOncePerBurst(t *testing.T) {
	d := debouncer{delay: 100 * time.Millisecond}
	t0 := time.Unix(0, 0)
	assert.False(t, d.ready(t0), "clean debouncer fired")
	d.mark(t0)
	d.mark(t0.Add(60 * time.Millisecond))
	assert.False(t, d.ready(t0.Add(120*time.Millisecond)), "fired before the burst settled")
	assert.True(t, d.ready(t0.Add(170*time.Millisecond)), "did not fire after the burst settled")
	assert.False(t, d.ready(t0.Add(time.Second)), "fired twice for one burst")
}

func TestSliderValues_Clamp(t *testing.T) {
	cases := []struct {
		cfg         terrain.Config
		tile, chunk int
	}{
		{terrain.DefaultConfig(1), 15, 20},
		{terrain.DefaultConfig(1).WithTilePixelSize(2.6), 3, 20},
		{terrain.DefaultConfig(1).WithTilePixelSize(0.2).WithChunkTileCount(2), terrain.MinTilePixelSize, terrain.MinChunkTileCount},
		{terrain.DefaultConfig(1).WithTilePixelSize(500).WithChunkTileCount(400), terrain.MaxTilePixelSize, terrain.MaxChunkTileCount},
	}
	for _, c := range cases {
		tile, chunk := sliderValues(c.cfg)
		assert.Equal(t, c.tile, tile, "tile for %+v", c.cfg)
		assert.Equal(t, c.chunk, chunk, "chunk for %+v", c.cfg)
	}
}
