package terrain

import (
	"fmt"
	"math"
)

// ChunkPosition is an integer chunk-grid coordinate. Y grows upwards, the
// same way world Y does.
type ChunkPosition struct {
	X, Y int32
}

// Pos is shorthand for ChunkPosition{X: x, Y: y}.
func Pos(x, y int32) ChunkPosition {
	return ChunkPosition{X: x, Y: y}
}

// FromWorld returns the chunk containing world point (wx, wy):
// floor(w / chunk_pixel_size) per axis, saturated to the int32 range.
func FromWorld(wx, wy float64, cfg Config) ChunkPosition {
	size := cfg.ChunkPixelSize()
	return ChunkPosition{
		X: floorToInt32(wx / size),
		Y: floorToInt32(wy / size),
	}
}

// Placement is the world-space centre the renderer draws the chunk's
// bitmap at: chunk_pixel_size*(p-1) shifted by half a chunk.
func (p ChunkPosition) Placement(cfg Config) (x, y float64) {
	size := cfg.ChunkPixelSize()
	half := float64(cfg.ChunkTileCount) / 2 * cfg.TilePixelSize
	x = size*(float64(p.X)-1) + half
	y = size*(float64(p.Y)-1) + half
	return x, y
}

// Bounds returns the world rectangle [minX,maxX) x [minY,maxY) that
// FromWorld maps onto p.
func (p ChunkPosition) Bounds(cfg Config) (minX, minY, maxX, maxY float64) {
	size := cfg.ChunkPixelSize()
	minX = float64(p.X) * size
	minY = float64(p.Y) * size
	return minX, minY, minX + size, minY + size
}

// Add offsets p by (dx, dy).
func (p ChunkPosition) Add(dx, dy int32) ChunkPosition {
	return ChunkPosition{X: p.X + dx, Y: p.Y + dy}
}

// Less orders positions row by row (Y, then X). Used only for stable
// iteration; positions carry no spatial priority.
func (p ChunkPosition) Less(o ChunkPosition) bool {
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.X < o.X
}

func (p ChunkPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func floorToInt32(v float64) int32 {
	f := math.Floor(v)
	switch {
	case math.IsNaN(f):
		return 0
	case f <= math.MinInt32:
		return math.MinInt32
	case f >= math.MaxInt32:
		return math.MaxInt32
	}
	return int32(f)
}
