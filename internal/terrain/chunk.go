package terrain

import "fmt"

// Chunk is the classified tile grid of one chunk position. It is never
// modified after construction; reconfiguration produces new chunks.
type Chunk struct {
	Position ChunkPosition
	Size     int        // tiles per side
	tiles    []TileKind // row-major: index = row*Size + col, row 0 at the bottom
}

// GenerateChunk samples field at pos and classifies every value.
func GenerateChunk(pos ChunkPosition, field *NoiseField, cfg Config) (*Chunk, error) {
	if err := field.Matches(cfg); err != nil {
		return nil, err
	}
	samples := field.SampleChunk(pos)
	tiles := make([]TileKind, len(samples))
	for i, v := range samples {
		tiles[i] = Classify(v)
	}
	return &Chunk{Position: pos, Size: field.ChunkTileCount(), tiles: tiles}, nil
}

// NewChunk builds a chunk from an explicit row-major grid. The slice is copied.
func NewChunk(pos ChunkPosition, size int, tiles []TileKind) (*Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkTileCount, size)
	}
	if len(tiles) != size*size {
		return nil, fmt.Errorf("chunk %v: %d tiles for a %dx%d grid", pos, len(tiles), size, size)
	}
	cp := make([]TileKind, len(tiles))
	copy(cp, tiles)
	return &Chunk{Position: pos, Size: size, tiles: cp}, nil
}

// FilledChunk returns a chunk where every tile is kind.
func FilledChunk(pos ChunkPosition, size int, kind TileKind) (*Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkTileCount, size)
	}
	tiles := make([]TileKind, size*size)
	for i := range tiles {
		tiles[i] = kind
	}
	return &Chunk{Position: pos, Size: size, tiles: tiles}, nil
}

// At returns the tile at (col, row). Out-of-range lookups return DeepWater.
func (c *Chunk) At(col, row int) TileKind {
	if col < 0 || col >= c.Size || row < 0 || row >= c.Size {
		return DeepWater
	}
	return c.tiles[row*c.Size+col]
}

// Tiles returns a copy of the row-major grid.
func (c *Chunk) Tiles() []TileKind {
	cp := make([]TileKind, len(c.tiles))
	copy(cp, c.tiles)
	return cp
}

// UniformKind returns the shared kind when every tile matches. It stops
// at the first mismatch.
func (c *Chunk) UniformKind() (TileKind, bool) {
	if len(c.tiles) == 0 {
		return DeepWater, false
	}
	first := c.tiles[0]
	for _, t := range c.tiles[1:] {
		if t != first {
			return DeepWater, false
		}
	}
	return first, true
}

// Equal reports whether both chunks hold identical grids at the same position.
func (c *Chunk) Equal(o *Chunk) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Position != o.Position || c.Size != o.Size || len(c.tiles) != len(o.tiles) {
		return false
	}
	for i := range c.tiles {
		if c.tiles[i] != o.tiles[i] {
			return false
		}
	}
	return true
}

// Counts tallies tiles per kind.
func (c *Chunk) Counts() map[TileKind]int {
	counts := make(map[TileKind]int, tileKindCount)
	for _, t := range c.tiles {
		counts[t]++
	}
	return counts
}
