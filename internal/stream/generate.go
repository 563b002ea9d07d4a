package stream

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

// Result is one generated chunk, tagged with the reload epoch it was
// produced under.
type Result struct {
	Position terrain.ChunkPosition
	Chunk    *terrain.Chunk
	Bitmap   *image.RGBA
	Epoch    uint64
}

// GenerateBatch produces terrain and a bitmap for every position, running
// at most workers generators at once. Results come back in input order.
// Any failure fails the whole batch.
func GenerateBatch(field *terrain.NoiseField, cfg terrain.Config, borders terrain.BorderState, positions []terrain.ChunkPosition, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(positions))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, p := range positions {
		g.Go(func() error {
			c, err := terrain.GenerateChunk(p, field, cfg)
			if err != nil {
				return fmt.Errorf("chunk %v: %w", p, err)
			}
			results[i] = Result{
				Position: p,
				Chunk:    c,
				Bitmap:   terrain.Rasterize(c, cfg, borders),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Batch is the outcome of generating one plan's spawn list.
type Batch struct {
	Plan     *Plan
	Results  []Result
	Err      error
	Duration time.Duration
}

// Generate runs the plan's spawn list through GenerateBatch. It only reads
// the snapshot captured by Prepare, so it may run off the tick goroutine.
func (p *Plan) Generate() *Batch {
	b := &Batch{Plan: p}
	if len(p.ToSpawn) == 0 {
		return b
	}
	start := time.Now()
	b.Results, b.Err = GenerateBatch(p.field, p.cfg, p.borders, p.ToSpawn, p.workers)
	b.Duration = time.Since(start)
	for i := range b.Results {
		b.Results[i].Epoch = p.Epoch
	}
	return b
}
