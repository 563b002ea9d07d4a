package terrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
)

// Perlin parameters: alpha=2, beta=2, three octaves give terrain-like noise.
const (
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 3
)

// ErrFieldMismatch is returned when a NoiseField built for one
// configuration is asked to serve another.
var ErrFieldMismatch = errors.New("noise field does not match configuration")

// sampler is a continuous 2D noise source. Implementations must be safe
// for concurrent reads once constructed.
type sampler interface {
	sample(x, y float64) float64
}

// NoiseField is a seeded, immutable sampler producing one grid of
// continuous values per chunk. It is replaced, never mutated, when the
// configuration changes, and may be read from many goroutines at once.
type NoiseField struct {
	seed int64
	size int
	step float64
	kind NoiseKind
	src  sampler
}

// NewNoiseField builds the field described by cfg.
func NewNoiseField(cfg Config) (*NoiseField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &NoiseField{
		seed: cfg.Seed,
		size: cfg.ChunkTileCount,
		step: cfg.NoiseStep,
		kind: cfg.Noise,
	}
	switch cfg.Noise {
	case NoiseValue:
		f.src = newValueNoise(cfg.Seed, perlinOctaves)
	default:
		f.src = perlinSampler{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, cfg.Seed)}
	}
	return f, nil
}

// Seed returns the seed the field was built with.
func (f *NoiseField) Seed() int64 { return f.seed }

// ChunkTileCount returns the side length of each sampled grid.
func (f *NoiseField) ChunkTileCount() int { return f.size }

// Matches reports whether the field was built from cfg's noise parameters.
func (f *NoiseField) Matches(cfg Config) error {
	if f.size != cfg.ChunkTileCount || f.seed != cfg.Seed || f.step != cfg.NoiseStep || f.kind != cfg.Noise {
		return fmt.Errorf("%w: field(size=%d seed=%d) config(size=%d seed=%d)",
			ErrFieldMismatch, f.size, f.seed, cfg.ChunkTileCount, cfg.Seed)
	}
	return nil
}

// SampleChunk returns the row-major size*size grid for pos. Row 0 is the
// bottom row of the chunk. Samples are taken at world tile coordinates so
// neighbouring chunks continue each other.
func (f *NoiseField) SampleChunk(pos ChunkPosition) []float64 {
	n := f.size
	out := make([]float64, n*n)
	baseX := int64(pos.X) * int64(n)
	baseY := int64(pos.Y) * int64(n)
	for row := 0; row < n; row++ {
		y := float64(baseY+int64(row)) * f.step
		for col := 0; col < n; col++ {
			x := float64(baseX+int64(col)) * f.step
			out[row*n+col] = f.src.sample(x, y)
		}
	}
	return out
}

type perlinSampler struct {
	p *perlin.Perlin
}

func (s perlinSampler) sample(x, y float64) float64 {
	return s.p.Noise2D(x, y)
}

// --- Value noise ---

// valueNoise is octave-summed lattice value noise rescaled to [-1,1].
// Lattice corners are hashed with a splitmix64 finalizer.
type valueNoise struct {
	seed    int64
	octaves int
	norm    float64
}

func newValueNoise(seed int64, octaves int) valueNoise {
	norm := 0.0
	amp := 1.0
	for i := 0; i < octaves; i++ {
		norm += amp
		amp /= 2
	}
	return valueNoise{seed: seed, octaves: octaves, norm: norm}
}

func (v valueNoise) sample(x, y float64) float64 {
	sum, amp, freq := 0.0, 1.0, 1.0
	for i := 0; i < v.octaves; i++ {
		salt := uint64(v.seed) + uint64(i)*0x9e3779b97f4a7c15
		sum += amp * octave(x*freq, y*freq, salt)
		amp /= 2
		freq *= 2
	}
	return sum / v.norm
}

// octave blends the four lattice corners around (x, y) with smoothstep
// weights. The result lies in [-1,1].
func octave(x, y float64, salt uint64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	ix, iy := int64(x0), int64(y0)
	tx := smoothstep(x - x0)
	ty := smoothstep(y - y0)

	bottom := lerp(corner(salt, ix, iy), corner(salt, ix+1, iy), tx)
	top := lerp(corner(salt, ix, iy+1), corner(salt, ix+1, iy+1), tx)
	return lerp(bottom, top, ty)
}

func smoothstep(t float64) float64 { return t * t * (3 - 2*t) }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// corner maps a lattice point to [-1,1).
func corner(salt uint64, ix, iy int64) float64 {
	z := salt ^ uint64(ix)*0x9e3779b97f4a7c15 ^ uint64(iy)*0xbf58476d1ce4e5b9
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return float64(z>>11)/(1<<53)*2 - 1
}
