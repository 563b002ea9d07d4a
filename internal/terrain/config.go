package terrain

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Defaults match the tuning the map shipped with.
const (
	DefaultTilePixelSize  = 15.0
	DefaultChunkTileCount = 20
	DefaultNoiseStep      = 0.01
)

// Slider ranges offered by the debug panel. Validate only enforces > 0.
const (
	MinTilePixelSize  = 1.0
	MaxTilePixelSize  = 100.0
	MinChunkTileCount = 5
	MaxChunkTileCount = 100
)

var (
	ErrInvalidTileSize       = errors.New("tile pixel size must be > 0")
	ErrInvalidChunkTileCount = errors.New("chunk tile count must be > 0")
	ErrInvalidNoiseStep      = errors.New("noise step must be > 0")
	ErrUnknownNoise          = errors.New("unknown noise kind")
)

// NoiseKind selects the sampler behind a NoiseField.
type NoiseKind string

const (
	NoisePerlin NoiseKind = "perlin"
	NoiseValue  NoiseKind = "value"
)

// Config holds the map parameters. Every change must be followed by a
// reload so chunks from two configurations never coexist.
type Config struct {
	TilePixelSize  float64   `yaml:"tile_pixel_size"`
	ChunkTileCount int       `yaml:"chunk_tile_count"`
	Seed           int64     `yaml:"seed"`
	NoiseStep      float64   `yaml:"noise_step"`
	Noise          NoiseKind `yaml:"noise"`
}

// DefaultConfig returns the stock map configuration with the given seed.
func DefaultConfig(seed int64) Config {
	return Config{
		TilePixelSize:  DefaultTilePixelSize,
		ChunkTileCount: DefaultChunkTileCount,
		Seed:           seed,
		NoiseStep:      DefaultNoiseStep,
		Noise:          NoisePerlin,
	}
}

// ChunkPixelSize is the side length of one chunk in world units.
func (c Config) ChunkPixelSize() float64 {
	return float64(c.ChunkTileCount) * c.TilePixelSize
}

func (c *Config) applyDefaults() {
	if c.NoiseStep == 0 {
		c.NoiseStep = DefaultNoiseStep
	}
	if c.Noise == "" {
		c.Noise = NoisePerlin
	}
}

// Validate rejects configurations the generator cannot honour.
func (c Config) Validate() error {
	if !(c.TilePixelSize > 0) || math.IsInf(c.TilePixelSize, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidTileSize, c.TilePixelSize)
	}
	if c.ChunkTileCount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidChunkTileCount, c.ChunkTileCount)
	}
	if !(c.NoiseStep > 0) || math.IsInf(c.NoiseStep, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidNoiseStep, c.NoiseStep)
	}
	switch c.Noise {
	case NoisePerlin, NoiseValue:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNoise, c.Noise)
	}
	return nil
}

// WithTilePixelSize returns a copy of c with a new tile size.
func (c Config) WithTilePixelSize(v float64) Config {
	c.TilePixelSize = v
	return c
}

// WithChunkTileCount returns a copy of c with a new chunk granularity.
func (c Config) WithChunkTileCount(n int) Config {
	c.ChunkTileCount = n
	return c
}

// WithSeed returns a copy of c with a new seed.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = seed
	return c
}

// RandomSeed returns a fresh seed for "new world" requests.
func RandomSeed() int64 {
	return rand.New(rand.NewSource(time.Now().UnixNano())).Int63() // #nosec G404 -- terrain seed, not a secret
}

//go:embed config.schema.json
var configSchemaJSON string

var configSchema = jsonschema.MustCompileString("config.schema.json", configSchemaJSON)

// LoadConfig reads a YAML map config. Fields missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(raw)
	if err != nil {
		return Config{}, fmt.Errorf("map config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a YAML map config document.
func ParseConfig(raw []byte) (Config, error) {
	if err := validateDocument(raw); err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig(0)
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validateDocument checks the raw document shape against the embedded
// schema. The YAML tree goes through JSON so the validator sees plain
// JSON types.
func validateDocument(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return configSchema.Validate(v)
}
