package terrain

import "image/color"

// TileKind is the discrete terrain category of one tile.
type TileKind uint8

const (
	DeepWater     TileKind = iota // below -0.5
	Water                         // (-0.5, 0.0]
	Sand                          // (0.0, 0.1]
	Grass                         // (0.1, 0.4]
	HighGrass                     // above 0.4
	tileKindCount                 // sentinel
)

// Classification thresholds. Each band is exclusive on its lower bound:
// a sample exactly on a threshold falls into the band below.
const (
	highGrassThreshold = 0.4
	grassThreshold     = 0.1
	sandThreshold      = 0.0
	waterThreshold     = -0.5
)

// BorderColor is drawn over chunk edges when borders are shown.
var BorderColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// Classify maps a noise sample to a tile kind.
func Classify(v float64) TileKind {
	switch {
	case v > highGrassThreshold:
		return HighGrass
	case v > grassThreshold:
		return Grass
	case v > sandThreshold:
		return Sand
	case v > waterThreshold:
		return Water
	default:
		return DeepWater
	}
}

// Color returns the display colour of the tile kind.
func (k TileKind) Color() color.RGBA {
	switch k {
	case DeepWater:
		return color.RGBA{R: 0x22, G: 0x00, B: 0xE6, A: 0xFF}
	case Water:
		return color.RGBA{R: 0x26, G: 0x00, B: 0xFE, A: 0xFF}
	case Sand:
		return color.RGBA{R: 0xFD, G: 0xF1, B: 0xD4, A: 0xFF}
	case Grass:
		return color.RGBA{R: 0x54, G: 0xBE, B: 0x44, A: 0xFF}
	case HighGrass:
		return color.RGBA{R: 0x4A, G: 0xAD, B: 0x40, A: 0xFF}
	default:
		return color.RGBA{A: 0xFF}
	}
}

func (k TileKind) String() string {
	switch k {
	case DeepWater:
		return "deep_water"
	case Water:
		return "water"
	case Sand:
		return "sand"
	case Grass:
		return "grass"
	case HighGrass:
		return "high_grass"
	default:
		return "unknown"
	}
}

// TileKinds lists every kind in declaration order.
func TileKinds() []TileKind {
	kinds := make([]TileKind, 0, tileKindCount)
	for k := TileKind(0); k < tileKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
