package terrain

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// BorderWidth is the pixel width of the debug chunk border.
const BorderWidth = 5

// BorderState controls the debug chunk border overlay.
type BorderState uint8

const (
	BordersHidden BorderState = iota
	BordersShown
)

// Toggle returns the other state.
func (b BorderState) Toggle() BorderState {
	if b == BordersShown {
		return BordersHidden
	}
	return BordersShown
}

func (b BorderState) String() string {
	if b == BordersShown {
		return "shown"
	}
	return "hidden"
}

// Rasterize draws c into a square bitmap of chunk_pixel_size pixels per
// side. Row 0 of the chunk is the bottom of the bitmap, matching the
// world's upward Y axis. The border overlay goes on last, after either
// the uniform fill or the per-tile pass.
func Rasterize(c *Chunk, cfg Config, borders BorderState) *image.RGBA {
	tile := cfg.TilePixelSize
	side := tileEdge(c.Size, tile)
	if side < 1 {
		side = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, side, side))

	if kind, ok := c.UniformKind(); ok {
		fillRect(img, img.Bounds(), kind.Color())
	} else {
		for row := 0; row < c.Size; row++ {
			y0 := side - tileEdge(row+1, tile)
			y1 := side - tileEdge(row, tile)
			for col := 0; col < c.Size; col++ {
				x0 := tileEdge(col, tile)
				x1 := tileEdge(col+1, tile)
				fillRect(img, image.Rect(x0, y0, x1, y1), c.At(col, row).Color())
			}
		}
	}

	if borders == BordersShown {
		w := BorderWidth
		if w > side {
			w = side
		}
		fillRect(img, image.Rect(0, 0, side, w), BorderColor) // top
		fillRect(img, image.Rect(0, 0, w, side), BorderColor) // left
	}
	return img
}

// tileEdge is the pixel offset of tile boundary i. Flooring both edges of
// every tile keeps fractional tile sizes gap-free.
func tileEdge(i int, tile float64) int {
	return int(math.Floor(float64(i) * tile))
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}
