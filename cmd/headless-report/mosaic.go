package main

import (
	"errors"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/Garsondee/Tile-Stream/internal/stream"
)

var errNoBitmaps = errors.New("mosaic: no bitmaps retained")

// buildMosaic stitches the live chunk bitmaps into one image, higher chunk
// rows on top, and scales it to width pixels across.
func buildMosaic(r *stream.RecordingRenderer, width int) (*image.RGBA, error) {
	positions := r.LiveSet().Sorted()
	var side int
	var minX, maxX, minY, maxY int32
	n := 0
	for _, p := range positions {
		img, ok := r.Bitmap(p)
		if !ok || img == nil {
			continue
		}
		if n == 0 {
			side = img.Bounds().Dx()
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
		}
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		n++
	}
	if n == 0 || side == 0 {
		return nil, errNoBitmaps
	}

	cols := int(maxX-minX) + 1
	rows := int(maxY-minY) + 1
	full := image.NewRGBA(image.Rect(0, 0, cols*side, rows*side))
	for _, p := range positions {
		img, ok := r.Bitmap(p)
		if !ok || img == nil {
			continue
		}
		x := int(p.X-minX) * side
		y := int(maxY-p.Y) * side
		draw.Draw(full, image.Rect(x, y, x+side, y+side), img, img.Bounds().Min, draw.Src)
	}

	if width <= 0 || width >= full.Bounds().Dx() {
		return full, nil
	}
	height := max(1, full.Bounds().Dy()*width/full.Bounds().Dx())
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), full, full.Bounds(), draw.Src, nil)
	return out, nil
}

// writeMosaic encodes buildMosaic's output as a PNG at path.
func writeMosaic(path string, r *stream.RecordingRenderer, width int) error {
	img, err := buildMosaic(r, width)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
