package game

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Tile-Stream/internal/stream"
)

const (
	zoomMin = 0.25
	zoomMax = 3.0
)

// Camera is a pan/zoom view onto the world. World Y grows upwards; screen
// Y grows downwards, so every transform flips Y.
type Camera struct {
	X, Y float64 // world-space centre
	Zoom float64 // 1.0 = one world unit per screen pixel
}

// NewCamera returns a camera on the origin at native zoom.
func NewCamera() Camera {
	return Camera{Zoom: 1}
}

// Pan moves the camera by (dx, dy) screen pixels, so panning feels the
// same at every zoom level.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
}

// ZoomBy multiplies the zoom by f, clamped to [zoomMin, zoomMax].
func (c *Camera) ZoomBy(f float64) {
	c.Zoom = math.Min(math.Max(c.Zoom*f, zoomMin), zoomMax)
}

// Viewport returns the world region shown on a w x h screen, or nil when
// the screen has no size yet.
func (c Camera) Viewport(w, h int) *stream.Viewport {
	if w <= 0 || h <= 0 || c.Zoom <= 0 {
		return nil
	}
	return &stream.Viewport{
		CenterX:    c.X,
		CenterY:    c.Y,
		HalfWidth:  float64(w) / 2 / c.Zoom,
		HalfHeight: float64(h) / 2 / c.Zoom,
	}
}

// WorldToScreen maps a world point onto a w x h screen.
func (c Camera) WorldToScreen(wx, wy float64, w, h int) (sx, sy float64) {
	sx = (wx-c.X)*c.Zoom + float64(w)/2
	sy = (c.Y-wy)*c.Zoom + float64(h)/2
	return sx, sy
}

// ScreenToWorld is the inverse of WorldToScreen.
func (c Camera) ScreenToWorld(sx, sy float64, w, h int) (wx, wy float64) {
	wx = (sx-float64(w)/2)/c.Zoom + c.X
	wy = c.Y - (sy-float64(h)/2)/c.Zoom
	return wx, wy
}

// spriteGeoM places a bitmap of side px pixels, covering size world units
// and centred on world (cx, cy), onto a w x h screen.
func (c Camera) spriteGeoM(cx, cy, size float64, px, w, h int) ebiten.GeoM {
	var m ebiten.GeoM
	if px > 0 {
		m.Scale(size/float64(px), size/float64(px))
	}
	m.Translate(cx-size/2-c.X, c.Y-cy-size/2)
	m.Scale(c.Zoom, c.Zoom)
	m.Translate(float64(w)/2, float64(h)/2)
	return m
}
