package stream

import (
	"math"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

// DefaultPadding is the prefetch margin, in chunks, added on every side
// of the visible range. It is a best-effort margin so that scrolling by a
// tile does not reveal a chunk that is still being generated; it is not a
// correctness bound and may be tuned per host.
const DefaultPadding = 1

// maxSizeHint caps the preallocation for very large viewports.
const maxSizeHint = 1 << 16

// Viewport is the camera's world-space centre and half extent.
type Viewport struct {
	CenterX, CenterY      float64
	HalfWidth, HalfHeight float64
}

// usable reports whether the viewport describes a non-empty region.
func (v *Viewport) usable() bool {
	if v == nil {
		return false
	}
	for _, f := range []float64{v.CenterX, v.CenterY, v.HalfWidth, v.HalfHeight} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return v.HalfWidth > 0 && v.HalfHeight > 0
}

// VisibleSet returns every chunk position that should be materialized for
// vp: the rectangle around the camera's chunk spanning ceil(extent/chunk)+1
// chunks per axis, grown to cover every chunk the viewport overlaps, then
// widened by pad on each side. A nil or zero-sized viewport yields an
// empty set.
func VisibleSet(vp *Viewport, cfg terrain.Config, pad int32) PositionSet {
	if !vp.usable() || cfg.Validate() != nil {
		return PositionSet{}
	}
	if pad < 0 {
		pad = 0
	}
	size := cfg.ChunkPixelSize()
	center := terrain.FromWorld(vp.CenterX, vp.CenterY, cfg)
	minCorner := terrain.FromWorld(vp.CenterX-vp.HalfWidth, vp.CenterY-vp.HalfHeight, cfg)
	maxCorner := terrain.FromWorld(vp.CenterX+vp.HalfWidth, vp.CenterY+vp.HalfHeight, cfg)

	hCount := int64(math.Ceil(vp.HalfWidth/size)) + 1
	vCount := int64(math.Ceil(vp.HalfHeight/size)) + 1

	x0, x1 := axisRange(center.X, minCorner.X, maxCorner.X, hCount, pad)
	y0, y1 := axisRange(center.Y, minCorner.Y, maxCorner.Y, vCount, pad)

	hint := (x1 - x0 + 1) * (y1 - y0 + 1)
	if hint < 0 || hint > maxSizeHint {
		hint = maxSizeHint
	}
	set := make(PositionSet, hint)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			set.Add(terrain.Pos(int32(x), int32(y)))
		}
	}
	return set
}

// axisRange is [c - count/2, c + count/2] joined with the overlapped span
// [lo, hi], padded and clamped to int32.
func axisRange(c, lo, hi int32, count int64, pad int32) (from, to int64) {
	from = min(int64(c)-count/2, int64(lo)) - int64(pad)
	to = max(int64(c)+count/2, int64(hi)) + int64(pad)
	from = max(from, math.MinInt32)
	to = min(to, math.MaxInt32)
	return from, to
}
