package game

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Tile-Stream/internal/stream"
	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

// sprite is one uploaded chunk bitmap.
type sprite struct {
	pos  terrain.ChunkPosition
	img  *ebiten.Image
	px   int     // bitmap side in pixels
	x, y float64 // world-space centre
	size float64 // world-space side
}

// SpriteRegistry is the GPU side of the chunk stream: it uploads every
// spawned bitmap as an ebiten image and frees it again on despawn.
type SpriteRegistry struct {
	next    stream.Handle
	sprites map[stream.Handle]*sprite
	upload  func(spawn stream.Spawn) *ebiten.Image
}

// NewSpriteRegistry returns an empty registry.
func NewSpriteRegistry() *SpriteRegistry {
	return &SpriteRegistry{
		sprites: make(map[stream.Handle]*sprite),
		upload: func(s stream.Spawn) *ebiten.Image {
			return ebiten.NewImageFromImage(s.Bitmap)
		},
	}
}

// Spawn implements stream.Renderer.
func (r *SpriteRegistry) Spawn(s stream.Spawn) stream.Handle {
	r.next++
	sp := &sprite{
		pos:  s.Position,
		x:    s.X,
		y:    s.Y,
		size: s.Size,
	}
	if s.Bitmap != nil {
		sp.px = s.Bitmap.Bounds().Dx()
		sp.img = r.upload(s)
	}
	r.sprites[r.next] = sp
	return r.next
}

// Despawn implements stream.Renderer.
func (r *SpriteRegistry) Despawn(_ terrain.ChunkPosition, h stream.Handle) {
	sp, ok := r.sprites[h]
	if !ok {
		return
	}
	if sp.img != nil {
		sp.img.Deallocate()
	}
	delete(r.sprites, h)
}

// Len returns the number of live sprites.
func (r *SpriteRegistry) Len() int { return len(r.sprites) }

// visible returns the live sprites that intersect a w x h screen, in
// row-major chunk order so overlapping borders draw the same way every
// frame.
func (r *SpriteRegistry) visible(cam Camera, w, h int) []*sprite {
	minX, maxY := cam.ScreenToWorld(0, 0, w, h)
	maxX, minY := cam.ScreenToWorld(float64(w), float64(h), w, h)
	out := make([]*sprite, 0, len(r.sprites))
	for _, sp := range r.sprites {
		half := sp.size / 2
		if sp.x+half < minX || sp.x-half > maxX || sp.y+half < minY || sp.y-half > maxY {
			continue
		}
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pos.Less(out[j].pos) })
	return out
}

// Draw blits every on-screen sprite through the camera transform.
func (r *SpriteRegistry) Draw(screen *ebiten.Image, cam Camera) {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	for _, sp := range r.visible(cam, w, h) {
		if sp.img == nil {
			continue
		}
		op := &ebiten.DrawImageOptions{
			GeoM:   cam.spriteGeoM(sp.x, sp.y, sp.size, sp.px, w, h),
			Filter: ebiten.FilterNearest,
		}
		screen.DrawImage(sp.img, op)
	}
}
