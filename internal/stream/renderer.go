package stream

import (
	"fmt"
	"image"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

// Spawn describes one chunk ready to be shown: its terrain, its bitmap,
// the world-space point the bitmap's centre is placed at and the world
// side length the bitmap covers.
type Spawn struct {
	Position terrain.ChunkPosition
	Chunk    *terrain.Chunk
	Bitmap   *image.RGBA
	X, Y     float64
	Size     float64
}

// Renderer is the display collaborator. Spawn must return a handle that is
// unique among live chunks; Despawn releases it. Both are only ever called
// from the goroutine that drives Scheduler.Tick.
type Renderer interface {
	Spawn(s Spawn) Handle
	Despawn(pos terrain.ChunkPosition, h Handle)
}

// RenderEventKind tags a RecordingRenderer event.
type RenderEventKind uint8

const (
	RenderSpawn RenderEventKind = iota
	RenderDespawn
)

func (k RenderEventKind) String() string {
	if k == RenderSpawn {
		return "spawn"
	}
	return "despawn"
}

// RenderEvent is one call received by a RecordingRenderer.
type RenderEvent struct {
	Kind     RenderEventKind
	Position terrain.ChunkPosition
	Handle   Handle
}

// RecordingRenderer is a headless Renderer. It mints sequential handles,
// keeps the call order, and flags contract misuse: a second spawn on a
// live position or a release with the wrong handle.
type RecordingRenderer struct {
	next       Handle
	live       map[terrain.ChunkPosition]Handle
	Events     []RenderEvent
	Violations []string

	// KeepBitmaps retains the latest bitmap per live position.
	KeepBitmaps bool
	bitmaps     map[terrain.ChunkPosition]*image.RGBA
}

// NewRecordingRenderer returns an empty recorder.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{
		live:    make(map[terrain.ChunkPosition]Handle),
		bitmaps: make(map[terrain.ChunkPosition]*image.RGBA),
	}
}

// Spawn implements Renderer.
func (r *RecordingRenderer) Spawn(s Spawn) Handle {
	r.next++
	h := r.next
	if old, ok := r.live[s.Position]; ok {
		r.Violations = append(r.Violations, fmt.Sprintf("spawn %v while handle %d is live", s.Position, old))
	}
	r.live[s.Position] = h
	if r.KeepBitmaps {
		r.bitmaps[s.Position] = s.Bitmap
	}
	r.Events = append(r.Events, RenderEvent{Kind: RenderSpawn, Position: s.Position, Handle: h})
	return h
}

// Despawn implements Renderer.
func (r *RecordingRenderer) Despawn(pos terrain.ChunkPosition, h Handle) {
	cur, ok := r.live[pos]
	switch {
	case !ok:
		r.Violations = append(r.Violations, fmt.Sprintf("despawn %v with no live handle", pos))
	case cur != h:
		r.Violations = append(r.Violations, fmt.Sprintf("despawn %v with handle %d, live is %d", pos, h, cur))
	}
	delete(r.live, pos)
	delete(r.bitmaps, pos)
	r.Events = append(r.Events, RenderEvent{Kind: RenderDespawn, Position: pos, Handle: h})
}

// Live returns the number of chunks currently shown.
func (r *RecordingRenderer) Live() int { return len(r.live) }

// LiveSet returns the positions currently shown.
func (r *RecordingRenderer) LiveSet() PositionSet {
	set := make(PositionSet, len(r.live))
	for p := range r.live {
		set.Add(p)
	}
	return set
}

// Bitmap returns the retained bitmap for a live position.
func (r *RecordingRenderer) Bitmap(pos terrain.ChunkPosition) (*image.RGBA, bool) {
	img, ok := r.bitmaps[pos]
	return img, ok
}

// Count returns how many events of kind were recorded.
func (r *RecordingRenderer) Count(kind RenderEventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets the event history but keeps live state.
func (r *RecordingRenderer) Reset() {
	r.Events = r.Events[:0]
	r.Violations = r.Violations[:0]
}
