package stream

import (
	"sort"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

// PositionSet is an unordered set of chunk positions.
type PositionSet map[terrain.ChunkPosition]struct{}

// NewPositionSet builds a set from ps.
func NewPositionSet(ps ...terrain.ChunkPosition) PositionSet {
	s := make(PositionSet, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

func (s PositionSet) Add(p terrain.ChunkPosition) { s[p] = struct{}{} }

func (s PositionSet) Has(p terrain.ChunkPosition) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the members in row-major order.
func (s PositionSet) Sorted() []terrain.ChunkPosition {
	out := make([]terrain.ChunkPosition, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sortPositions(out)
	return out
}

func sortPositions(ps []terrain.ChunkPosition) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Less(ps[j]) })
}
