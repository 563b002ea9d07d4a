package stream

import "github.com/Garsondee/Tile-Stream/internal/terrain"

// Handle is an opaque token minted by the renderer for one spawned chunk.
// The scheduler stores it and hands it back on release, nothing more.
type Handle uint64

// Store maps every materialized chunk position to its render handle.
// Only the scheduler mutates it, and only from the tick goroutine.
type Store struct {
	entries map[terrain.ChunkPosition]Handle
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[terrain.ChunkPosition]Handle, 64)}
}

// Len returns the number of materialized chunks.
func (s *Store) Len() int { return len(s.entries) }

// Get returns the handle stored for p.
func (s *Store) Get(p terrain.ChunkPosition) (Handle, bool) {
	h, ok := s.entries[p]
	return h, ok
}

// Has reports whether p is materialized.
func (s *Store) Has(p terrain.ChunkPosition) bool {
	_, ok := s.entries[p]
	return ok
}

// Keys returns the materialized positions as a fresh set.
func (s *Store) Keys() PositionSet {
	set := make(PositionSet, len(s.entries))
	for p := range s.entries {
		set.Add(p)
	}
	return set
}

// Positions returns the materialized positions in row-major order.
func (s *Store) Positions() []terrain.ChunkPosition {
	return s.Keys().Sorted()
}

func (s *Store) insert(p terrain.ChunkPosition, h Handle) {
	s.entries[p] = h
}

func (s *Store) remove(p terrain.ChunkPosition) (Handle, bool) {
	h, ok := s.entries[p]
	if ok {
		delete(s.entries, p)
	}
	return h, ok
}
