package stream

import "github.com/Garsondee/Tile-Stream/internal/terrain"

// Diff splits the work for one tick: positions that are visible but not
// spawned, and positions that are spawned but no longer visible. Both
// slices come back in row-major order.
func Diff(spawned, visible PositionSet) (toSpawn, toDespawn []terrain.ChunkPosition) {
	for p := range visible {
		if !spawned.Has(p) {
			toSpawn = append(toSpawn, p)
		}
	}
	for p := range spawned {
		if !visible.Has(p) {
			toDespawn = append(toDespawn, p)
		}
	}
	sortPositions(toSpawn)
	sortPositions(toDespawn)
	return toSpawn, toDespawn
}
