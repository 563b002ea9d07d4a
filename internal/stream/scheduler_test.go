package stream

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

func newTestScheduler(t *testing.T, opts ...Option) (*Scheduler, *RecordingRenderer) {
	t.Helper()
	r := NewRecordingRenderer()
	s, err := NewScheduler(hundredPixelChunks(), r, append([]Option{WithWorkers(4)}, opts...)...)
	require.NoError(t, err)
	return s, r
}

func originView() *Viewport {
	return &Viewport{HalfWidth: 250, HalfHeight: 250}
}

func TestNewScheduler_Rejects(t *testing.T) {
	_, err := NewScheduler(hundredPixelChunks(), nil)
	assert.ErrorIs(t, err, ErrNilRenderer)

	_, err = NewScheduler(hundredPixelChunks().WithChunkTileCount(0), NewRecordingRenderer())
	assert.ErrorIs(t, err, terrain.ErrInvalidChunkTileCount)
}

func TestScheduler_TickMaterializesVisibleSet(t *testing.T) {
	s, r := newTestScheduler(t)
	vp := originView()

	rep := s.Tick(vp)
	want := VisibleSet(vp, s.Config(), DefaultPadding)
	assert.Equal(t, len(want), rep.Spawned)
	assert.Equal(t, len(want), rep.Visible)
	assert.Equal(t, len(want), rep.Loaded)
	assert.Equal(t, want, s.Store().Keys())
	assert.Equal(t, want, r.LiveSet())
	assert.Empty(t, r.Violations)

	rep = s.Tick(vp)
	assert.Zero(t, rep.Spawned)
	assert.Zero(t, rep.Despawned)
	assert.Len(t, r.Events, len(want))
}

func TestScheduler_PlacesAtChunkCentre(t *testing.T) {
	cfg := hundredPixelChunks()
	var got []Spawn
	s, err := NewScheduler(cfg, rendererFunc(func(sp Spawn) { got = append(got, sp) }), WithPadding(0))
	require.NoError(t, err)

	s.Tick(&Viewport{CenterX: 50, CenterY: 50, HalfWidth: 10, HalfHeight: 10})
	require.Len(t, got, 9)
	for _, sp := range got {
		x, y := sp.Position.Placement(cfg)
		assert.Equal(t, x, sp.X)
		assert.Equal(t, y, sp.Y)
		assert.Equal(t, sp.Position, sp.Chunk.Position)
	}
}

func TestScheduler_DespawnsBeforeSpawns(t *testing.T) {
	s, r := newTestScheduler(t)
	s.Tick(originView())
	r.Reset()

	rep := s.Tick(&Viewport{CenterX: 350, HalfWidth: 250, HalfHeight: 250})
	require.NotZero(t, rep.Despawned)
	require.NotZero(t, rep.Spawned)

	seenSpawn := false
	for _, e := range r.Events {
		if e.Kind == RenderSpawn {
			seenSpawn = true
			continue
		}
		assert.False(t, seenSpawn, "despawn of %v after a spawn", e.Position)
	}
	assert.Empty(t, r.Violations)
}

func TestScheduler_ReloadIdempotence(t *testing.T) {
	s, r := newTestScheduler(t)
	vp := originView()
	s.Tick(vp)
	before := s.Store().Keys()
	var maxHandle Handle
	for _, p := range s.Store().Positions() {
		h, _ := s.Store().Get(p)
		maxHandle = max(maxHandle, h)
	}

	s.RequestReload()
	plan := s.Prepare(nil)
	assert.True(t, plan.Reloaded)
	assert.Zero(t, s.Store().Len(), "reload must empty the store")
	assert.Zero(t, r.Live())
	assert.Equal(t, len(before), plan.Despawned)
	s.Apply(plan.Generate())

	rep := s.Tick(vp)
	assert.Equal(t, len(before), rep.Spawned)
	assert.Equal(t, before, s.Store().Keys())
	for _, p := range s.Store().Positions() {
		h, _ := s.Store().Get(p)
		assert.Greater(t, h, maxHandle, "handle for %v was reused", p)
	}
	assert.Empty(t, r.Violations)
}

func TestScheduler_ReloadSameTickRepopulates(t *testing.T) {
	s, r := newTestScheduler(t)
	vp := originView()
	first := s.Tick(vp)

	s.RequestReload()
	rep := s.Tick(vp)
	assert.True(t, rep.Reloaded)
	assert.Equal(t, first.Spawned, rep.Despawned)
	assert.Equal(t, first.Spawned, rep.Spawned)
	assert.Equal(t, uint64(1), s.Epoch())
	assert.Empty(t, r.Violations)
}

func TestScheduler_CoalescedReload(t *testing.T) {
	s, _ := newTestScheduler(t)
	vp := originView()
	s.Tick(vp)

	s.RequestReload()
	s.RequestReload()
	s.ToggleBorders()
	s.Reseed(77)
	assert.Equal(t, 4, s.Queued())

	rep := s.Tick(vp)
	assert.True(t, rep.Reloaded)
	assert.Equal(t, uint64(1), s.Epoch())
	assert.Equal(t, terrain.BordersShown, s.Borders())
	assert.Equal(t, int64(77), s.Config().Seed)
	assert.Zero(t, s.Queued())
	assert.Equal(t, 1, s.TickLog().CountCategory(CatReload, "epoch"))
}

func TestScheduler_BordersSetIsIdempotent(t *testing.T) {
	s, _ := newTestScheduler(t)
	s.SetBorders(terrain.BordersHidden)
	assert.Zero(t, s.Queued())

	s.SetBorders(terrain.BordersShown)
	s.SetBorders(terrain.BordersShown)
	assert.Equal(t, 1, s.Queued())
	assert.Equal(t, terrain.BordersShown, s.PendingBorders())
	assert.Equal(t, terrain.BordersHidden, s.Borders())
}

func TestScheduler_BordersReachBitmaps(t *testing.T) {
	s, r := newTestScheduler(t, WithPadding(0))
	r.KeepBitmaps = true
	vp := &Viewport{CenterX: 50, CenterY: 50, HalfWidth: 10, HalfHeight: 10}

	s.Tick(vp)
	img, ok := r.Bitmap(terrain.Pos(0, 0))
	require.True(t, ok)
	assert.NotEqual(t, terrain.BorderColor, img.RGBAAt(0, 0))

	s.ToggleBorders()
	s.Tick(vp)
	img, ok = r.Bitmap(terrain.Pos(0, 0))
	require.True(t, ok)
	assert.Equal(t, terrain.BorderColor, img.RGBAAt(0, 0))
}

func TestScheduler_InvalidConfigRejected(t *testing.T) {
	s, _ := newTestScheduler(t)
	before := s.Config()

	err := s.SetConfig(before.WithTilePixelSize(-1))
	assert.ErrorIs(t, err, terrain.ErrInvalidTileSize)
	assert.Zero(t, s.Queued())

	s.Tick(originView())
	assert.Equal(t, before, s.Config())
	assert.Zero(t, s.Epoch())
	assert.True(t, s.TickLog().HasEntry(CatConfig, "rejected", "tile"))
}

func TestScheduler_ConfigChangeAppliesOnNextTick(t *testing.T) {
	s, r := newTestScheduler(t)
	vp := originView()
	s.Tick(vp)

	bigger := s.Config().WithTilePixelSize(10)
	require.NoError(t, s.SetConfig(bigger))
	assert.NoError(t, s.SetConfig(bigger))
	assert.Equal(t, 1, s.Queued())
	assert.Equal(t, bigger, s.PendingConfig())
	assert.NotEqual(t, bigger, s.Config())

	rep := s.Tick(vp)
	assert.True(t, rep.Reloaded)
	assert.Equal(t, bigger, s.Config())
	assert.Equal(t, VisibleSet(vp, bigger, DefaultPadding), s.Store().Keys())
	assert.Empty(t, r.Violations)
	assert.True(t, s.TickLog().HasEntry(CatConfig, "applied", "tile=10"))
}

func TestScheduler_StaleBatchDiscarded(t *testing.T) {
	s, r := newTestScheduler(t)
	vp := originView()

	stale := s.Prepare(vp).Generate()
	require.NotEmpty(t, stale.Results)

	s.RequestReload()
	fresh := s.Prepare(vp)
	require.True(t, fresh.Reloaded)

	rep := s.Apply(stale)
	assert.Zero(t, rep.Spawned)
	assert.Equal(t, len(stale.Results), rep.Discarded)
	assert.Zero(t, r.Live())

	rep = s.Apply(fresh.Generate())
	assert.Equal(t, len(fresh.ToSpawn), rep.Spawned)
	assert.Empty(t, r.Violations)
}

func TestScheduler_DuplicateResultsDiscarded(t *testing.T) {
	s, r := newTestScheduler(t)
	b := s.Prepare(originView()).Generate()

	s.Apply(b)
	rep := s.Apply(b)
	assert.Zero(t, rep.Spawned)
	assert.Equal(t, len(b.Results), rep.Discarded)
	assert.Empty(t, r.Violations)
}

func TestScheduler_SupersededPlanDiscarded(t *testing.T) {
	s, r := newTestScheduler(t, WithTickLog(NewTickLog(true)))
	far := &Viewport{CenterX: 50000, CenterY: -50000, HalfWidth: 250, HalfHeight: 250}

	a := s.Prepare(originView())
	b := s.Prepare(far)
	require.NotEmpty(t, a.ToSpawn)
	require.NotEmpty(t, b.ToSpawn)

	rep := s.Apply(a.Generate())
	assert.Zero(t, rep.Spawned)
	assert.Equal(t, len(a.ToSpawn), rep.Discarded)
	assert.Zero(t, r.Live())
	assert.True(t, s.TickLog().HasEntry(CatDiscard, "superseded", ""))

	rep = s.Apply(b.Generate())
	assert.Equal(t, len(b.ToSpawn), rep.Spawned)
	assert.Equal(t, VisibleSet(far, s.Config(), DefaultPadding), s.Store().Keys())
	assert.Equal(t, s.Store().Len(), r.Live())
	assert.Empty(t, r.Violations)
}

func TestScheduler_FailedBatchSpawnsNothing(t *testing.T) {
	s, r := newTestScheduler(t)
	plan := s.Prepare(originView())

	rep := s.Apply(&Batch{Plan: plan, Err: errors.New("boom")})
	assert.Equal(t, len(plan.ToSpawn), rep.Discarded)
	assert.Zero(t, r.Live())
	assert.True(t, s.TickLog().HasEntry(CatDiscard, "batch_failed", "boom"))

	// The next tick retries the same positions.
	rep = s.Tick(originView())
	assert.Equal(t, len(plan.ToSpawn), rep.Spawned)
}

func TestScheduler_MissingViewportKeepsChunks(t *testing.T) {
	s, r := newTestScheduler(t)
	s.Tick(originView())
	loaded := s.Store().Len()

	for _, vp := range []*Viewport{nil, {}} {
		rep := s.Tick(vp)
		assert.Zero(t, rep.Visible)
		assert.Zero(t, rep.Despawned)
		assert.Equal(t, loaded, s.Store().Len())
	}
	assert.Equal(t, loaded, r.Live())
}

func TestScheduler_LogsBatchTiming(t *testing.T) {
	var buf bytes.Buffer
	s, _ := newTestScheduler(t, WithLogger(log.New(&buf, "[stream] ", 0)))
	rep := s.Tick(originView())

	assert.Contains(t, buf.String(), "[stream] spent ")
	assert.Contains(t, buf.String(), "spawning 64 chunks")
	assert.Equal(t, 64, rep.Spawned)
}

func TestScheduler_VerboseTickLog(t *testing.T) {
	tl := NewTickLog(true)
	s, _ := newTestScheduler(t, WithTickLog(tl))
	s.Tick(originView())
	s.Tick(&Viewport{CenterX: 1000, HalfWidth: 250, HalfHeight: 250})

	assert.Equal(t, 64+64, tl.CountCategory(CatSpawn, "chunk"))
	assert.Equal(t, 64, tl.CountCategory(CatDespawn, "chunk"))
	e, ok := tl.LastOf(CatBatch, "generated")
	require.True(t, ok)
	assert.Equal(t, 2, e.Tick)
}

// rendererFunc adapts a callback into a Renderer. Handles are derived from
// the position, so they are unique among live chunks.
type rendererFunc func(Spawn)

func (f rendererFunc) Spawn(s Spawn) Handle {
	f(s)
	return Handle(uint32(s.Position.X))<<32 | Handle(uint32(s.Position.Y))
}

func (f rendererFunc) Despawn(terrain.ChunkPosition, Handle) {}
