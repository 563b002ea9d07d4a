package stream

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"
	"time"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

// ErrNilRenderer is returned by NewScheduler when no renderer is given.
var ErrNilRenderer = errors.New("stream: nil renderer")

// TickReport summarizes one tick.
type TickReport struct {
	Tick        int
	Visible     int
	Spawned     int
	Despawned   int
	Discarded   int
	Loaded      int
	Reloaded    bool
	GenDuration time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers bounds how many chunks generate concurrently. Zero or less
// means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		s.workers = n
	}
}

// WithPadding sets the prefetch margin in chunks.
func WithPadding(pad int32) Option {
	return func(s *Scheduler) {
		if pad < 0 {
			pad = 0
		}
		s.padding = pad
	}
}

// WithLogger sets the operator log. Defaults to discarding.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTickLog records structured events into tl.
func WithTickLog(tl *TickLog) Option {
	return func(s *Scheduler) { s.tlog = tl }
}

// WithBorders sets the initial border overlay state.
func WithBorders(b terrain.BorderState) Option {
	return func(s *Scheduler) { s.borders = b }
}

// Scheduler keeps the set of materialized chunks equal to the camera's
// padded visible set. It is single-threaded: every method must be called
// from the goroutine that calls Tick. Only chunk generation fans out.
type Scheduler struct {
	cfg      terrain.Config
	borders  terrain.BorderState
	field    *terrain.NoiseField
	store    *Store
	renderer Renderer
	queue    queue

	epoch   uint64
	tick    int
	workers int
	padding int32

	// wanted is the spawn list of the latest Prepare. Results outside it
	// belong to a superseded plan.
	wanted PositionSet

	logger *log.Logger
	tlog   *TickLog
}

// NewScheduler validates cfg, builds its noise field and returns a
// scheduler with nothing materialized.
func NewScheduler(cfg terrain.Config, r Renderer, opts ...Option) (*Scheduler, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	field, err := terrain.NewNoiseField(cfg)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	s := &Scheduler{
		cfg:      cfg,
		field:    field,
		store:    NewStore(),
		renderer: r,
		workers:  runtime.GOMAXPROCS(0),
		padding:  DefaultPadding,
		logger:   log.New(io.Discard, "", 0),
		tlog:     NewTickLog(false),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the active configuration.
func (s *Scheduler) Config() terrain.Config { return s.cfg }

// PendingConfig returns the configuration the next reload will switch to.
func (s *Scheduler) PendingConfig() terrain.Config {
	return s.queue.pending(s.cfg, s.borders).Config
}

// Borders returns the active border overlay state.
func (s *Scheduler) Borders() terrain.BorderState { return s.borders }

// PendingBorders returns the border state the next reload will apply.
func (s *Scheduler) PendingBorders() terrain.BorderState {
	return s.queue.pending(s.cfg, s.borders).Borders
}

// Store exposes the materialized set for reading.
func (s *Scheduler) Store() *Store { return s.store }

// Epoch increments on every completed reload.
func (s *Scheduler) Epoch() uint64 { return s.epoch }

// CurrentTick returns the number of ticks prepared so far.
func (s *Scheduler) CurrentTick() int { return s.tick }

// Queued returns how many requests wait for the next tick.
func (s *Scheduler) Queued() int { return s.queue.len() }

// TickLog returns the structured event log.
func (s *Scheduler) TickLog() *TickLog { return s.tlog }

// RequestReload schedules a full reload at the start of the next tick.
func (s *Scheduler) RequestReload() {
	s.queue.push(Message{Kind: MsgReload})
}

// SetBorders schedules a border state change. Setting the state that is
// already pending does nothing.
func (s *Scheduler) SetBorders(b terrain.BorderState) {
	if b == s.PendingBorders() {
		return
	}
	s.queue.push(Message{Kind: MsgBorders, Borders: b})
}

// ToggleBorders flips the pending border state and returns it.
func (s *Scheduler) ToggleBorders() terrain.BorderState {
	b := s.PendingBorders().Toggle()
	s.queue.push(Message{Kind: MsgBorders, Borders: b})
	return b
}

// SetConfig validates cfg and schedules a reload onto it. An invalid
// config is rejected and nothing is queued.
func (s *Scheduler) SetConfig(cfg terrain.Config) error {
	if err := cfg.Validate(); err != nil {
		s.logger.Printf("config rejected: %v", err)
		s.tlog.Add(s.tick, CatConfig, "rejected", "", err.Error(), 0)
		return err
	}
	if cfg == s.PendingConfig() {
		return nil
	}
	s.queue.push(Message{Kind: MsgConfig, Config: cfg})
	return nil
}

// Reseed schedules a reload under a new world seed.
func (s *Scheduler) Reseed(seed int64) {
	s.queue.push(Message{Kind: MsgReseed, Seed: seed})
}

// Tick runs one full update: drain requests, diff against the viewport,
// release what left it, generate what entered it and hand the results to
// the renderer. A nil or empty viewport leaves the materialized set alone.
func (s *Scheduler) Tick(vp *Viewport) TickReport {
	return s.Apply(s.Prepare(vp).Generate())
}

// Plan is the first half of a tick: requests drained, stale chunks
// released, and the spawn list fixed together with the state to build it.
type Plan struct {
	Tick      int
	Epoch     uint64
	Visible   int
	ToSpawn   []terrain.ChunkPosition
	Despawned int
	Reloaded  bool

	cfg     terrain.Config
	borders terrain.BorderState
	field   *terrain.NoiseField
	workers int
}

// Prepare runs the tick up to generation. Despawns happen here, so they
// always precede the spawns of the same tick.
func (s *Scheduler) Prepare(vp *Viewport) *Plan {
	s.tick++
	p := &Plan{Tick: s.tick}
	s.wanted = nil

	if rp := s.queue.drain(s.cfg, s.borders); rp.Reload {
		p.Despawned += s.reload(rp)
		p.Reloaded = true
	}
	p.Epoch = s.epoch
	p.cfg = s.cfg
	p.borders = s.borders
	p.field = s.field
	p.workers = s.workers

	visible := VisibleSet(vp, s.cfg, s.padding)
	p.Visible = len(visible)
	if len(visible) == 0 {
		return p
	}

	toSpawn, toDespawn := Diff(s.store.Keys(), visible)
	for _, pos := range toDespawn {
		s.despawn(pos)
	}
	p.Despawned += len(toDespawn)
	p.ToSpawn = toSpawn
	s.wanted = NewPositionSet(toSpawn...)
	return p
}

// Apply hands a batch's results to the renderer one at a time. Results
// from an earlier epoch, from a plan that a later Prepare replaced, or for
// a position that is already materialized are dropped.
func (s *Scheduler) Apply(b *Batch) TickReport {
	p := b.Plan
	rep := TickReport{
		Tick:        p.Tick,
		Visible:     p.Visible,
		Despawned:   p.Despawned,
		Reloaded:    p.Reloaded,
		GenDuration: b.Duration,
	}

	if b.Err != nil {
		rep.Discarded = len(p.ToSpawn)
		s.logger.Printf("batch failed, discarding %d chunks: %v", rep.Discarded, b.Err)
		s.tlog.Add(p.Tick, CatDiscard, "batch_failed", "", b.Err.Error(), float64(rep.Discarded))
		rep.Loaded = s.store.Len()
		return rep
	}

	for _, r := range b.Results {
		switch {
		case r.Epoch != s.epoch:
			rep.Discarded++
			s.tlog.AddVerbose(p.Tick, CatDiscard, "stale_epoch", r.Position.String(),
				fmt.Sprintf("epoch %d, current %d", r.Epoch, s.epoch), float64(r.Epoch))
		case p.Tick != s.tick || !s.wanted.Has(r.Position):
			rep.Discarded++
			s.tlog.AddVerbose(p.Tick, CatDiscard, "superseded", r.Position.String(),
				fmt.Sprintf("plan T=%d, current T=%d", p.Tick, s.tick), float64(p.Tick))
		case s.store.Has(r.Position):
			rep.Discarded++
			s.tlog.AddVerbose(p.Tick, CatDiscard, "duplicate", r.Position.String(), "", 0)
		default:
			s.spawn(r, p.cfg)
			rep.Spawned++
		}
	}

	if rep.Discarded > 0 {
		s.tlog.Add(p.Tick, CatDiscard, "results", "", fmt.Sprintf("%d dropped", rep.Discarded), float64(rep.Discarded))
	}
	if len(b.Results) > 0 {
		s.logger.Printf("spent %v spawning %d chunks", b.Duration, rep.Spawned)
		s.tlog.Add(p.Tick, CatBatch, "generated", "",
			fmt.Sprintf("%d chunks in %v", rep.Spawned, b.Duration), float64(b.Duration.Microseconds()))
	}
	rep.Loaded = s.store.Len()
	return rep
}

func (s *Scheduler) spawn(r Result, cfg terrain.Config) {
	x, y := r.Position.Placement(cfg)
	h := s.renderer.Spawn(Spawn{
		Position: r.Position,
		Chunk:    r.Chunk,
		Bitmap:   r.Bitmap,
		X:        x,
		Y:        y,
		Size:     cfg.ChunkPixelSize(),
	})
	s.store.insert(r.Position, h)
	s.tlog.AddVerbose(s.tick, CatSpawn, "chunk", r.Position.String(), fmt.Sprintf("handle=%d", h), float64(h))
}

func (s *Scheduler) despawn(pos terrain.ChunkPosition) {
	h, ok := s.store.remove(pos)
	if !ok {
		return
	}
	s.renderer.Despawn(pos, h)
	s.tlog.AddVerbose(s.tick, CatDespawn, "chunk", pos.String(), fmt.Sprintf("handle=%d", h), float64(h))
}

func (s *Scheduler) despawnAll() int {
	positions := s.store.Positions()
	for _, pos := range positions {
		s.despawn(pos)
	}
	return len(positions)
}

// reload tears everything down and switches to the plan's state. The new
// field is built first so a failure leaves the old world untouched.
func (s *Scheduler) reload(rp reloadPlan) int {
	field, err := terrain.NewNoiseField(rp.Config)
	if err != nil {
		s.logger.Printf("reload rejected: %v", err)
		s.tlog.Add(s.tick, CatReload, "rejected", "", err.Error(), 0)
		return 0
	}
	n := s.despawnAll()

	if rp.Config != s.cfg {
		s.tlog.Add(s.tick, CatConfig, "applied", "", describeConfig(rp.Config), float64(rp.Config.Seed))
	}
	s.cfg = rp.Config
	s.borders = rp.Borders
	s.field = field
	s.epoch++

	reasons := make([]string, 0, messageKindCount)
	for _, k := range rp.reasons() {
		reasons = append(reasons, k.String())
	}
	why := strings.Join(reasons, ",")
	s.logger.Printf("reload epoch=%d (%s): released %d chunks", s.epoch, why, n)
	s.tlog.Add(s.tick, CatReload, "epoch", "", why, float64(s.epoch))
	return n
}

func describeConfig(c terrain.Config) string {
	return fmt.Sprintf("tile=%g chunk=%d seed=%d step=%g noise=%s",
		c.TilePixelSize, c.ChunkTileCount, c.Seed, c.NoiseStep, c.Noise)
}
