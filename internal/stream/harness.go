package stream

import (
	"fmt"
	"math"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

// CameraPath moves the camera centre as a function of the tick number.
type CameraPath interface {
	At(tick int) (x, y float64)
	Name() string
}

// StillPath keeps the camera at a fixed point.
type StillPath struct{ X, Y float64 }

func (p StillPath) At(int) (float64, float64) { return p.X, p.Y }
func (p StillPath) Name() string { return "still" }

// LinePath pans at a constant velocity in pixels per tick.
type LinePath struct{ VX, VY float64 }

func (p LinePath) At(tick int) (float64, float64) {
	return p.VX * float64(tick), p.VY * float64(tick)
}
func (p LinePath) Name() string { return "line" }

// CirclePath orbits the origin once every Period ticks.
type CirclePath struct {
	Radius float64
	Period int
}

func (p CirclePath) At(tick int) (float64, float64) {
	period := p.Period
	if period <= 0 {
		period = 600
	}
	a := 2 * math.Pi * float64(tick%period) / float64(period)
	return p.Radius * math.Cos(a), p.Radius * math.Sin(a)
}
func (p CirclePath) Name() string { return "circle" }

// JumpPath teleports Distance pixels along x every Every ticks.
type JumpPath struct {
	Every    int
	Distance float64
}

func (p JumpPath) At(tick int) (float64, float64) {
	every := p.Every
	if every <= 0 {
		every = 60
	}
	return float64(tick/every) * p.Distance, 0
}
func (p JumpPath) Name() string { return "jump" }

// ParsePath returns a camera path by name with the given speed, which is
// pixels per tick for line, radius for circle and jump distance for jump.
func ParsePath(name string, speed float64) (CameraPath, error) {
	switch name {
	case "still":
		return StillPath{}, nil
	case "line":
		return LinePath{VX: speed, VY: speed / 2}, nil
	case "circle":
		return CirclePath{Radius: speed * 100, Period: 600}, nil
	case "jump":
		return JumpPath{Every: 60, Distance: speed * 200}, nil
	default:
		return nil, fmt.Errorf("unknown camera path %q", name)
	}
}

// Sim is a headless streaming harness. It mirrors the game loop without
// Ebiten: a recording renderer stands in for the display and the camera
// follows a scripted path.
type Sim struct {
	Scheduler *Scheduler
	Renderer  *RecordingRenderer
	TickLog   *TickLog
	Reporter  *Reporter
	Viewport  Viewport
	Path      CameraPath

	cfg     terrain.Config
	opts    []Option
	verbose bool
	window  int
}

// SimOption is a builder function applied to a Sim during construction.
type SimOption func(*Sim)

// WithConfig sets the world configuration.
func WithConfig(cfg terrain.Config) SimOption {
	return func(s *Sim) { s.cfg = cfg }
}

// WithSeed overrides the configuration's seed.
func WithSeed(seed int64) SimOption {
	return func(s *Sim) { s.cfg.Seed = seed }
}

// WithViewport sets the camera half extent in pixels.
func WithViewport(halfW, halfH float64) SimOption {
	return func(s *Sim) {
		s.Viewport.HalfWidth = halfW
		s.Viewport.HalfHeight = halfH
	}
}

// WithPath sets the scripted camera path.
func WithPath(p CameraPath) SimOption {
	return func(s *Sim) { s.Path = p }
}

// WithVerbose records per-chunk spawn and despawn entries.
func WithVerbose(v bool) SimOption {
	return func(s *Sim) { s.verbose = v }
}

// WithReportWindow sets the reporter's window in ticks.
func WithReportWindow(ticks int) SimOption {
	return func(s *Sim) { s.window = ticks }
}

// WithSchedulerOptions passes options through to the scheduler.
func WithSchedulerOptions(opts ...Option) SimOption {
	return func(s *Sim) { s.opts = append(s.opts, opts...) }
}

// NewSim builds a harness with a 1280x720 view of the default world
// centred on the origin.
func NewSim(opts ...SimOption) (*Sim, error) {
	s := &Sim{
		Viewport: Viewport{HalfWidth: 640, HalfHeight: 360},
		Path:     StillPath{},
		cfg:      terrain.DefaultConfig(1),
	}
	for _, o := range opts {
		o(s)
	}
	s.Renderer = NewRecordingRenderer()
	s.TickLog = NewTickLog(s.verbose)
	s.Reporter = NewReporter(s.window)

	schedOpts := append([]Option{WithTickLog(s.TickLog)}, s.opts...)
	sched, err := NewScheduler(s.cfg, s.Renderer, schedOpts...)
	if err != nil {
		return nil, err
	}
	s.Scheduler = sched
	return s, nil
}

// CurrentTick returns the last tick run.
func (s *Sim) CurrentTick() int { return s.Scheduler.CurrentTick() }

// Step moves the camera along its path and runs one tick.
func (s *Sim) Step() TickReport {
	s.Viewport.CenterX, s.Viewport.CenterY = s.Path.At(s.Scheduler.CurrentTick() + 1)
	vp := s.Viewport
	rep := s.Scheduler.Tick(&vp)
	s.Reporter.Collect(rep)
	return rep
}

// RunTicks advances the harness n ticks.
func (s *Sim) RunTicks(n int) []TickReport {
	out := make([]TickReport, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.Step())
	}
	return out
}

// RunUntil advances up to maxTicks, stopping early once predicate holds.
// Returns the tick at which it held, or -1.
func (s *Sim) RunUntil(predicate func(*Sim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		s.Step()
		if predicate(s) {
			return s.CurrentTick()
		}
	}
	return -1
}

// Consistent reports whether the store, the renderer and the current
// visible set agree, and describes the first mismatch otherwise.
func (s *Sim) Consistent() error {
	if len(s.Renderer.Violations) > 0 {
		return fmt.Errorf("renderer contract: %s", s.Renderer.Violations[0])
	}
	stored := s.Scheduler.Store().Keys()
	live := s.Renderer.LiveSet()
	if len(stored) != len(live) {
		return fmt.Errorf("store has %d chunks, renderer shows %d", len(stored), len(live))
	}
	for p := range stored {
		if !live.Has(p) {
			return fmt.Errorf("chunk %v stored but not shown", p)
		}
	}
	if s.Scheduler.Queued() > 0 {
		return nil
	}
	vp := s.Viewport
	visible := VisibleSet(&vp, s.Scheduler.Config(), s.Scheduler.padding)
	toSpawn, toDespawn := Diff(stored, visible)
	if len(toSpawn) > 0 || len(toDespawn) > 0 {
		return fmt.Errorf("store drifted from view: %d missing, %d extra", len(toSpawn), len(toDespawn))
	}
	return nil
}
