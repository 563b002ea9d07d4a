// Package game is the interactive front end: an ebiten window that pans a
// camera over the streamed chunk world.
package game

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/Garsondee/Tile-Stream/internal/stream"
	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

const (
	panSpeed      = 6.0 // screen pixels per frame
	zoomStep      = 1.25
	wheelZoomBase = 1.12
	tickLogLimit  = 1024
)

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the operator log shared with the scheduler.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithEventSink forwards every tick log entry to s as well as the panel.
func WithEventSink(s stream.Sink) Option {
	return func(g *Game) { g.extraSink = s }
}

// WithStreamOptions passes options through to the scheduler.
func WithStreamOptions(opts ...stream.Option) Option {
	return func(g *Game) { g.streamOpts = append(g.streamOpts, opts...) }
}

// Game implements ebiten.Game.
type Game struct {
	width  int
	height int

	sched    *stream.Scheduler
	sprites  *SpriteRegistry
	tickLog  *stream.TickLog
	reporter *stream.Reporter
	events   *EventPanel
	panel    *DebugPanel
	face     text.Face

	cam      Camera
	prevKeys map[ebiten.Key]bool
	showHelp bool
	status   string

	logger     *log.Logger
	extraSink  stream.Sink
	streamOpts []stream.Option
}

// New builds the game around cfg. Nothing is generated until the first
// Update, when the window size is known.
func New(cfg terrain.Config, opts ...Option) (*Game, error) {
	g := &Game{
		sprites:  NewSpriteRegistry(),
		tickLog:  stream.NewTickLog(false),
		reporter: stream.NewReporter(0),
		events:   NewEventPanel(),
		cam:      NewCamera(),
		prevKeys: make(map[ebiten.Key]bool),
		showHelp: true,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.tickLog.SetLimit(tickLogLimit)
	if g.extraSink != nil {
		g.tickLog.SetSink(stream.Sinks{g.events, g.extraSink})
	} else {
		g.tickLog.SetSink(g.events)
	}

	sched, err := stream.NewScheduler(cfg, g.sprites, append([]stream.Option{
		stream.WithLogger(g.logger),
		stream.WithTickLog(g.tickLog),
	}, g.streamOpts...)...)
	if err != nil {
		return nil, err
	}
	g.sched = sched

	face, err := loadFace(14)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	g.face = face
	g.panel = NewDebugPanel(face, cfg, g.applySliders)
	g.refreshPanel()
	return g, nil
}

// applySliders turns a settled slider change into a config request.
func (g *Game) applySliders(tileSize, chunkSize int) {
	cfg := g.sched.PendingConfig().
		WithTilePixelSize(float64(tileSize)).
		WithChunkTileCount(chunkSize)
	if err := g.sched.SetConfig(cfg); err != nil {
		g.setStatus(fmt.Sprintf("rejected: %v", err))
		return
	}
	g.setStatus(fmt.Sprintf("map settings: tile %dpx, chunk %d tiles", tileSize, chunkSize))
}

func (g *Game) setStatus(s string) {
	g.status = s
	g.logger.Print(s)
}

func (g *Game) refreshPanel() {
	cfg := g.sched.PendingConfig()
	g.panel.SetInfo(fmt.Sprintf("seed %d  %s  borders %s", cfg.Seed, cfg.Noise, g.sched.PendingBorders()))
}

func (g *Game) Update() error {
	g.handleInput()
	g.panel.Update()

	rep := g.sched.Tick(g.cam.Viewport(g.width, g.height))
	g.reporter.Collect(rep)
	if rep.Reloaded {
		g.panel.Sync(g.sched.Config())
		g.refreshPanel()
	}
	return nil
}

// pressed reports a key going down this frame.
func (g *Game) pressed(k ebiten.Key, current map[ebiten.Key]bool) bool {
	current[k] = ebiten.IsKeyPressed(k)
	return current[k] && !g.prevKeys[k]
}

// handleInput processes camera movement and edge-triggered toggles.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}

	// Camera pan: WASD or arrow keys. World Y is up.
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Pan(0, panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Pan(0, -panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.Pan(-panSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.Pan(panSpeed, 0)
	}

	// Camera zoom: mouse wheel or =/- keys.
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.ZoomBy(math.Pow(wheelZoomBase, wy))
	}
	if g.pressed(ebiten.KeyEqual, currentKeys) {
		g.cam.ZoomBy(zoomStep)
	}
	if g.pressed(ebiten.KeyMinus, currentKeys) {
		g.cam.ZoomBy(1 / zoomStep)
	}
	if g.pressed(ebiten.KeyHome, currentKeys) {
		g.cam = NewCamera()
	}

	// B: chunk borders.
	if g.pressed(ebiten.KeyB, currentKeys) {
		b := g.sched.ToggleBorders()
		g.setStatus(fmt.Sprintf("borders %s", b))
		g.refreshPanel()
	}

	// R: new world.
	if g.pressed(ebiten.KeyR, currentKeys) {
		seed := terrain.RandomSeed()
		g.sched.Reseed(seed)
		g.setStatus(fmt.Sprintf("reseeded %d", seed))
		g.refreshPanel()
	}

	// N: switch noise backend.
	if g.pressed(ebiten.KeyN, currentKeys) {
		cfg := g.sched.PendingConfig()
		if cfg.Noise == terrain.NoisePerlin {
			cfg.Noise = terrain.NoiseValue
		} else {
			cfg.Noise = terrain.NoisePerlin
		}
		if err := g.sched.SetConfig(cfg); err == nil {
			g.setStatus(fmt.Sprintf("noise %s", cfg.Noise))
		}
		g.refreshPanel()
	}

	// F5: plain reload.
	if g.pressed(ebiten.KeyF5, currentKeys) {
		g.sched.RequestReload()
		g.setStatus("reload requested")
	}

	// C: copy seed.
	if g.pressed(ebiten.KeyC, currentKeys) {
		seed := g.sched.Config().Seed
		if err := copySeed(seed); err != nil {
			g.setStatus(fmt.Sprintf("clipboard: %v", err))
		} else {
			g.setStatus(fmt.Sprintf("seed %d copied", seed))
		}
	}

	if g.pressed(ebiten.KeyF1, currentKeys) {
		g.panel.Toggle()
	}
	if g.pressed(ebiten.KeyH, currentKeys) {
		g.showHelp = !g.showHelp
	}

	g.prevKeys = currentKeys
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 20, A: 255})
	g.sprites.Draw(screen, g.cam)

	g.events.Draw(screen)
	g.panel.Draw(screen)
	drawHUD(screen, g.face, hudLines(g.hudState()))
}

func (g *Game) hudState() hudState {
	s := hudState{
		Tick:     g.sched.CurrentTick(),
		Loaded:   g.sched.Store().Len(),
		Sprites:  g.sprites.Len(),
		Epoch:    g.sched.Epoch(),
		Config:   g.sched.Config(),
		Borders:  g.sched.Borders(),
		Camera:   g.cam,
		Window:   g.reporter.WindowSummary(),
		Status:   g.status,
		ShowKeys: g.showHelp,
	}
	if l := g.reporter.Latest(); l != nil {
		s.Last = *l
	}
	return s
}

// Layout tracks the window size; the world is drawn at native resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Scheduler exposes the chunk scheduler.
func (g *Game) Scheduler() *stream.Scheduler { return g.sched }

// Report returns a summary of every tick so far.
func (g *Game) Report() *stream.WindowReport { return g.reporter.Totals() }
