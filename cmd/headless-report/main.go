package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Tile-Stream/internal/eventlog"
	"github.com/Garsondee/Tile-Stream/internal/stream"
	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

type runOptions struct {
	ticks       int
	cfg         terrain.Config
	path        stream.CameraPath
	halfW       float64
	halfH       float64
	workers     int
	padding     int
	reloadEvery int
	borders     bool
	events      *eventlog.Writer
	keepBitmaps bool
}

type runStats struct {
	runIndex int
	seed     int64

	firstFullTick int
	reloads       int
	discards      int
	maxBatch      int
	violations    int
	consistency   string

	totals      *stream.WindowReport
	window      *stream.WindowReport
	tileCounts  map[terrain.TileKind]int
	finalChunks int

	renderer *stream.RecordingRenderer
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var configPath string
	var pathName string
	var speed float64
	var viewW, viewH int
	var workers int
	var padding int
	var reloadEvery int
	var borders bool
	var eventsPath string
	var mosaicPath string
	var mosaicWidth int

	flag.IntVar(&runs, "runs", 3, "number of headless streaming runs")
	flag.IntVar(&ticks, "ticks", 600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "world seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&configPath, "config", "", "YAML map config (defaults when empty)")
	flag.StringVar(&pathName, "path", "line", "camera path: still, line, circle, jump")
	flag.Float64Var(&speed, "speed", 8, "camera speed (px/tick for line, radius/100 for circle, jump/200 for jump)")
	flag.IntVar(&viewW, "view-w", 1280, "viewport width in pixels")
	flag.IntVar(&viewH, "view-h", 720, "viewport height in pixels")
	flag.IntVar(&workers, "workers", 0, "generation workers (0 = GOMAXPROCS)")
	flag.IntVar(&padding, "padding", stream.DefaultPadding, "prefetch margin in chunks")
	flag.IntVar(&reloadEvery, "reload-every", 0, "request a full reload every N ticks (0 = never)")
	flag.BoolVar(&borders, "borders", false, "draw chunk borders")
	flag.StringVar(&eventsPath, "events", "", "write the tick log as zstd JSONL to this file")
	flag.StringVar(&mosaicPath, "mosaic", "", "write a PNG of the last run's final view to this file")
	flag.IntVar(&mosaicWidth, "mosaic-width", 1024, "mosaic width in pixels")
	flag.Parse()

	if runs <= 0 {
		fail("-runs must be > 0")
	}
	if ticks <= 0 {
		fail("-ticks must be > 0")
	}
	if viewW <= 0 || viewH <= 0 {
		fail("-view-w and -view-h must be > 0")
	}

	cfg := terrain.DefaultConfig(seedBase)
	if configPath != "" {
		loaded, err := terrain.LoadConfig(configPath)
		if err != nil {
			fail(err.Error())
		}
		cfg = loaded
	}
	path, err := stream.ParsePath(pathName, speed)
	if err != nil {
		fail(err.Error())
	}

	opts := runOptions{
		ticks:       ticks,
		cfg:         cfg,
		path:        path,
		halfW:       float64(viewW) / 2,
		halfH:       float64(viewH) / 2,
		workers:     workers,
		padding:     padding,
		reloadEvery: reloadEvery,
		borders:     borders,
	}
	if eventsPath != "" {
		w, err := eventlog.Create(eventsPath)
		if err != nil {
			fail(err.Error())
		}
		defer w.Close()
		opts.events = w
	}

	fmt.Printf("=== Headless Streaming Report ===\n")
	fmt.Printf("path=%s runs=%d ticks=%d seed_base=%d seed_step=%d tile=%g chunk=%d noise=%s\n\n",
		path.Name(), runs, ticks, seedBase, seedStep, cfg.TilePixelSize, cfg.ChunkTileCount, cfg.Noise)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		o := opts
		o.keepBitmaps = mosaicPath != "" && i == runs-1
		rs, err := runStreaming(i+1, seed, o)
		if err != nil {
			fail(err.Error())
		}
		all = append(all, rs)
		printRun(rs)
	}
	printAggregate(all)

	if mosaicPath != "" {
		last := all[len(all)-1]
		if err := writeMosaic(mosaicPath, last.renderer, mosaicWidth); err != nil {
			fail(err.Error())
		}
		fmt.Printf("mosaic written to %s\n", mosaicPath)
	}
	if opts.events != nil {
		if err := opts.events.Close(); err != nil {
			fail(err.Error())
		}
		fmt.Printf("events written to %s (%d lines)\n", eventsPath, opts.events.Lines())
	}
}

func fail(msg string) {
	fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	os.Exit(1)
}

// runSink tags every entry with its run before it reaches the event log.
type runSink struct {
	run int
	w   *eventlog.Writer
}

type runEntry struct {
	Run   int                 `json:"run"`
	Entry stream.TickLogEntry `json:"entry"`
}

func (s runSink) Write(v any) error {
	e, ok := v.(stream.TickLogEntry)
	if !ok {
		return s.w.Write(v)
	}
	return s.w.Write(runEntry{Run: s.run, Entry: e})
}

func runStreaming(runIndex int, seed int64, o runOptions) (runStats, error) {
	schedOpts := []stream.Option{stream.WithPadding(int32(o.padding))}
	if o.workers > 0 {
		schedOpts = append(schedOpts, stream.WithWorkers(o.workers))
	}
	if o.borders {
		schedOpts = append(schedOpts, stream.WithBorders(terrain.BordersShown))
	}
	sim, err := stream.NewSim(
		stream.WithConfig(o.cfg),
		stream.WithSeed(seed),
		stream.WithViewport(o.halfW, o.halfH),
		stream.WithPath(o.path),
		stream.WithSchedulerOptions(schedOpts...),
	)
	if err != nil {
		return runStats{}, fmt.Errorf("run %d: %w", runIndex, err)
	}
	sim.Renderer.KeepBitmaps = o.keepBitmaps
	if o.events != nil {
		sim.TickLog.SetSink(runSink{run: runIndex, w: o.events})
	}

	rs := runStats{
		runIndex:      runIndex,
		seed:          seed,
		firstFullTick: -1,
		renderer:      sim.Renderer,
	}
	for i := 0; i < o.ticks; i++ {
		if o.reloadEvery > 0 && i > 0 && i%o.reloadEvery == 0 {
			sim.Scheduler.RequestReload()
		}
		rep := sim.Step()
		if rs.firstFullTick < 0 && rep.Visible > 0 && rep.Loaded == rep.Visible {
			rs.firstFullTick = rep.Tick
		}
		if rs.consistency == "" {
			if err := sim.Consistent(); err != nil {
				rs.consistency = fmt.Sprintf("T=%d %v", rep.Tick, err)
			}
		}
	}

	rs.totals = sim.Reporter.Totals()
	rs.window = sim.Reporter.WindowSummary()
	if rs.totals != nil {
		rs.reloads = rs.totals.Reloads
		rs.discards = rs.totals.Discarded
		rs.maxBatch = rs.totals.MaxBatch
	}
	rs.violations = len(sim.Renderer.Violations)
	rs.tileCounts, rs.finalChunks = tileCensus(sim)
	return rs, nil
}

// tileCensus regenerates the final materialized set and counts tile kinds.
func tileCensus(sim *stream.Sim) (map[terrain.TileKind]int, int) {
	cfg := sim.Scheduler.Config()
	field, err := terrain.NewNoiseField(cfg)
	if err != nil {
		return nil, 0
	}
	counts := map[terrain.TileKind]int{}
	positions := sim.Scheduler.Store().Positions()
	for _, p := range positions {
		c, err := terrain.GenerateChunk(p, field, cfg)
		if err != nil {
			continue
		}
		for k, n := range c.Counts() {
			counts[k] += n
		}
	}
	return counts, len(positions)
}

// detectThrash flags runs where the scheduler churned far more chunks
// than the camera movement explains.
func detectThrash(rs runStats) (bool, string) {
	if rs.totals == nil || rs.totals.Spawned == 0 {
		return false, "no_spawns"
	}
	var reasons []string
	churn := float64(rs.totals.Despawned) / float64(rs.totals.Spawned)
	if rs.reloads == 0 && churn > 0.98 && rs.totals.SampleCount > 1 {
		reasons = append(reasons, fmt.Sprintf("despawn_ratio=%.2f", churn))
	}
	if rs.discards > rs.totals.Spawned/10 {
		reasons = append(reasons, fmt.Sprintf("discards=%d", rs.discards))
	}
	if rs.violations > 0 {
		reasons = append(reasons, fmt.Sprintf("renderer_violations=%d", rs.violations))
	}
	if len(reasons) == 0 {
		return false, "ok"
	}
	return true, strings.Join(reasons, ",")
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	if rs.totals != nil {
		fmt.Printf("totals: spawned=%d despawned=%d discarded=%d reloads=%d max_batch=%d first_full_tick=%d\n",
			rs.totals.Spawned, rs.totals.Despawned, rs.discards, rs.reloads, rs.maxBatch, rs.firstFullTick)
		fmt.Printf("loaded: avg=%.1f max=%d final=%d\n", rs.totals.AvgLoaded, rs.totals.MaxLoaded, rs.finalChunks)
		fmt.Printf("generation: total=%v max=%v\n", rs.totals.GenTotal, rs.totals.MaxGen)
	}
	if rs.window != nil {
		fmt.Printf("window_samples=%d window_tick_range=%d..%d window_spawned=%d window_despawned=%d\n",
			rs.window.SampleCount, rs.window.FromTick, rs.window.ToTick, rs.window.Spawned, rs.window.Despawned)
	}
	fmt.Printf("tiles: %s\n", formatTileCounts(rs.tileCounts))
	consistency := rs.consistency
	if consistency == "" {
		consistency = "ok"
	}
	fmt.Printf("consistency: %s\n", consistency)
	thrash, reason := detectThrash(rs)
	fmt.Printf("thrash: %t (%s)\n\n", thrash, reason)
}

func printAggregate(all []runStats) {
	var spawned, despawned, discards, reloads, failures int
	var full []int
	for _, rs := range all {
		if rs.totals != nil {
			spawned += rs.totals.Spawned
			despawned += rs.totals.Despawned
		}
		discards += rs.discards
		reloads += rs.reloads
		if rs.consistency != "" || rs.violations > 0 {
			failures++
		}
		if rs.firstFullTick >= 0 {
			full = append(full, rs.firstFullTick)
		}
	}
	n := len(all)
	fmt.Printf("=== Aggregate (%d runs) ===\n", n)
	fmt.Printf("avg_spawned=%.1f avg_despawned=%.1f discards=%d reloads=%d\n",
		avg(spawned, n), avg(despawned, n), discards, reloads)
	fmt.Printf("first_full_tick: %s\n", avgTickString(full))
	fmt.Printf("consistency_failures=%d\n\n", failures)
}

func avg(sum int, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f (n=%d)", float64(sum)/float64(len(vals)), len(vals))
}

func formatTileCounts(counts map[terrain.TileKind]int) string {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return "none"
	}
	kinds := terrain.TileKinds()
	sort.SliceStable(kinds, func(i, j int) bool { return counts[kinds[i]] > counts[kinds[j]] })
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if counts[k] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%.1f%%", k, float64(counts[k])/float64(total)*100))
	}
	return strings.Join(parts, " ")
}
