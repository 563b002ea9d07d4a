package stream

import (
	"fmt"
	"strings"
	"time"
)

// reportWindowTicks is the default sliding window (~10s at 60TPS).
const reportWindowTicks = 600

// Reporter keeps recent tick reports and summarizes them over a sliding
// window of ticks.
type Reporter struct {
	history     []TickReport
	windowTicks int
	total       WindowReport
}

// NewReporter creates a reporter with the given window size.
func NewReporter(windowTicks int) *Reporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &Reporter{windowTicks: windowTicks}
}

// Window returns the window size in ticks.
func (r *Reporter) Window() int { return r.windowTicks }

// Collect records one tick report.
func (r *Reporter) Collect(rep TickReport) {
	r.history = append(r.history, rep)
	r.total.add(rep)

	// Prune beyond 2x window to prevent unbounded growth.
	if maxKeep := r.windowTicks * 2; len(r.history) > maxKeep {
		r.history = append(r.history[:0], r.history[len(r.history)-r.windowTicks:]...)
	}
}

// Latest returns the most recent report, or nil.
func (r *Reporter) Latest() *TickReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// WindowSummary aggregates the reports within the last window of ticks.
func (r *Reporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latest := r.history[len(r.history)-1].Tick
	cutoff := latest - r.windowTicks
	wr := &WindowReport{}
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick <= cutoff {
			break
		}
		wr.add(r.history[i])
	}
	return wr.finish()
}

// Totals aggregates every report ever collected.
func (r *Reporter) Totals() *WindowReport {
	if r.total.SampleCount == 0 {
		return nil
	}
	wr := r.total
	return wr.finish()
}

// WindowReport is an aggregated summary over a range of ticks.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	// Cumulative.
	Spawned, Despawned, Discarded int
	Reloads                       int
	GenTotal                      time.Duration

	// Peaks.
	MaxBatch  int
	MaxGen    time.Duration
	MaxLoaded int

	// Averages over the window.
	AvgLoaded  float64
	AvgVisible float64

	loadedSum, visibleSum int
}

func (wr *WindowReport) add(rep TickReport) {
	if wr.SampleCount == 0 || rep.Tick < wr.FromTick {
		wr.FromTick = rep.Tick
	}
	if rep.Tick > wr.ToTick {
		wr.ToTick = rep.Tick
	}
	wr.SampleCount++
	wr.Spawned += rep.Spawned
	wr.Despawned += rep.Despawned
	wr.Discarded += rep.Discarded
	if rep.Reloaded {
		wr.Reloads++
	}
	wr.GenTotal += rep.GenDuration
	wr.MaxBatch = max(wr.MaxBatch, rep.Spawned+rep.Discarded)
	wr.MaxGen = max(wr.MaxGen, rep.GenDuration)
	wr.MaxLoaded = max(wr.MaxLoaded, rep.Loaded)
	wr.loadedSum += rep.Loaded
	wr.visibleSum += rep.Visible
}

func (wr *WindowReport) finish() *WindowReport {
	if wr.SampleCount > 0 {
		n := float64(wr.SampleCount)
		wr.AvgLoaded = float64(wr.loadedSum) / n
		wr.AvgVisible = float64(wr.visibleSum) / n
	}
	return wr
}

// Format returns a human-readable multi-line string of the summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Streaming Report (T=%d..%d, %d ticks) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)
	fmt.Fprintf(&sb, "  spawned    %6d\n", wr.Spawned)
	fmt.Fprintf(&sb, "  despawned  %6d\n", wr.Despawned)
	fmt.Fprintf(&sb, "  discarded  %6d\n", wr.Discarded)
	fmt.Fprintf(&sb, "  reloads    %6d\n", wr.Reloads)
	fmt.Fprintf(&sb, "  loaded     avg %.1f  max %d\n", wr.AvgLoaded, wr.MaxLoaded)
	fmt.Fprintf(&sb, "  visible    avg %.1f\n", wr.AvgVisible)
	fmt.Fprintf(&sb, "  batch      max %d chunks\n", wr.MaxBatch)
	fmt.Fprintf(&sb, "  generation total %v  max %v\n",
		wr.GenTotal.Round(time.Microsecond), wr.MaxGen.Round(time.Microsecond))
	return sb.String()
}
