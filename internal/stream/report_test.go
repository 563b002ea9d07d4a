package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_WindowAndPrune(t *testing.T) {
	r := NewReporter(5)
	assert.Nil(t, r.Latest())
	assert.Nil(t, r.WindowSummary())
	assert.Nil(t, r.Totals())

	for tick := 1; tick <= 23; tick++ {
		r.Collect(TickReport{
			Tick:        tick,
			Spawned:     tick,
			Loaded:      10,
			Visible:     12,
			Reloaded:    tick%10 == 0,
			GenDuration: time.Duration(tick) * time.Millisecond,
		})
	}
	assert.LessOrEqual(t, len(r.history), 10)
	assert.Equal(t, 23, r.Latest().Tick)

	w := r.WindowSummary()
	require.NotNil(t, w)
	assert.Equal(t, 19, w.FromTick)
	assert.Equal(t, 23, w.ToTick)
	assert.Equal(t, 5, w.SampleCount)
	assert.Equal(t, 19+20+21+22+23, w.Spawned)
	assert.Equal(t, 1, w.Reloads)
	assert.Equal(t, 23*time.Millisecond, w.MaxGen)
	assert.Equal(t, 23, w.MaxBatch)
	assert.InDelta(t, 10.0, w.AvgLoaded, 1e-9)
	assert.InDelta(t, 12.0, w.AvgVisible, 1e-9)

	totals := r.Totals()
	assert.Equal(t, 23*24/2, totals.Spawned)
	assert.Equal(t, 2, totals.Reloads)
	assert.Equal(t, 1, totals.FromTick)
}

func TestWindowReport_Format(t *testing.T) {
	var nilReport *WindowReport
	assert.Equal(t, "No data collected yet.\n", nilReport.Format())

	r := NewReporter(0)
	assert.Equal(t, reportWindowTicks, r.Window())
	r.Collect(TickReport{Tick: 1, Spawned: 64, Loaded: 64})
	out := r.WindowSummary().Format()
	assert.Contains(t, out, "T=1..1, 1 ticks")
	assert.Contains(t, out, "spawned        64")
}
