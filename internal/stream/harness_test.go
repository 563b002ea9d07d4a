package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSim_PathsStayConsistent(t *testing.T) {
	paths := []CameraPath{
		StillPath{X: 37, Y: -12},
		LinePath{VX: 7, VY: -3},
		CirclePath{Radius: 900, Period: 120},
		JumpPath{Every: 15, Distance: 2500},
	}
	for _, p := range paths {
		t.Run(p.Name(), func(t *testing.T) {
			sim, err := NewSim(WithPath(p), WithSeed(3), WithSchedulerOptions(WithWorkers(2)))
			require.NoError(t, err)
			for i := 0; i < 90; i++ {
				sim.Step()
				if err := sim.Consistent(); err != nil {
					t.Fatalf("tick %d: %v\n%s", sim.CurrentTick(), err, sim.TickLog.FormatRange(sim.CurrentTick()-1, sim.CurrentTick()))
				}
			}
		})
	}
}

func TestSim_ReloadMidRun(t *testing.T) {
	sim, err := NewSim(WithPath(LinePath{VX: 11}))
	require.NoError(t, err)
	sim.RunTicks(20)

	sim.Scheduler.ToggleBorders()
	sim.Scheduler.Reseed(1234)
	rep := sim.Step()
	assert.True(t, rep.Reloaded)
	require.NoError(t, sim.Consistent())
	assert.Equal(t, int64(1234), sim.Scheduler.Config().Seed)

	sim.RunTicks(20)
	require.NoError(t, sim.Consistent())
	assert.Equal(t, 1, sim.Reporter.Totals().Reloads)
}

func TestSim_RunUntil(t *testing.T) {
	sim, err := NewSim(WithPath(JumpPath{Every: 10, Distance: 5000}))
	require.NoError(t, err)

	tick := sim.RunUntil(func(s *Sim) bool {
		l := s.Reporter.Latest()
		return l != nil && l.Despawned > 0
	}, 50)
	assert.Equal(t, 10, tick)
	assert.Equal(t, -1, sim.RunUntil(func(*Sim) bool { return false }, 3))
}

func TestSim_ReportTotals(t *testing.T) {
	sim, err := NewSim(WithPath(LinePath{VX: 40}), WithReportWindow(10))
	require.NoError(t, err)
	reps := sim.RunTicks(60)

	var spawned, despawned int
	for _, r := range reps {
		spawned += r.Spawned
		despawned += r.Despawned
	}
	totals := sim.Reporter.Totals()
	require.NotNil(t, totals)
	assert.Equal(t, spawned, totals.Spawned)
	assert.Equal(t, despawned, totals.Despawned)
	assert.Equal(t, spawned-despawned, sim.Scheduler.Store().Len())
	assert.Equal(t, 60, totals.SampleCount)

	window := sim.Reporter.WindowSummary()
	assert.Equal(t, 10, window.SampleCount)
	assert.Equal(t, 51, window.FromTick)
	assert.Equal(t, 60, window.ToTick)
}

func TestParsePath(t *testing.T) {
	for _, name := range []string{"still", "line", "circle", "jump"} {
		p, err := ParsePath(name, 4)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}
	_, err := ParsePath("spiral", 1)
	assert.Error(t, err)
}
