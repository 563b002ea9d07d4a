package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

func TestQueue_CoalescesIntoOnePlan(t *testing.T) {
	var q queue
	cfg := terrain.DefaultConfig(1)
	for i := 0; i < 5; i++ {
		q.push(Message{Kind: MsgReload})
	}
	q.push(Message{Kind: MsgBorders, Borders: terrain.BordersShown})

	plan := q.drain(cfg, terrain.BordersHidden)
	assert.True(t, plan.Reload)
	assert.Equal(t, []MessageKind{MsgReload, MsgBorders}, plan.reasons())
	assert.Equal(t, terrain.BordersShown, plan.Borders)
	assert.Equal(t, cfg, plan.Config)
	assert.Equal(t, 0, q.len())

	plan = q.drain(cfg, terrain.BordersShown)
	assert.False(t, plan.Reload)
	assert.Equal(t, terrain.BordersShown, plan.Borders)
}

func TestQueue_LastWriteWins(t *testing.T) {
	var q queue
	cfg := terrain.DefaultConfig(1)
	bigger := cfg.WithTilePixelSize(30)

	q.push(Message{Kind: MsgConfig, Config: bigger})
	q.push(Message{Kind: MsgReseed, Seed: 99})
	plan := q.drain(cfg, terrain.BordersHidden)
	assert.Equal(t, bigger.WithSeed(99), plan.Config)

	q.push(Message{Kind: MsgReseed, Seed: 99})
	q.push(Message{Kind: MsgConfig, Config: bigger})
	plan = q.drain(cfg, terrain.BordersHidden)
	assert.Equal(t, bigger, plan.Config)
}

func TestQueue_PendingDoesNotConsume(t *testing.T) {
	var q queue
	q.push(Message{Kind: MsgReseed, Seed: 5})
	plan := q.pending(terrain.DefaultConfig(1), terrain.BordersHidden)
	assert.Equal(t, int64(5), plan.Config.Seed)
	assert.Equal(t, 1, q.len())
}

func TestMessageKind_String(t *testing.T) {
	assert.Equal(t, "reload", MsgReload.String())
	assert.Equal(t, "borders", MsgBorders.String())
	assert.Equal(t, "config", MsgConfig.String())
	assert.Equal(t, "reseed", MsgReseed.String())
	assert.Equal(t, "unknown", messageKindCount.String())
}
