package stream

import "github.com/Garsondee/Tile-Stream/internal/terrain"

// MessageKind names a request that forces a full reload.
type MessageKind uint8

const (
	MsgReload  MessageKind = iota // explicit reload
	MsgBorders                    // border overlay changed
	MsgConfig                     // tile size, chunk size or noise changed
	MsgReseed                     // new world seed
	messageKindCount
)

func (k MessageKind) String() string {
	switch k {
	case MsgReload:
		return "reload"
	case MsgBorders:
		return "borders"
	case MsgConfig:
		return "config"
	case MsgReseed:
		return "reseed"
	default:
		return "unknown"
	}
}

// Message is one queued request. Only the field matching Kind is read.
type Message struct {
	Kind    MessageKind
	Borders terrain.BorderState
	Config  terrain.Config
	Seed    int64
}

// queue buffers requests between ticks. Any number of messages collapse
// into at most one reload at the next drain.
type queue struct {
	msgs []Message
}

func (q *queue) push(m Message) { q.msgs = append(q.msgs, m) }

func (q *queue) len() int { return len(q.msgs) }

// pending folds the queued messages over the active state without
// consuming them, so callers can read back what the next reload will use.
func (q *queue) pending(cfg terrain.Config, borders terrain.BorderState) reloadPlan {
	plan := reloadPlan{Config: cfg, Borders: borders}
	for _, m := range q.msgs {
		plan.Reload = true
		plan.Reasons[m.Kind] = true
		switch m.Kind {
		case MsgBorders:
			plan.Borders = m.Borders
		case MsgConfig:
			plan.Config = m.Config
		case MsgReseed:
			plan.Config.Seed = m.Seed
		}
	}
	return plan
}

// drain consumes every queued message and returns the coalesced plan.
func (q *queue) drain(cfg terrain.Config, borders terrain.BorderState) reloadPlan {
	plan := q.pending(cfg, borders)
	q.msgs = q.msgs[:0]
	return plan
}

// reloadPlan is the state a reload switches to.
type reloadPlan struct {
	Reload  bool
	Reasons [messageKindCount]bool
	Config  terrain.Config
	Borders terrain.BorderState
}

// reasons lists the distinct message kinds behind the plan.
func (p reloadPlan) reasons() []MessageKind {
	var out []MessageKind
	for k, set := range p.Reasons {
		if set {
			out = append(out, MessageKind(k))
		}
	}
	return out
}
