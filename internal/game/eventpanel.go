package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Tile-Stream/internal/stream"
)

const (
	eventPanelWidth = 340
	eventMaxEntries = 60
	eventLineHeight = 16
)

// EventPanel is a ring buffer of recent stream events rendered on-screen.
// It is a stream.Sink, so it can be fed straight from the tick log.
type EventPanel struct {
	entries []stream.TickLogEntry
	head    int
	count   int
}

// NewEventPanel creates a panel with a fixed capacity.
func NewEventPanel() *EventPanel {
	return &EventPanel{
		entries: make([]stream.TickLogEntry, eventMaxEntries),
	}
}

// Write implements stream.Sink. Anything other than a tick log entry is
// rejected.
func (p *EventPanel) Write(v any) error {
	e, ok := v.(stream.TickLogEntry)
	if !ok {
		return fmt.Errorf("event panel: unexpected %T", v)
	}
	p.Add(e)
	return nil
}

// Add appends an entry, evicting the oldest when full.
func (p *EventPanel) Add(e stream.TickLogEntry) {
	p.entries[p.head] = e
	p.head = (p.head + 1) % eventMaxEntries
	if p.count < eventMaxEntries {
		p.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (p *EventPanel) Recent() []stream.TickLogEntry {
	result := make([]stream.TickLogEntry, p.count)
	for i := 0; i < p.count; i++ {
		idx := (p.head - p.count + i + eventMaxEntries) % eventMaxEntries
		result[i] = p.entries[idx]
	}
	return result
}

func categoryColor(cat string) color.RGBA {
	switch cat {
	case stream.CatReload:
		return color.RGBA{R: 230, G: 190, B: 60, A: 255}
	case stream.CatConfig:
		return color.RGBA{R: 120, G: 170, B: 255, A: 255}
	case stream.CatDiscard:
		return color.RGBA{R: 220, G: 70, B: 70, A: 255}
	case stream.CatSpawn, stream.CatBatch:
		return color.RGBA{R: 80, G: 200, B: 110, A: 255}
	default:
		return color.RGBA{R: 140, G: 140, B: 140, A: 255}
	}
}

// Draw renders the panel along the right edge of the screen.
func (p *EventPanel) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	panelX := b.Dx() - eventPanelWidth
	panelH := b.Dy()

	vector.FillRect(screen, float32(panelX), 0, eventPanelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 16, A: 220}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)
	vector.FillRect(screen, float32(panelX), 0, eventPanelWidth, 18, color.RGBA{R: 20, G: 26, B: 36, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "STREAM EVENTS", panelX+8, 2)

	entries := p.Recent()
	maxVisible := (panelH - 24) / eventLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	y := 22
	for i, e := range entries {
		if i >= len(entries)-3 {
			vector.FillRect(screen, float32(panelX+2), float32(y), eventPanelWidth-4, eventLineHeight, color.RGBA{R: 30, G: 36, B: 48, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+5), 3, 6, categoryColor(e.Category), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d %-7s %s", e.Tick, e.Category, e.Value), panelX+12, y)
		y += eventLineHeight
	}
}
