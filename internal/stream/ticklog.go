package stream

import (
	"fmt"
	"strings"
)

// Log categories.
const (
	CatSpawn   = "spawn"
	CatDespawn = "despawn"
	CatReload  = "reload"
	CatConfig  = "config"
	CatBatch   = "batch"
	CatDiscard = "discard"
)

// TickLogEntry is one recorded scheduler event.
type TickLogEntry struct {
	Tick     int     `json:"tick"`
	Category string  `json:"category"`
	Key      string  `json:"key"`
	Chunk    string  `json:"chunk,omitempty"` // "(x,y)" or empty for global events
	Value    string  `json:"value,omitempty"`
	NumVal   float64 `json:"num,omitempty"`
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] (3,-1)   spawn    chunk          handle=17
func (e TickLogEntry) String() string {
	chunk := e.Chunk
	if chunk == "" {
		chunk = "--"
	}
	return fmt.Sprintf("[T=%03d] %-8s %-8s %-14s %s",
		e.Tick, chunk, e.Category, e.Key, e.Value)
}

// Sink receives every entry as it is recorded. eventlog.Writer satisfies it.
type Sink interface {
	Write(v any) error
}

// Sinks fans every entry out to several sinks. All sinks are written;
// the first error is returned.
type Sinks []Sink

func (ss Sinks) Write(v any) error {
	var first error
	for _, s := range ss {
		if err := s.Write(v); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// TickLog collects structured scheduler events. It is unbounded unless a
// limit is set; per-chunk spawn and despawn lines are only kept in verbose
// mode.
type TickLog struct {
	entries    []TickLogEntry
	verbose    bool
	limit      int
	sink       Sink
	sinkErrors int
}

// NewTickLog creates a TickLog. If verbose is true, one entry per spawned
// and despawned chunk is recorded as well as the per-tick totals.
func NewTickLog(verbose bool) *TickLog {
	return &TickLog{verbose: verbose}
}

// SetSink forwards future entries to s. Pass nil to stop forwarding.
func (tl *TickLog) SetSink(s Sink) { tl.sink = s }

// SetLimit keeps roughly the newest n entries. Zero means unbounded.
func (tl *TickLog) SetLimit(n int) {
	tl.limit = max(n, 0)
	tl.trim()
}

func (tl *TickLog) trim() {
	if tl.limit == 0 || len(tl.entries) <= 2*tl.limit {
		return
	}
	tl.entries = append(tl.entries[:0], tl.entries[len(tl.entries)-tl.limit:]...)
}

// SinkErrors is how many forwarded entries the sink rejected.
func (tl *TickLog) SinkErrors() int { return tl.sinkErrors }

// Add records a new entry.
func (tl *TickLog) Add(tick int, category, key, chunk, value string, numVal float64) {
	e := TickLogEntry{
		Tick:     tick,
		Category: category,
		Key:      key,
		Chunk:    chunk,
		Value:    value,
		NumVal:   numVal,
	}
	tl.entries = append(tl.entries, e)
	tl.trim()
	if tl.sink != nil {
		if err := tl.sink.Write(e); err != nil {
			tl.sinkErrors++
		}
	}
}

// AddVerbose records an entry only when verbose mode is on.
func (tl *TickLog) AddVerbose(tick int, category, key, chunk, value string, numVal float64) {
	if !tl.verbose {
		return
	}
	tl.Add(tick, category, key, chunk, value, numVal)
}

// Entries returns all recorded entries.
func (tl *TickLog) Entries() []TickLogEntry {
	return tl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (tl *TickLog) Filter(category, key string) []TickLogEntry {
	var out []TickLogEntry
	for _, e := range tl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (tl *TickLog) FilterTickRange(fromTick, toTick int) []TickLogEntry {
	var out []TickLogEntry
	for _, e := range tl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (tl *TickLog) CountCategory(category, key string) int {
	return len(tl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (tl *TickLog) LastOf(category, key string) (TickLogEntry, bool) {
	entries := tl.Filter(category, key)
	if len(entries) == 0 {
		return TickLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether an entry matches category, key and value substring.
func (tl *TickLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range tl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (tl *TickLog) Format() string {
	var sb strings.Builder
	for _, e := range tl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (tl *TickLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range tl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
