package logging

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultRingSize is the number of log entries kept in memory
const DefaultRingSize = 100

// LogEntry is a log record retained for the control surface
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Ring is a bounded FIFO of the most recent log entries
type Ring struct {
	mu      sync.RWMutex
	entries []LogEntry
	start   int
	count   int
	total   int
}

// NewRing creates a ring holding at most size entries
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{entries: make([]LogEntry, size)}
}

// Append adds an entry, dropping the oldest one when full
func (r *Ring) Append(e LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := len(r.entries)
	if r.count < size {
		r.entries[(r.start+r.count)%size] = e
		r.count++
	} else {
		r.entries[r.start] = e
		r.start = (r.start + 1) % size
	}
	r.total++
}

// Recent returns up to n of the newest entries, oldest first.
// A non-positive n returns everything held.
func (r *Ring) Recent(n int) []LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]LogEntry, n)
	size := len(r.entries)
	first := r.start + r.count - n
	for i := 0; i < n; i++ {
		out[i] = r.entries[(first+i)%size]
	}
	return out
}

// Len returns the number of entries held
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Total returns the number of entries ever appended
func (r *Ring) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// ringCore is a zapcore.Core that copies entries into a Ring
type ringCore struct {
	zapcore.LevelEnabler
	ring   *Ring
	fields []zapcore.Field
}

// NewRingCore returns a core writing enabled entries to ring
func NewRingCore(ring *Ring, enab zapcore.LevelEnabler) zapcore.Core {
	return &ringCore{LevelEnabler: enab, ring: ring}
}

func (c *ringCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &ringCore{LevelEnabler: c.LevelEnabler, ring: c.ring, fields: merged}
}

func (c *ringCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *ringCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	entry := LogEntry{
		Timestamp: ent.Time,
		Level:     ent.Level.String(),
		Message:   ent.Message,
	}

	if len(c.fields)+len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range c.fields {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}
		entry.Fields = enc.Fields
	}

	c.ring.Append(entry)
	return nil
}

func (c *ringCore) Sync() error {
	return nil
}
