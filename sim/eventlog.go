// Bounded in-memory event log. The simulator appends one entry per
// interesting state change; the log keeps the most recent entries in a ring
// and supports filtered queries for reporting and tests.

package sim

// LogLevel classifies event log entries.
type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogEntry is one recorded state change.
type LogEntry struct {
	Time     int64
	Level    LogLevel
	Type     EventType
	EntityID string
	Message  string
}

// DefaultEventLogCapacity bounds the ring when no capacity is given.
const DefaultEventLogCapacity = 10000

// EventLog is a fixed-capacity ring of log entries. Once full, each append
// evicts the oldest entry.
type EventLog struct {
	entries []LogEntry
	head    int
	full    bool
}

// NewEventLog creates a log holding at most capacity entries; capacity <= 0
// uses the default.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = DefaultEventLogCapacity
	}
	return &EventLog{entries: make([]LogEntry, 0, capacity)}
}

// Append records one entry, evicting the oldest when the ring is full.
func (l *EventLog) Append(e LogEntry) {
	if !l.full {
		l.entries = append(l.entries, e)
		if len(l.entries) == cap(l.entries) {
			l.full = true
		}
		return
	}
	l.entries[l.head] = e
	l.head = (l.head + 1) % len(l.entries)
}

// Len returns the number of retained entries.
func (l *EventLog) Len() int {
	return len(l.entries)
}

// All returns retained entries in append order, oldest first.
func (l *EventLog) All() []LogEntry {
	out := make([]LogEntry, 0, len(l.entries))
	out = append(out, l.entries[l.head:]...)
	out = append(out, l.entries[:l.head]...)
	return out
}

func (l *EventLog) filter(keep func(LogEntry) bool) []LogEntry {
	var out []LogEntry
	for _, e := range l.All() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// ByType returns retained entries of the given event type.
func (l *EventLog) ByType(t EventType) []LogEntry {
	return l.filter(func(e LogEntry) bool { return e.Type == t })
}

// ByEntity returns retained entries for the given entity.
func (l *EventLog) ByEntity(id string) []LogEntry {
	return l.filter(func(e LogEntry) bool { return e.EntityID == id })
}

// ByLevel returns retained entries at the given level.
func (l *EventLog) ByLevel(level LogLevel) []LogEntry {
	return l.filter(func(e LogEntry) bool { return e.Level == level })
}

// ByTimeRange returns retained entries with from <= Time < to.
func (l *EventLog) ByTimeRange(from, to int64) []LogEntry {
	return l.filter(func(e LogEntry) bool { return e.Time >= from && e.Time < to })
}
