package sim

import (
	"github.com/sirupsen/logrus"
)

// EventScheduler owns the pending-event heap and the monotonic simulation
// clock. DequeueNext is the only place the clock advances, which gives every
// mutation downstream of an event a strict total order.
type EventScheduler struct {
	heap    eventHeap
	clock   int64
	seq     uint64
	clamped int

	// entityScore resolves an entity's own priority contribution
	// (a patient's priority score). Nil means no entity contribution.
	entityScore func(entityID string) float64
}

// NewEventScheduler creates an empty scheduler with the clock at zero.
func NewEventScheduler(entityScore func(entityID string) float64) *EventScheduler {
	return &EventScheduler{
		heap:        make(eventHeap, 0),
		entityScore: entityScore,
	}
}

// Clock returns the current simulation time in ticks.
func (s *EventScheduler) Clock() int64 {
	return s.clock
}

// Len returns the number of pending events.
func (s *EventScheduler) Len() int {
	return s.heap.Len()
}

// ClampedSchedules returns how many schedule calls carried a timestamp
// earlier than the clock and were clamped to "now".
func (s *EventScheduler) ClampedSchedules() int {
	return s.clamped
}

// Schedule enqueues an event. A timestamp earlier than the current clock is
// clamped to "now" and logged as a warning, never rejected. The effective
// priority is the explicit priority plus the entity's own priority score
// (if any) plus the event type's class boost.
func (s *EventScheduler) Schedule(ev Event, explicitPriority float64) EventHandle {
	at := ev.Timestamp()
	if at < s.clock {
		logrus.Warnf("schedule: %s at tick %d is before clock %d, clamping to now", ev.Type(), at, s.clock)
		s.clamped++
		at = s.clock
	}

	effective := explicitPriority + typeClassBoost(ev.Type())
	if s.entityScore != nil && ev.EntityID() != "" {
		effective += s.entityScore(ev.EntityID())
	}

	s.seq++
	entry := &heapEntry{
		event:    ev,
		time:     at,
		priority: effective,
		seq:      s.seq,
	}
	s.heap.push(entry)
	return EventHandle{entry: entry}
}

// Cancel removes a still-pending event by its handle. It returns false, and
// has no effect, once the event has been dequeued or already cancelled.
func (s *EventScheduler) Cancel(h EventHandle) bool {
	return s.heap.remove(h.entry)
}

// DequeueNext pops the next event in (time, -priority, seq) order and
// advances the clock to its effective time. Returns nil when no events
// remain. A dequeued event is never re-enqueued under the same handle.
func (s *EventScheduler) DequeueNext() Event {
	entry := s.heap.popNext()
	if entry == nil {
		return nil
	}
	s.clock = entry.time
	return entry.event
}

// PeekTime returns the effective time of the next pending event and whether
// one exists, without dequeuing it.
func (s *EventScheduler) PeekTime() (int64, bool) {
	entry := s.heap.peek()
	if entry == nil {
		return 0, false
	}
	return entry.time, true
}
