package sim

import "container/heap"

// heapEntry wraps a scheduled event with its effective ordering key.
// The entry time may differ from the event's own timestamp when the
// scheduler clamped a past timestamp to "now".
type heapEntry struct {
	event    Event
	time     int64   // effective (possibly clamped) execution time
	priority float64 // effective priority, higher dequeues first at equal time
	seq      uint64  // insertion sequence, deterministic tie-breaker
	index    int     // heap index, -1 once dequeued or cancelled
}

// EventHandle identifies a scheduled event for cancellation.
// The zero value is invalid.
type EventHandle struct {
	entry *heapEntry
}

// Pending reports whether the referenced event is still in the queue.
func (h EventHandle) Pending() bool {
	return h.entry != nil && h.entry.index >= 0
}

// eventHeap implements heap.Interface with the composite ordering key
// (time, -priority, seq). Index bookkeeping enables removal by handle.
// See the canonical PriorityQueue example: https://pkg.go.dev/container/heap
type eventHeap []*heapEntry

func (eh eventHeap) Len() int { return len(eh) }

func (eh eventHeap) Less(i, j int) bool {
	a, b := eh[i], eh[j]

	// Primary: time (earlier first)
	if a.time != b.time {
		return a.time < b.time
	}

	// Secondary: effective priority (higher first)
	if a.priority != b.priority {
		return a.priority > b.priority
	}

	// Tertiary: insertion order (earlier first, deterministic tie-breaker)
	return a.seq < b.seq
}

func (eh eventHeap) Swap(i, j int) {
	eh[i], eh[j] = eh[j], eh[i]
	eh[i].index = i
	eh[j].index = j
}

func (eh *eventHeap) Push(x any) {
	entry := x.(*heapEntry)
	entry.index = len(*eh)
	*eh = append(*eh, entry)
}

func (eh *eventHeap) Pop() any {
	old := *eh
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*eh = old[0 : n-1]
	return entry
}

// push adds an entry to the heap.
func (eh *eventHeap) push(entry *heapEntry) {
	heap.Push(eh, entry)
}

// popNext removes and returns the next entry, or nil when empty.
func (eh *eventHeap) popNext() *heapEntry {
	if eh.Len() == 0 {
		return nil
	}
	return heap.Pop(eh).(*heapEntry)
}

// peek returns the next entry without removing it.
func (eh eventHeap) peek() *heapEntry {
	if len(eh) == 0 {
		return nil
	}
	return eh[0]
}

// remove deletes a still-pending entry by its heap index.
func (eh *eventHeap) remove(entry *heapEntry) bool {
	if entry == nil || entry.index < 0 || entry.index >= eh.Len() {
		return false
	}
	heap.Remove(eh, entry.index)
	return true
}
