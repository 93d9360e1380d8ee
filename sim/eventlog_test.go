package sim

import (
	"fmt"
	"testing"
)

func TestEventLog_AppendAndQuery(t *testing.T) {
	l := NewEventLog(100)
	l.Append(LogEntry{Time: 10, Level: LevelInfo, Type: EventTypeArrival, EntityID: "p1", Message: "arrived"})
	l.Append(LogEntry{Time: 20, Level: LevelWarn, Type: EventTypeTransferQueue, EntityID: "p1", Message: "queued"})
	l.Append(LogEntry{Time: 30, Level: LevelInfo, Type: EventTypeArrival, EntityID: "p2", Message: "arrived"})

	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
	if got := l.ByType(EventTypeArrival); len(got) != 2 {
		t.Errorf("ByType(arrival) = %d entries, want 2", len(got))
	}
	if got := l.ByEntity("p1"); len(got) != 2 {
		t.Errorf("ByEntity(p1) = %d entries, want 2", len(got))
	}
	if got := l.ByLevel(LevelWarn); len(got) != 1 || got[0].Message != "queued" {
		t.Errorf("ByLevel(warn) = %v", got)
	}
	// Half-open range: entry at 30 excluded.
	if got := l.ByTimeRange(10, 30); len(got) != 2 {
		t.Errorf("ByTimeRange(10,30) = %d entries, want 2", len(got))
	}
}

func TestEventLog_RingEvictsOldest(t *testing.T) {
	l := NewEventLog(3)
	for i := 0; i < 5; i++ {
		l.Append(LogEntry{Time: int64(i), EntityID: fmt.Sprintf("p%d", i)})
	}

	if l.Len() != 3 {
		t.Fatalf("Len = %d, want capacity 3", l.Len())
	}
	all := l.All()
	for i, want := range []int64{2, 3, 4} {
		if all[i].Time != want {
			t.Errorf("position %d: time %d, want %d", i, all[i].Time, want)
		}
	}
	if got := l.ByEntity("p0"); len(got) != 0 {
		t.Error("evicted entry still queryable")
	}
}

func TestEventLog_DefaultCapacity(t *testing.T) {
	l := NewEventLog(0)
	l.Append(LogEntry{Time: 1})
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}
