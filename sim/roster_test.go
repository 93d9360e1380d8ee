package sim

import "testing"

func TestExpandRoster_PairsStartAndEnd(t *testing.T) {
	shifts := []ShiftConfig{
		{ResourceID: "ed-nurses", Role: "nurse", Start: "0 7 * * *", DurationTicks: 12 * 60, Staff: 8},
	}
	events, err := ExpandRoster(shifts, 2*24*60)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	// Two days, one firing each: a +8 and a -8 per firing.
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}

	first, end := events[0], events[1]
	if first.Timestamp() != 7*60 || first.Delta != 8 {
		t.Errorf("first firing: tick %d delta %d, want 420/+8", first.Timestamp(), first.Delta)
	}
	if end.Timestamp() != 19*60 || end.Delta != -8 {
		t.Errorf("first shift end: tick %d delta %d, want 1140/-8", end.Timestamp(), end.Delta)
	}
	if events[2].Timestamp() != (24+7)*60 {
		t.Errorf("second firing at tick %d, want %d", events[2].Timestamp(), (24+7)*60)
	}

	var sum int
	for _, ev := range events {
		sum += ev.Delta
	}
	if sum != 0 {
		t.Errorf("deltas do not balance: %d", sum)
	}
}

func TestExpandRoster_MidnightFiringIncludesTickZero(t *testing.T) {
	shifts := []ShiftConfig{
		{ResourceID: "r", Role: "nurse", Start: "0 0 * * *", DurationTicks: 60, Staff: 1},
	}
	events, err := ExpandRoster(shifts, 24*60)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(events) == 0 || events[0].Timestamp() != 0 {
		t.Fatalf("midnight firing missing at tick 0: %v", events)
	}
}

func TestExpandRoster_WeekdayFieldUsesMondayAnchor(t *testing.T) {
	// Tick 0 is a Monday; a Saturday-only shift first fires on day 5.
	shifts := []ShiftConfig{
		{ResourceID: "r", Role: "nurse", Start: "0 10 * * SAT", DurationTicks: 60, Staff: 2},
	}
	events, err := ExpandRoster(shifts, 7*24*60)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	want := int64(5*24*60 + 10*60)
	if events[0].Timestamp() != want {
		t.Errorf("saturday firing at tick %d, want %d", events[0].Timestamp(), want)
	}
}

func TestExpandRoster_BadCronFails(t *testing.T) {
	_, err := ExpandRoster([]ShiftConfig{{Start: "not a cron", DurationTicks: 1, Staff: 1}}, 60)
	if err == nil {
		t.Error("bad cron expression accepted")
	}
}

func TestTickCalendarHelpers(t *testing.T) {
	if h := TickHourOfDay(25 * 60); h != 1 {
		t.Errorf("hour of tick 1500 = %d, want 1", h)
	}
	if d := TickDayOfWeek(3 * 24 * 60); d != 3 {
		t.Errorf("day of tick = %d, want 3 (Thursday, Monday=0)", d)
	}
}
