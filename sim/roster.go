// Staffing roster expansion. Shift cron expressions are evaluated against a
// fixed simulated calendar and turned into paired capacity-change events
// before the run starts, so the roster costs nothing during event dispatch.

package sim

import (
	"time"

	"github.com/robfig/cron/v3"
)

// rosterAnchor pins tick 0 to a Monday midnight so day-of-week cron fields
// and the arrival multipliers line up deterministically across runs.
var rosterAnchor = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

// TickTime converts a tick to its simulated wall-clock instant.
func TickTime(tick int64) time.Time {
	return rosterAnchor.Add(time.Duration(tick) * time.Minute)
}

// TickHourOfDay returns the simulated hour of day (0-23) for a tick.
func TickHourOfDay(tick int64) int {
	return int(tick/60) % 24
}

// TickDayOfWeek returns the simulated weekday for a tick, Monday = 0.
func TickDayOfWeek(tick int64) int {
	return int(tick/(24*60)) % 7
}

// ExpandRoster turns the shift table into shift-change events covering
// [0, horizon). Each cron firing yields one capacity increase at shift start
// and the matching decrease one shift duration later.
func ExpandRoster(shifts []ShiftConfig, horizon int64) ([]*ShiftChangeEvent, error) {
	var events []*ShiftChangeEvent
	end := TickTime(horizon)
	for _, s := range shifts {
		schedule, err := cron.ParseStandard(s.Start)
		if err != nil {
			return nil, err
		}
		// Next is strictly after its argument, so back off one second to
		// include a firing at tick 0.
		at := schedule.Next(rosterAnchor.Add(-time.Second))
		for at.Before(end) {
			tick := int64(at.Sub(rosterAnchor) / time.Minute)
			events = append(events,
				NewShiftChangeEvent(tick, s.ResourceID, s.Role, s.Staff),
				NewShiftChangeEvent(tick+s.DurationTicks, s.ResourceID, s.Role, -s.Staff),
			)
			at = schedule.Next(at)
		}
	}
	return events, nil
}
