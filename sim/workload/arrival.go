// Nonhomogeneous Poisson arrival process. The instantaneous rate follows the
// configured hour-of-day curve scaled by the day-of-week multiplier; samples
// are drawn by thinning against the peak rate.

package workload

import (
	"math"
	"math/rand"

	"github.com/hospital-sim/hospital-sim/sim"
)

// ArrivalProcess samples arrival times, in ticks, from the configured rate
// tables.
type ArrivalProcess struct {
	cfg sim.ArrivalConfig
	rng *rand.Rand

	// peakRate is the maximum per-tick rate, used as the thinning envelope.
	peakRate float64
}

// NewArrivalProcess builds a process over the given rate tables.
func NewArrivalProcess(cfg sim.ArrivalConfig, rng *rand.Rand) *ArrivalProcess {
	peakHourly := 0.0
	for _, r := range cfg.HourlyRates {
		if r > peakHourly {
			peakHourly = r
		}
	}
	peakMult := 0.0
	for _, m := range cfg.DayOfWeekMultipliers {
		if m > peakMult {
			peakMult = m
		}
	}
	return &ArrivalProcess{cfg: cfg, rng: rng, peakRate: peakHourly * peakMult / 60}
}

// RateAt returns the instantaneous arrival rate in patients per tick.
func (a *ArrivalProcess) RateAt(tick int64) float64 {
	return a.cfg.HourlyRates[sim.TickHourOfDay(tick)] *
		a.cfg.DayOfWeekMultipliers[sim.TickDayOfWeek(tick)] / 60
}

// NextAfter samples the first arrival strictly after the given tick. Returns
// false when the rate tables are all zero, meaning no arrival ever occurs.
func (a *ArrivalProcess) NextAfter(tick int64) (int64, bool) {
	if a.peakRate <= 0 {
		return 0, false
	}
	t := float64(tick)
	for {
		t += a.rng.ExpFloat64() / a.peakRate
		candidate := int64(math.Ceil(t))
		if a.RateAt(candidate)/a.peakRate >= a.rng.Float64() {
			if candidate <= tick {
				candidate = tick + 1
			}
			return candidate, true
		}
	}
}
