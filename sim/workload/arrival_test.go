package workload

import (
	"math/rand"
	"testing"

	"github.com/hospital-sim/hospital-sim/sim"
)

func flatRates(perHour float64) sim.ArrivalConfig {
	var cfg sim.ArrivalConfig
	for i := range cfg.HourlyRates {
		cfg.HourlyRates[i] = perHour
	}
	for i := range cfg.DayOfWeekMultipliers {
		cfg.DayOfWeekMultipliers[i] = 1
	}
	return cfg
}

func TestArrivalProcess_ZeroRateProducesNoArrivals(t *testing.T) {
	p := NewArrivalProcess(flatRates(0), rand.New(rand.NewSource(1)))
	if _, ok := p.NextAfter(0); ok {
		t.Error("zero-rate process produced an arrival")
	}

	// Zero multipliers kill a nonzero hourly curve the same way.
	cfg := flatRates(5)
	cfg.DayOfWeekMultipliers = [7]float64{}
	p = NewArrivalProcess(cfg, rand.New(rand.NewSource(1)))
	if _, ok := p.NextAfter(0); ok {
		t.Error("zero-multiplier process produced an arrival")
	}
}

func TestArrivalProcess_TimesStrictlyAdvance(t *testing.T) {
	p := NewArrivalProcess(flatRates(6), rand.New(rand.NewSource(3)))
	last := int64(0)
	for i := 0; i < 200; i++ {
		next, ok := p.NextAfter(last)
		if !ok {
			t.Fatal("positive-rate process dried up")
		}
		if next <= last {
			t.Fatalf("arrival %d at %d not after %d", i, next, last)
		}
		last = next
	}
}

func TestArrivalProcess_MeanRateTracksConfig(t *testing.T) {
	// 6 per hour over a simulated week: expect about 1008 arrivals.
	p := NewArrivalProcess(flatRates(6), rand.New(rand.NewSource(7)))
	horizon := int64(7 * 24 * 60)
	count := 0
	tick := int64(0)
	for {
		next, ok := p.NextAfter(tick)
		if !ok || next > horizon {
			break
		}
		count++
		tick = next
	}
	want := 6.0 * float64(horizon) / 60
	if float64(count) < want*0.85 || float64(count) > want*1.15 {
		t.Errorf("got %d arrivals, want about %.0f", count, want)
	}
}

func TestArrivalProcess_BusyHoursGetMoreArrivals(t *testing.T) {
	cfg := flatRates(0)
	for h := 0; h < 6; h++ {
		cfg.HourlyRates[h] = 1 // quiet overnight
	}
	for h := 18; h < 24; h++ {
		cfg.HourlyRates[h] = 10 // evening peak
	}
	p := NewArrivalProcess(cfg, rand.New(rand.NewSource(11)))

	quiet, busy := 0, 0
	tick := int64(0)
	horizon := int64(14 * 24 * 60)
	for {
		next, ok := p.NextAfter(tick)
		if !ok || next > horizon {
			break
		}
		switch h := sim.TickHourOfDay(next); {
		case h < 6:
			quiet++
		case h >= 18:
			busy++
		}
		tick = next
	}
	if busy <= quiet*5 {
		t.Errorf("busy hours got %d arrivals vs %d quiet, expected a strong skew", busy, quiet)
	}
}

func TestRateAt_AppliesDayMultiplier(t *testing.T) {
	cfg := flatRates(6)
	cfg.DayOfWeekMultipliers[5] = 2 // Saturday
	p := NewArrivalProcess(cfg, rand.New(rand.NewSource(1)))

	monday := p.RateAt(10 * 60)
	saturday := p.RateAt(5*24*60 + 10*60)
	if saturday != monday*2 {
		t.Errorf("saturday rate %f, want double monday's %f", saturday, monday)
	}
}
