package sim

import (
	"errors"
	"strings"
	"testing"
)

func TestOccupancyChart_RendersOneRowPerSample(t *testing.T) {
	points := []HourlyPoint{
		{Tick: 60, EDOccupancy: 0.5, ICUOccupancy: 0.2, WardOccupancy: 0.9, Arrivals: 4},
		{Tick: 120, EDOccupancy: 1.4, ICUOccupancy: 0, WardOccupancy: 0, Arrivals: 0},
	}
	chart := OccupancyChart(points)
	lines := strings.Split(strings.TrimRight(chart, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if !strings.Contains(lines[1], "#") {
		t.Error("half-full bar has no fill")
	}
	// Over-occupancy clamps to a full bar instead of overflowing the column.
	if !strings.Contains(lines[2], strings.Repeat("#", chartWidth)) {
		t.Error("over-occupancy did not clamp to a full bar")
	}
}

func TestOccupancyChart_EmptySeries(t *testing.T) {
	if got := OccupancyChart(nil); !strings.Contains(got, "no samples") {
		t.Errorf("empty series rendered %q", got)
	}
}

func TestBar_Clamps(t *testing.T) {
	if got := bar(-0.5); strings.Contains(got, "#") {
		t.Error("negative fraction produced fill")
	}
	if got := bar(2.0); strings.Contains(got, ".") {
		t.Error("fraction above 1 left empty cells")
	}
	if len(bar(0.5)) != chartWidth {
		t.Errorf("bar width %d, want %d", len(bar(0.5)), chartWidth)
	}
}

func TestCompareRuns_ShowsBothColumns(t *testing.T) {
	a, b := NewStatistics(), NewStatistics()
	a.Arrivals, b.Arrivals = 100, 120
	a.RecordWait("ed", 30)
	b.RecordWait("ed", 45)

	out := CompareRuns("baseline", a, "surge", b)
	for _, want := range []string{"baseline", "surge", "arrivals", "avg wait"} {
		if !strings.Contains(out, want) {
			t.Errorf("comparison missing %q:\n%s", want, out)
		}
	}
}

type failingPredictor struct{}

func (failingPredictor) Predict(int64) (float64, error) {
	return 0, errors.New("model unavailable")
}

func (failingPredictor) Forecast(int64, int) ([]float64, error) {
	return nil, errors.New("model unavailable")
}

func TestRatePredictor_ReadsTables(t *testing.T) {
	cfg := DefaultConfig().Arrivals
	p := &RatePredictor{Arrivals: cfg}

	got, err := p.Predict(10 * 60) // Monday 10:00
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	want := cfg.HourlyRates[10] * cfg.DayOfWeekMultipliers[0]
	if got != want {
		t.Errorf("rate %f, want %f", got, want)
	}

	fc, err := p.Forecast(0, 4)
	if err != nil || len(fc) != 4 {
		t.Fatalf("forecast: %v, %d points", err, len(fc))
	}
}

func TestPredictOrFallback_DegradesWithoutHalting(t *testing.T) {
	fallback := &RatePredictor{Arrivals: DefaultConfig().Arrivals}
	got := predictOrFallback(failingPredictor{}, fallback, 10*60)
	want, _ := fallback.Predict(10 * 60)
	if got != want {
		t.Errorf("fallback rate %f, want %f", got, want)
	}
}
