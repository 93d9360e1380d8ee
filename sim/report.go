// Plain-text occupancy report rendered from the periodic samples.

package sim

import (
	"fmt"
	"strings"
)

const chartWidth = 50

// OccupancyChart renders the sampled per-department occupancy series as an
// ASCII bar chart, one row per sample.
func OccupancyChart(points []HourlyPoint) string {
	if len(points) == 0 {
		return "no samples collected\n"
	}
	var b strings.Builder
	b.WriteString("tick      ED                                                 ICU   ward  arrivals\n")
	for _, pt := range points {
		b.WriteString(fmt.Sprintf("%-8d  %s %4.0f%% %4.0f%%  %d\n",
			pt.Tick, bar(pt.EDOccupancy), 100*pt.ICUOccupancy, 100*pt.WardOccupancy, pt.Arrivals))
	}
	return b.String()
}

func bar(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*chartWidth + 0.5)
	return strings.Repeat("#", filled) + strings.Repeat(".", chartWidth-filled)
}

// CompareRuns prints two runs' headline metrics side by side.
func CompareRuns(labelA string, a *Statistics, labelB string, b *Statistics) string {
	var sb strings.Builder
	sumA, sumB := a.Summarize(), b.Summarize()
	sb.WriteString(fmt.Sprintf("%-22s %14s %14s\n", "metric", labelA, labelB))
	row := func(name string, va, vb float64) {
		sb.WriteString(fmt.Sprintf("%-22s %14.1f %14.1f\n", name, va, vb))
	}
	row("arrivals", float64(a.Arrivals), float64(b.Arrivals))
	row("admissions", float64(a.Admissions), float64(b.Admissions))
	row("discharges", float64(a.Discharges), float64(b.Discharges))
	row("transfers", float64(a.Transfers), float64(b.Transfers))
	row("transfer failures", float64(a.TransferFailures), float64(b.TransferFailures))
	row("abandonments", float64(a.Abandonments), float64(b.Abandonments))
	row("avg wait (min)", sumA.WaitMean, sumB.WaitMean)
	row("p95 wait (min)", sumA.WaitP95, sumB.WaitP95)
	row("avg stay (min)", sumA.StayMean, sumB.StayMean)
	return sb.String()
}
