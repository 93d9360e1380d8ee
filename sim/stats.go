// Aggregate statistics for one simulation run. The Statistics object is
// owned exclusively by the Simulator and mutated only through the Record*
// methods called by departments and the transfer manager; nothing shares it.

package sim

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// incrementalMean keeps a running mean without storing every sample.
type incrementalMean struct {
	n    int
	mean float64
}

func (m *incrementalMean) observe(x float64) {
	m.n++
	m.mean += (x - m.mean) / float64(m.n)
}

func (m *incrementalMean) Mean() float64 { return m.mean }
func (m *incrementalMean) Count() int    { return m.n }

// DepartmentStats aggregates per-department counters and means.
type DepartmentStats struct {
	Admissions   int
	Discharges   int
	TransfersOut int
	Abandonments int

	WaitMean incrementalMean // ticks spent on the waiting list
	StayMean incrementalMean // ticks from admission to discharge/transfer
}

// HourlyPoint is one periodic sample of system state.
type HourlyPoint struct {
	Tick          int64
	EDOccupancy   float64
	ICUOccupancy  float64
	WardOccupancy float64
	Arrivals      int // arrivals since the previous sample
	AvgWait       float64
}

// Statistics aggregates everything reported at the end of a run.
type Statistics struct {
	RunID string

	Arrivals         int
	Admissions       int
	Discharges       int
	Transfers        int
	TransferFailures int
	Abandonments     int
	FrozenPatients   int
	ClampedSchedules int

	waitMean         incrementalMean
	stayMean         incrementalMean
	transferWaitMean incrementalMean

	// Raw samples kept for quantile summaries.
	waitSamples []float64
	staySamples []float64

	PerDepartment map[string]*DepartmentStats
	Hourly        []HourlyPoint

	// ResourceUtilization is filled at the end of the run: resource id ->
	// time-weighted occupancy fraction over the whole run.
	ResourceUtilization map[string]float64

	SimEnd int64

	arrivalsThisPeriod int
}

// NewStatistics creates an empty statistics object with a fresh run id.
func NewStatistics() *Statistics {
	return &Statistics{
		RunID:               uuid.NewString(),
		PerDepartment:       make(map[string]*DepartmentStats),
		ResourceUtilization: make(map[string]float64),
	}
}

func (s *Statistics) dept(id string) *DepartmentStats {
	d := s.PerDepartment[id]
	if d == nil {
		d = &DepartmentStats{}
		s.PerDepartment[id] = d
	}
	return d
}

// RecordArrival counts a patient arriving at the hospital.
func (s *Statistics) RecordArrival() {
	s.Arrivals++
	s.arrivalsThisPeriod++
}

// RecordAdmission counts an admission into a department.
func (s *Statistics) RecordAdmission(departmentID string) {
	s.Admissions++
	s.dept(departmentID).Admissions++
}

// RecordWait folds one waiting-list stint into the means.
func (s *Statistics) RecordWait(departmentID string, waitTicks float64) {
	s.waitMean.observe(waitTicks)
	s.waitSamples = append(s.waitSamples, waitTicks)
	s.dept(departmentID).WaitMean.observe(waitTicks)
}

// RecordDischarge folds a completed stay into wait and length-of-stay means.
func (s *Statistics) RecordDischarge(departmentID string, waitTicks, stayTicks float64) {
	s.Discharges++
	d := s.dept(departmentID)
	d.Discharges++
	d.StayMean.observe(stayTicks)
	s.stayMean.observe(stayTicks)
	s.staySamples = append(s.staySamples, stayTicks)
}

// RecordTransferOut counts a stay that ended in a transfer to another
// department.
func (s *Statistics) RecordTransferOut(departmentID string, stayTicks float64) {
	d := s.dept(departmentID)
	d.TransfersOut++
	d.StayMean.observe(stayTicks)
}

// RecordTransfer folds a successful transfer's queue wait into the mean.
func (s *Statistics) RecordTransfer(waitTicks float64) {
	s.Transfers++
	s.transferWaitMean.observe(waitTicks)
}

// RecordTransferFailure counts a transfer dropped after its retry budget.
func (s *Statistics) RecordTransferFailure() {
	s.TransferFailures++
}

// RecordAbandonment counts a patient leaving a waiting list untreated.
func (s *Statistics) RecordAbandonment(departmentID string, waitTicks float64) {
	s.Abandonments++
	s.dept(departmentID).Abandonments++
}

// RecordFrozen counts a patient whose progression froze on an unknown
// workflow id.
func (s *Statistics) RecordFrozen() {
	s.FrozenPatients++
}

// SamplePeriod appends one periodic sample and resets the period's arrival
// counter.
func (s *Statistics) SamplePeriod(tick int64, edOcc, icuOcc, wardOcc float64) {
	s.Hourly = append(s.Hourly, HourlyPoint{
		Tick:          tick,
		EDOccupancy:   edOcc,
		ICUOccupancy:  icuOcc,
		WardOccupancy: wardOcc,
		Arrivals:      s.arrivalsThisPeriod,
		AvgWait:       s.waitMean.Mean(),
	})
	s.arrivalsThisPeriod = 0
}

// AvgWait returns the running mean waiting time in ticks.
func (s *Statistics) AvgWait() float64 { return s.waitMean.Mean() }

// AvgStay returns the running mean length of stay in ticks.
func (s *Statistics) AvgStay() float64 { return s.stayMean.Mean() }

// AvgTransferWait returns the running mean transfer-queue wait in ticks.
func (s *Statistics) AvgTransferWait() float64 { return s.transferWaitMean.Mean() }

// Summary holds distribution summaries of the raw samples.
type Summary struct {
	WaitMean, WaitStdDev, WaitP50, WaitP95 float64
	StayMean, StayStdDev, StayP50, StayP95 float64
}

// Summarize computes distribution summaries over the collected samples.
func (s *Statistics) Summarize() Summary {
	var out Summary
	if len(s.waitSamples) > 0 {
		sorted := append([]float64(nil), s.waitSamples...)
		sort.Float64s(sorted)
		out.WaitMean = stat.Mean(sorted, nil)
		out.WaitStdDev = stat.StdDev(sorted, nil)
		out.WaitP50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		out.WaitP95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}
	if len(s.staySamples) > 0 {
		sorted := append([]float64(nil), s.staySamples...)
		sort.Float64s(sorted)
		out.StayMean = stat.Mean(sorted, nil)
		out.StayStdDev = stat.StdDev(sorted, nil)
		out.StayP50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		out.StayP95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}
	return out
}

// Print displays aggregated metrics at the end of the simulation.
func (s *Statistics) Print() {
	fmt.Println("=== Simulation Statistics ===")
	fmt.Printf("Run                  : %s\n", s.RunID)
	fmt.Printf("Simulated time       : %d ticks (%.1f h)\n", s.SimEnd, float64(s.SimEnd)/60)
	fmt.Printf("Arrivals             : %d\n", s.Arrivals)
	fmt.Printf("Admissions           : %d\n", s.Admissions)
	fmt.Printf("Discharges           : %d\n", s.Discharges)
	fmt.Printf("Transfers            : %d (%d failed)\n", s.Transfers, s.TransferFailures)
	fmt.Printf("Abandonments         : %d\n", s.Abandonments)
	if s.FrozenPatients > 0 {
		fmt.Printf("Frozen patients      : %d\n", s.FrozenPatients)
	}
	sum := s.Summarize()
	fmt.Printf("Avg wait             : %.1f min (p50 %.1f, p95 %.1f)\n", sum.WaitMean, sum.WaitP50, sum.WaitP95)
	fmt.Printf("Avg length of stay   : %.1f min (p50 %.1f, p95 %.1f)\n", sum.StayMean, sum.StayP50, sum.StayP95)
	fmt.Printf("Avg transfer wait    : %.1f min\n", s.AvgTransferWait())

	ids := make([]string, 0, len(s.PerDepartment))
	for id := range s.PerDepartment {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := s.PerDepartment[id]
		fmt.Printf("  [%s] admitted %d, discharged %d, transferred out %d, avg wait %.1f, avg stay %.1f\n",
			id, d.Admissions, d.Discharges, d.TransfersOut, d.WaitMean.Mean(), d.StayMean.Mean())
	}

	if len(s.ResourceUtilization) > 0 {
		rids := make([]string, 0, len(s.ResourceUtilization))
		for id := range s.ResourceUtilization {
			rids = append(rids, id)
		}
		sort.Strings(rids)
		fmt.Println("Resource utilization :")
		for _, id := range rids {
			fmt.Printf("  %-28s %5.1f%%\n", id, 100*s.ResourceUtilization[id])
		}
	}
}
