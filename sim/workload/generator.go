// Synthetic patient generation. The generator draws a patient population
// from the configured acuity, age, arrival-mode, and comorbidity
// distributions and feeds the driver one arrival event at a time.

package workload

import (
	"math/rand"

	"github.com/hospital-sim/hospital-sim/sim"
)

// comorbidityCatalog is the candidate condition set sampled per patient.
var comorbidityCatalog = []sim.Comorbidity{
	{Name: "diabetes", Severity: 2, Impact: 1.2},
	{Name: "hypertension", Severity: 1, Impact: 1.1},
	{Name: "copd", Severity: 2, Impact: 1.3},
	{Name: "heart-failure", Severity: 3, Impact: 1.5},
	{Name: "renal-disease", Severity: 2, Impact: 1.3},
	{Name: "immunocompromised", Severity: 3, Impact: 1.4},
}

// Generator implements sim.ArrivalSource over the configured distributions.
type Generator struct {
	workload sim.WorkloadConfig
	entry    string
	process  *ArrivalProcess

	// patientRNG is separate from the arrival process stream so the patient
	// mix is unchanged when the arrival pattern changes.
	patientRNG *rand.Rand
}

// NewGenerator builds a generator for a run config. arrivalRNG drives the
// arrival process, patientRNG the patient attribute draws.
func NewGenerator(cfg *sim.SimulationConfig, arrivalRNG, patientRNG *rand.Rand) *Generator {
	return &Generator{
		workload:   cfg.Workload,
		entry:      cfg.EntryDepartment,
		process:    NewArrivalProcess(cfg.Arrivals, arrivalRNG),
		patientRNG: patientRNG,
	}
}

// Next samples the next arrival after the given tick. Returns false when the
// arrival rate is zero everywhere.
func (g *Generator) Next(after int64) (*sim.PatientArrivalEvent, bool) {
	at, ok := g.process.NextAfter(after)
	if !ok {
		return nil, false
	}
	p := g.NewPatient(at)
	return sim.NewPatientArrivalEvent(at, p, g.entry), true
}

// NewPatient draws one patient from the configured distributions.
func (g *Generator) NewPatient(arrivalTime int64) *sim.Patient {
	rng := g.patientRNG
	acuity := sim.AcuityLevel(1 + weightedIndex(rng, g.workload.AcuityWeights[:]))
	mode := []sim.ArrivalMode{sim.ModeWalkIn, sim.ModeAmbulance, sim.ModeHelicopter, sim.ModeTransfer}[weightedIndex(rng, g.workload.ModeWeights[:])]
	age := sampleAge(rng)

	var comorbidities []sim.Comorbidity
	for _, c := range comorbidityCatalog {
		prob := g.workload.ComorbidityProb
		if age >= 65 {
			prob *= 1.8
		}
		if rng.Float64() < prob {
			comorbidities = append(comorbidities, c)
		}
	}

	p := sim.NewPatient("", arrivalTime, acuity, age, comorbidities, mode)
	if acuity <= sim.AcuityEmergent {
		p.NeedsVentilator = rng.Float64() < g.workload.VentilatorProb
		p.NeedsIsolation = rng.Float64() < g.workload.IsolationProb
	}
	return p
}

// Backlog draws n patients for seeding a waiting list at tick zero.
func (g *Generator) Backlog(n int) []*sim.Patient {
	out := make([]*sim.Patient, n)
	for i := range out {
		out[i] = g.NewPatient(0)
	}
	return out
}

// sampleAge draws from a rough population pyramid: a pediatric band, a wide
// adult band, and an elderly band that skews ED demographics upward.
func sampleAge(rng *rand.Rand) int {
	switch r := rng.Float64(); {
	case r < 0.15:
		return rng.Intn(18)
	case r < 0.70:
		return 18 + rng.Intn(47)
	default:
		return 65 + rng.Intn(35)
	}
}

// weightedIndex picks an index proportionally to the weights. All-zero
// weights degrade to the last index.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return len(weights) - 1
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}
