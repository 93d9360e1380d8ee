// Defines the Patient entity and its acuity-driven derived scores.
// All scores are computed once at construction and only change when the
// caller explicitly supplies new attributes via Recompute.

package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// AcuityLevel is the 1-5 triage classification, 1 most severe.
type AcuityLevel int

const (
	AcuityResuscitation AcuityLevel = 1
	AcuityEmergent      AcuityLevel = 2
	AcuityUrgent        AcuityLevel = 3
	AcuityLessUrgent    AcuityLevel = 4
	AcuityNonUrgent     AcuityLevel = 5
)

// ArrivalMode is how the patient reached the hospital.
type ArrivalMode string

const (
	ModeWalkIn     ArrivalMode = "walk-in"
	ModeAmbulance  ArrivalMode = "ambulance"
	ModeHelicopter ArrivalMode = "helicopter"
	ModeTransfer   ArrivalMode = "transfer"
)

// PatientStatus is the lifecycle state of a patient.
type PatientStatus string

const (
	StatusArrived     PatientStatus = "arrived"
	StatusWaiting     PatientStatus = "waiting"
	StatusInTreatment PatientStatus = "in-treatment"
	StatusTransferred PatientStatus = "transferred"
	StatusDischarged  PatientStatus = "discharged"
	StatusAbandoned   PatientStatus = "abandoned"
	StatusFrozen      PatientStatus = "frozen"
)

// Comorbidity is a named pre-existing condition affecting derived scores.
type Comorbidity struct {
	Name     string
	Severity int     // 1 (mild) to 3 (severe)
	Impact   float64 // multiplicative contribution to stay/risk factors
}

// PatientScores holds the values derived from (acuity, age, comorbidities)
// at construction time. Pure data; no field mutates after derivation.
type PatientScores struct {
	AdmissionProbability float64 // 0..0.95
	PriorityScore        float64 // 0..100
	ExpectedLOS          float64 // expected length of stay, in ticks
	ReadmissionRisk      float64 // 0..0.9
	MortalityRisk        float64 // 0..0.9
	ComplicationRisk     float64 // 0..0.9
}

// Patient is a simulation entity. It is created on an arrival event, mutated
// only by the department currently holding it, and removed from the entity
// registry on discharge or waiting-list abandonment.
type Patient struct {
	ID          string
	ArrivalTime int64

	Acuity        AcuityLevel
	Age           int
	Comorbidities []Comorbidity
	Mode          ArrivalMode

	NeedsVentilator bool
	NeedsIsolation  bool

	// Location is the id of the department currently holding the patient
	// (active or waiting), empty before admission and after discharge.
	Location string
	Status   PatientStatus

	WorkflowID string
	StepIndex  int

	// Accumulated time per department id, in ticks.
	WaitTimes  map[string]int64
	TreatTimes map[string]int64

	Scores PatientScores
}

// NewPatient constructs a patient and derives its scores. An empty id gets
// a generated UUID.
func NewPatient(id string, arrivalTime int64, acuity AcuityLevel, age int, comorbidities []Comorbidity, mode ArrivalMode) *Patient {
	if id == "" {
		id = uuid.NewString()
	}
	p := &Patient{
		ID:            id,
		ArrivalTime:   arrivalTime,
		Acuity:        acuity,
		Age:           age,
		Comorbidities: comorbidities,
		Mode:          mode,
		Status:        StatusArrived,
		WaitTimes:     make(map[string]int64),
		TreatTimes:    make(map[string]int64),
	}
	p.Recompute()
	return p
}

// admissionBaseByAcuity is the base admission probability per acuity level.
var admissionBaseByAcuity = [...]float64{0, 0.90, 0.75, 0.55, 0.30, 0.15}

// losBaseByAcuity is the base expected length of stay in ticks (minutes).
var losBaseByAcuity = [...]float64{0, 4320, 2880, 1440, 720, 360}

var (
	readmissionBaseByAcuity  = [...]float64{0, 0.25, 0.20, 0.15, 0.10, 0.05}
	mortalityBaseByAcuity    = [...]float64{0, 0.30, 0.15, 0.08, 0.03, 0.01}
	complicationBaseByAcuity = [...]float64{0, 0.35, 0.25, 0.15, 0.08, 0.04}
)

// arrivalModeBonus contributes to the priority score.
var arrivalModeBonus = map[ArrivalMode]float64{
	ModeHelicopter: 20,
	ModeAmbulance:  15,
	ModeTransfer:   10,
	ModeWalkIn:     0,
}

// Recompute derives all scores from the patient's current attributes.
// Called once by NewPatient; callers invoke it again only after explicitly
// changing acuity, age, or comorbidities.
func (p *Patient) Recompute() {
	acuity := p.Acuity
	if acuity < AcuityResuscitation {
		acuity = AcuityResuscitation
	}
	if acuity > AcuityNonUrgent {
		acuity = AcuityNonUrgent
	}

	comorbidityCount := len(p.Comorbidities)
	comorbidityFactor := 1.0
	for _, c := range p.Comorbidities {
		comorbidityFactor += 0.05 * float64(c.Severity) * maxFloat(c.Impact, 1.0)
	}

	ageFactor := 1.0
	switch {
	case p.Age < 5:
		ageFactor = 1.15
	case p.Age >= 80:
		ageFactor = 1.30
	case p.Age >= 65:
		ageFactor = 1.20
	}

	// Admission probability: base-by-acuity x comorbidity x age, capped.
	p.Scores.AdmissionProbability = capFloat(admissionBaseByAcuity[acuity]*comorbidityFactor*ageFactor, 0.95)

	// Priority score: 120 - 20*acuity + age bonus + 5*comorbidities + mode bonus.
	priority := 120 - 20*float64(acuity)
	switch {
	case p.Age < 5:
		priority += 15
	case p.Age < 18 || p.Age >= 65:
		priority += 10
	}
	priority += 5 * float64(comorbidityCount)
	priority += arrivalModeBonus[p.Mode]
	p.Scores.PriorityScore = capFloat(maxFloat(priority, 0), 100)

	p.Scores.ExpectedLOS = losBaseByAcuity[acuity] * comorbidityFactor * ageFactor

	riskScale := (1 + 0.1*float64(comorbidityCount)) * ageFactor
	p.Scores.ReadmissionRisk = capFloat(readmissionBaseByAcuity[acuity]*riskScale, 0.9)
	p.Scores.MortalityRisk = capFloat(mortalityBaseByAcuity[acuity]*riskScale, 0.9)
	p.Scores.ComplicationRisk = capFloat(complicationBaseByAcuity[acuity]*riskScale, 0.9)
}

// AddWait accumulates waiting time spent in a department.
func (p *Patient) AddWait(departmentID string, ticks int64) {
	p.WaitTimes[departmentID] += ticks
}

// AddTreatment accumulates treatment time spent in a department.
func (p *Patient) AddTreatment(departmentID string, ticks int64) {
	p.TreatTimes[departmentID] += ticks
}

// TotalWait returns the patient's accumulated waiting time across departments.
func (p *Patient) TotalWait() int64 {
	var total int64
	for _, w := range p.WaitTimes {
		total += w
	}
	return total
}

func (p *Patient) String() string {
	return fmt.Sprintf("Patient(ID: %s, Acuity: %d, Status: %s, Location: %q)", p.ID, p.Acuity, p.Status, p.Location)
}

// EntityID implements Entity.
func (p *Patient) EntityID() string { return p.ID }

// EntityKind implements Entity.
func (p *Patient) EntityKind() string { return "patient" }

// Attribute implements Entity for attribute-based registry lookups.
func (p *Patient) Attribute(key string) (string, bool) {
	switch key {
	case "status":
		return string(p.Status), true
	case "location":
		return p.Location, true
	case "mode":
		return string(p.Mode), true
	case "acuity":
		return fmt.Sprintf("%d", p.Acuity), true
	default:
		return "", false
	}
}

func capFloat(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
