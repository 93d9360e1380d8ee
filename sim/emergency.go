// Emergency department policies: acuity-driven workflow choice, dedicated
// resuscitation/trauma bays and fast-track beds, and an ED disposition that
// admits upstream (ICU or ward) or discharges home.

package sim

import "math/rand"

// Pool keys shared across department kinds. Departments map these to
// registry pool names; workflow steps reference them in resource demands.
const (
	PoolKeyBed        = "bed"
	PoolKeyDoctor     = "doctor"
	PoolKeyNurse      = "nurse"
	PoolKeyMonitor    = "monitor"
	PoolKeyVentilator = "ventilator"

	// Emergency-specific pools.
	PoolKeyResusBay     = "resus-bay"
	PoolKeyTraumaBay    = "trauma-bay"
	PoolKeyFastTrackBed = "fasttrack-bed"

	// ICU-specific pool.
	PoolKeyIsolationRoom = "isolation-room"
)

// EDAdmissionPolicy routes patients into the ED's bay/bed pools and ranks
// its waiting list.
type EDAdmissionPolicy struct{}

func (EDAdmissionPolicy) WaitingPriority(p *Patient) float64 {
	priority := float64(6 - p.Acuity)
	if p.NeedsVentilator {
		priority += 2
	}
	if p.Mode == ModeHelicopter || p.Mode == ModeAmbulance {
		priority += 1
	}
	return priority
}

func (EDAdmissionPolicy) BedPool(p *Patient) string {
	switch {
	case p.Acuity == AcuityResuscitation:
		return PoolKeyResusBay
	case p.Acuity == AcuityEmergent:
		return PoolKeyTraumaBay
	case p.Acuity >= AcuityLessUrgent:
		return PoolKeyFastTrackBed
	default:
		return PoolKeyBed
	}
}

func (EDAdmissionPolicy) Emergency(p *Patient) bool {
	return p.Acuity <= AcuityEmergent
}

// EDWorkflowSelector picks the ED workflow by acuity:
// resuscitation / trauma / standard / fast-track.
type EDWorkflowSelector struct{}

func (EDWorkflowSelector) Select(p *Patient) string {
	switch {
	case p.Acuity == AcuityResuscitation:
		return "resuscitation"
	case p.Acuity == AcuityEmergent:
		return "trauma"
	case p.Acuity >= AcuityLessUrgent:
		return "fast-track"
	default:
		return "standard"
	}
}

// EDDispositionPolicy decides admit-upstream versus discharge-home using the
// patient's derived admission probability; admitted patients go to the ICU
// when acuity or mortality risk warrants it, otherwise to the ward.
type EDDispositionPolicy struct {
	ICUID  string
	WardID string
}

func (d EDDispositionPolicy) Decide(p *Patient, rng *rand.Rand) Disposition {
	if rng.Float64() >= p.Scores.AdmissionProbability {
		return Disposition{Kind: DispositionDischarge}
	}
	if (p.Acuity <= AcuityEmergent || p.Scores.MortalityRisk > 0.2) && d.ICUID != "" {
		return Disposition{Kind: DispositionTransfer, Target: d.ICUID}
	}
	if d.WardID == "" {
		return Disposition{Kind: DispositionDischarge}
	}
	return Disposition{Kind: DispositionTransfer, Target: d.WardID}
}

// EmergencyWorkflows returns the ED workflow table. Step durations are in
// ticks (simulated minutes) before speed-factor scaling.
func EmergencyWorkflows() []*Workflow {
	return []*Workflow{
		MustWorkflow("resuscitation", []WorkflowStep{
			{Name: "resuscitation", Requires: ResourceDemand{PoolKeyDoctor: 2, PoolKeyNurse: 2}, Duration: 60, Next: "post-resus-monitoring"},
			{Name: "post-resus-monitoring", Requires: ResourceDemand{PoolKeyNurse: 1, PoolKeyMonitor: 1}, Duration: 45},
		}),
		MustWorkflow("trauma", []WorkflowStep{
			{Name: "triage", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 5, Next: "trauma-assessment"},
			{Name: "trauma-assessment", Requires: ResourceDemand{PoolKeyDoctor: 1, PoolKeyNurse: 1}, Duration: 30, Next: "imaging"},
			{Name: "imaging", Requires: ResourceDemand{PoolKeyMonitor: 1}, Duration: 25, Next: "treatment"},
			{Name: "treatment", Requires: ResourceDemand{PoolKeyDoctor: 1}, Duration: 40},
		}),
		MustWorkflow("standard", []WorkflowStep{
			{Name: "triage", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 10, Next: "assessment"},
			{Name: "assessment", Requires: ResourceDemand{PoolKeyDoctor: 1}, Duration: 20, Next: "diagnostics"},
			{Name: "diagnostics", Requires: ResourceDemand{PoolKeyMonitor: 1}, Duration: 30, Next: "treatment"},
			{Name: "treatment", Requires: ResourceDemand{PoolKeyDoctor: 1, PoolKeyNurse: 1}, Duration: 35},
		}),
		MustWorkflow("fast-track", []WorkflowStep{
			{Name: "triage", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 5, Next: "treatment"},
			{Name: "treatment", Requires: ResourceDemand{PoolKeyDoctor: 1}, Duration: 15},
		}),
	}
}
