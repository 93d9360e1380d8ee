// General ward policies: workflow choice by expected length of stay
// (short-stay / standard / extended-care) and a disposition that loops back
// to treatment when a complication develops before discharge.

package sim

import "math/rand"

// WardAdmissionPolicy ranks the ward waiting list with an elderly-care
// adjustment; all ward patients use the general bed pool.
type WardAdmissionPolicy struct{}

func (WardAdmissionPolicy) WaitingPriority(p *Patient) float64 {
	priority := float64(6 - p.Acuity)
	if p.Age >= 65 {
		priority += 1
	}
	return priority
}

func (WardAdmissionPolicy) BedPool(*Patient) string {
	return PoolKeyBed
}

func (WardAdmissionPolicy) Emergency(*Patient) bool {
	return false
}

// WardWorkflowSelector chooses by the patient's expected length of stay:
// under 12 hours short-stay, over 48 hours extended care, standard between.
type WardWorkflowSelector struct{}

func (WardWorkflowSelector) Select(p *Patient) string {
	switch {
	case p.Scores.ExpectedLOS < 720:
		return "short-stay"
	case p.Scores.ExpectedLOS > 2880:
		return "extended-care"
	default:
		return "standard"
	}
}

// WardDispositionPolicy discharges home, with a complication-driven chance
// of looping back to the treatment step first.
type WardDispositionPolicy struct{}

func (WardDispositionPolicy) Decide(p *Patient, rng *rand.Rand) Disposition {
	if rng.Float64() < p.Scores.ComplicationRisk*0.3 {
		return Disposition{Kind: DispositionContinue, LoopTo: "treatment"}
	}
	return Disposition{Kind: DispositionDischarge}
}

// WardWorkflows returns the ward workflow table.
func WardWorkflows() []*Workflow {
	return []*Workflow{
		MustWorkflow("short-stay", []WorkflowStep{
			{Name: "intake", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 20, Next: "treatment"},
			{Name: "treatment", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 60, Next: "discharge-prep"},
			{Name: "discharge-prep", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 30},
		}),
		MustWorkflow("standard", []WorkflowStep{
			{Name: "intake", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 20, Next: "treatment"},
			{Name: "treatment", Requires: ResourceDemand{PoolKeyDoctor: 1, PoolKeyNurse: 1}, Duration: 90, Next: "observation"},
			{Name: "observation", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 240, Next: "discharge-prep"},
			{Name: "discharge-prep", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 30},
		}),
		MustWorkflow("extended-care", []WorkflowStep{
			{Name: "intake", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 20, Next: "treatment"},
			{Name: "treatment", Requires: ResourceDemand{PoolKeyDoctor: 1, PoolKeyNurse: 1}, Duration: 90, Next: "observation"},
			{Name: "observation", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 480, Next: "rehabilitation"},
			{Name: "rehabilitation", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 360, Next: "discharge-prep"},
			{Name: "discharge-prep", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 30},
		}),
	}
}
