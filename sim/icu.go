// Intensive-care policies. The ICU's defining behavior is the ventilator
// weaning loop: a weaning attempt that fails sends the patient back to the
// "stabilization" step, by name, and the workflow cannot complete until a
// weaning attempt succeeds.

package sim

import "math/rand"

// ICUAdmissionPolicy ranks the ICU waiting list with ventilation and
// isolation adjustments and routes isolation cases to isolation rooms.
type ICUAdmissionPolicy struct{}

func (ICUAdmissionPolicy) WaitingPriority(p *Patient) float64 {
	priority := float64(6 - p.Acuity)
	if p.NeedsVentilator {
		priority += 2
	}
	if p.NeedsIsolation {
		priority += 1.5
	}
	return priority
}

func (ICUAdmissionPolicy) BedPool(p *Patient) string {
	if p.NeedsIsolation {
		return PoolKeyIsolationRoom
	}
	return PoolKeyBed
}

// Emergency is always true for ICU admissions: critical patients may draw
// on the reserved capacity subset.
func (ICUAdmissionPolicy) Emergency(*Patient) bool {
	return true
}

// ICUWorkflowSelector picks ventilator support for ventilated patients and
// general critical care otherwise.
type ICUWorkflowSelector struct{}

func (ICUWorkflowSelector) Select(p *Patient) string {
	if p.NeedsVentilator {
		return "ventilator-support"
	}
	return "critical-care"
}

// ICUDispositionPolicy steps patients down to the ward once stable. For
// ventilated patients the weaning attempt succeeds with probability
// 1 - complication risk; failure loops back to stabilization.
type ICUDispositionPolicy struct {
	WardID string
}

func (d ICUDispositionPolicy) Decide(p *Patient, rng *rand.Rand) Disposition {
	if p.WorkflowID == "ventilator-support" {
		if rng.Float64() < p.Scores.ComplicationRisk {
			return Disposition{Kind: DispositionContinue, LoopTo: "stabilization"}
		}
	}
	if d.WardID == "" {
		return Disposition{Kind: DispositionDischarge}
	}
	return Disposition{Kind: DispositionTransfer, Target: d.WardID}
}

// ICUWorkflows returns the intensive-care workflow table.
func ICUWorkflows() []*Workflow {
	return []*Workflow{
		MustWorkflow("ventilator-support", []WorkflowStep{
			{Name: "admission-assessment", Requires: ResourceDemand{PoolKeyDoctor: 1, PoolKeyNurse: 1}, Duration: 30, Next: "stabilization"},
			{Name: "stabilization", Requires: ResourceDemand{PoolKeyNurse: 1, PoolKeyVentilator: 1}, Duration: 120, Next: "intensive-monitoring"},
			{Name: "intensive-monitoring", Requires: ResourceDemand{PoolKeyNurse: 1, PoolKeyVentilator: 1, PoolKeyMonitor: 1}, Duration: 240, Next: "weaning"},
			{Name: "weaning", Requires: ResourceDemand{PoolKeyDoctor: 1, PoolKeyNurse: 1, PoolKeyVentilator: 1}, Duration: 90},
		}),
		MustWorkflow("critical-care", []WorkflowStep{
			{Name: "admission-assessment", Requires: ResourceDemand{PoolKeyDoctor: 1, PoolKeyNurse: 1}, Duration: 30, Next: "stabilization"},
			{Name: "stabilization", Requires: ResourceDemand{PoolKeyNurse: 1}, Duration: 120, Next: "intensive-monitoring"},
			{Name: "intensive-monitoring", Requires: ResourceDemand{PoolKeyNurse: 1, PoolKeyMonitor: 1}, Duration: 360},
		}),
	}
}
