package sim

import "testing"

func TestNewWorkflow_ValidatesDefinitions(t *testing.T) {
	cases := []struct {
		name  string
		id    string
		steps []WorkflowStep
	}{
		{"empty id", "", []WorkflowStep{{Name: "a"}}},
		{"no steps", "wf", nil},
		{"unnamed step", "wf", []WorkflowStep{{Name: ""}}},
		{"duplicate step", "wf", []WorkflowStep{{Name: "a", Next: "a"}, {Name: "a"}}},
		{"negative duration", "wf", []WorkflowStep{{Name: "a", Duration: -1}}},
		{"dangling next", "wf", []WorkflowStep{{Name: "a", Next: "ghost"}}},
	}
	for _, tc := range cases {
		if _, err := NewWorkflow(tc.id, tc.steps); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestWorkflow_StepNavigation(t *testing.T) {
	w := MustWorkflow("wf", []WorkflowStep{
		{Name: "triage", Next: "treat"},
		{Name: "treat", Next: "observe"},
		{Name: "observe"},
	})

	if idx, ok := w.IndexOf("treat"); !ok || idx != 1 {
		t.Errorf("IndexOf(treat) = %d, %v", idx, ok)
	}
	if _, ok := w.IndexOf("ghost"); ok {
		t.Error("IndexOf resolved unknown step")
	}

	if next, done := w.NextIndex(0); done || next != 1 {
		t.Errorf("NextIndex(0) = %d, done=%v", next, done)
	}
	if _, done := w.NextIndex(2); !done {
		t.Error("final step did not report done")
	}
	if _, done := w.NextIndex(99); !done {
		t.Error("out-of-bounds index did not report done")
	}

	if _, ok := w.StepAt(-1); ok {
		t.Error("StepAt(-1) in bounds")
	}
}

func TestBuiltinWorkflowTables_AreWellFormed(t *testing.T) {
	// MustWorkflow panics on a bad definition, so building the tables is the
	// assertion; also verify every loop-back target used by a disposition
	// policy resolves.
	tables := map[string][]*Workflow{
		"emergency": EmergencyWorkflows(),
		"icu":       ICUWorkflows(),
		"ward":      WardWorkflows(),
	}
	for dept, wfs := range tables {
		if len(wfs) == 0 {
			t.Errorf("%s: empty workflow table", dept)
		}
	}

	for _, w := range ICUWorkflows() {
		if w.ID != "ventilator-support" {
			continue
		}
		if _, ok := w.IndexOf("stabilization"); !ok {
			t.Error("ventilator-support missing the stabilization weaning loop target")
		}
	}
	for _, w := range WardWorkflows() {
		if _, ok := w.IndexOf("treatment"); !ok {
			t.Errorf("ward workflow %s missing the treatment complication loop target", w.ID)
		}
	}
}
