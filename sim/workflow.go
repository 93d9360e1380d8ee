package sim

import "fmt"

// ResourceDemand maps a department pool key to the number of units a step
// needs from that pool (e.g. {"nurse": 1, "monitor": 1}).
type ResourceDemand map[string]int

// WorkflowStep is one named stage of a treatment workflow. Next names the
// following step; empty means the workflow completes after this step.
// Steps are always referenced by name, never by raw index, so reordering a
// workflow definition cannot silently retarget a loop-back.
type WorkflowStep struct {
	Name     string
	Requires ResourceDemand
	Duration int64 // ticks, before speed-factor scaling
	Next     string
}

// Workflow is an ordered list of steps with by-name resolution.
type Workflow struct {
	ID    string
	Steps []WorkflowStep

	index map[string]int
}

// NewWorkflow validates and builds a workflow. Step names must be unique and
// every Next reference must resolve; a broken reference is a definition
// error caught here, not at patient runtime.
func NewWorkflow(id string, steps []WorkflowStep) (*Workflow, error) {
	if id == "" {
		return nil, fmt.Errorf("workflow: id cannot be empty")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("workflow %q: needs at least one step", id)
	}
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.Name == "" {
			return nil, fmt.Errorf("workflow %q: step %d has no name", id, i)
		}
		if _, dup := index[s.Name]; dup {
			return nil, fmt.Errorf("workflow %q: duplicate step name %q", id, s.Name)
		}
		if s.Duration < 0 {
			return nil, fmt.Errorf("workflow %q: step %q has negative duration", id, s.Name)
		}
		index[s.Name] = i
	}
	for _, s := range steps {
		if s.Next == "" {
			continue
		}
		if _, ok := index[s.Next]; !ok {
			return nil, fmt.Errorf("workflow %q: step %q references unknown next step %q", id, s.Name, s.Next)
		}
	}
	return &Workflow{ID: id, Steps: steps, index: index}, nil
}

// MustWorkflow builds a workflow and panics on a definition error. Intended
// for the built-in workflow tables, which are validated by tests.
func MustWorkflow(id string, steps []WorkflowStep) *Workflow {
	w, err := NewWorkflow(id, steps)
	if err != nil {
		panic(err)
	}
	return w
}

// Len returns the number of steps.
func (w *Workflow) Len() int {
	return len(w.Steps)
}

// StepAt returns the step at index i and whether i is in bounds.
func (w *Workflow) StepAt(i int) (WorkflowStep, bool) {
	if i < 0 || i >= len(w.Steps) {
		return WorkflowStep{}, false
	}
	return w.Steps[i], true
}

// IndexOf resolves a step name to its index.
func (w *Workflow) IndexOf(name string) (int, bool) {
	i, ok := w.index[name]
	return i, ok
}

// NextIndex returns the index of the step following step i, or done=true
// when step i completes the workflow.
func (w *Workflow) NextIndex(i int) (next int, done bool) {
	step, ok := w.StepAt(i)
	if !ok || step.Next == "" {
		return 0, true
	}
	// Validated at construction.
	return w.index[step.Next], false
}
