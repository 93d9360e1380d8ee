// The department workflow engine. A Department is defined by composition:
// the base active-map/waiting-list/pool structure below plus injected
// AdmissionPolicy, WorkflowSelector, and DispositionPolicy values supplied
// by the department kind (emergency.go, icu.go, ward.go). Kind-specific
// pools (trauma bays, isolation rooms, fast-track beds) are referenced by
// pool key, never by subtype field.

package sim

import (
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
)

// DepartmentKind identifies the department specialization.
type DepartmentKind string

const (
	DeptEmergency DepartmentKind = "emergency"
	DeptICU       DepartmentKind = "icu"
	DeptWard      DepartmentKind = "ward"
)

// DispositionKind is the outcome decision at workflow completion.
type DispositionKind int

const (
	DispositionDischarge DispositionKind = iota
	DispositionTransfer
	DispositionContinue
)

// Disposition is the decision applied when a patient's workflow completes.
type Disposition struct {
	Kind DispositionKind

	// LoopTo names the step to return to for DispositionContinue
	// (e.g. back to "stabilization" after failed ventilator weaning).
	LoopTo string

	// Target is the destination department id for DispositionTransfer.
	Target string
}

// AdmissionPolicy supplies the kind-specific parts of admission: which pool
// holds the patient's bed, the waiting-list ranking, and whether the
// allocation may dip into the emergency reserve.
type AdmissionPolicy interface {
	WaitingPriority(p *Patient) float64
	BedPool(p *Patient) string
	Emergency(p *Patient) bool
}

// WorkflowSelector chooses a workflow id for an admitted patient.
type WorkflowSelector interface {
	Select(p *Patient) string
}

// DispositionPolicy decides what happens when a workflow completes.
// Implementations draw randomness only from the supplied rng so runs stay
// reproducible.
type DispositionPolicy interface {
	Decide(p *Patient, rng *rand.Rand) Disposition
}

// AdmissionOpts modifies AdmitPatient behavior.
type AdmissionOpts struct {
	// Force admits even when the department is at capacity, drawing on the
	// emergency reserve if needed.
	Force bool

	// NoWaitlist makes a failed admission return false instead of pushing
	// the patient onto the waiting list. Used by the transfer path, where a
	// patient must never sit on a target waiting list while still active in
	// the source department.
	NoWaitlist bool
}

// activeRecord tracks one admitted patient's progress.
type activeRecord struct {
	Patient       *Patient
	BedResourceID string
	WorkflowID    string
	StepIndex     int
	AdmissionTime int64
	StepStarted   int64
	Status        PatientStatus

	// stepAllocs holds the allocations made for the in-flight step,
	// released amount for amount when the step completes. A step drawing on
	// the admission bed's pool must never release the bed itself.
	stepAllocs []stepAlloc
}

// stepAlloc records one resource allocation made for a workflow step.
type stepAlloc struct {
	ResourceID string
	Amount     int
}

// waitingEntry is one waiting-list slot, ranked by priority then FIFO.
type waitingEntry struct {
	Patient     *Patient
	Priority    float64
	EnqueueTime int64
	seq         uint64
}

// Department holds the state machine for one hospital department.
// A patient is in exactly one department's active map or on exactly one
// waiting list, never both, never in two departments at once.
type Department struct {
	ID       string
	Kind     DepartmentKind
	Capacity int

	admission   AdmissionPolicy
	selector    WorkflowSelector
	disposition DispositionPolicy

	resources *ResourceRegistry
	pools     map[string]string // pool key -> registry pool name
	workflows map[string]*Workflow

	active  map[string]*activeRecord
	waiting []*waitingEntry
	waitSeq uint64

	// admitRetryPending suppresses duplicate admission-retry events; a
	// single pending AdmissionRetryEvent serves the whole waiting list.
	admitRetryPending bool

	// pollInterval is the fixed retry delay when a step's resource
	// requirements cannot be satisfied yet.
	pollInterval int64
}

// NewDepartment builds a department shell; pools and workflows are attached
// with RegisterPool and AddWorkflow.
func NewDepartment(id string, kind DepartmentKind, capacity int, resources *ResourceRegistry,
	admission AdmissionPolicy, selector WorkflowSelector, disposition DispositionPolicy, pollInterval int64) *Department {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Department{
		ID:           id,
		Kind:         kind,
		Capacity:     capacity,
		admission:    admission,
		selector:     selector,
		disposition:  disposition,
		resources:    resources,
		pools:        make(map[string]string),
		workflows:    make(map[string]*Workflow),
		active:       make(map[string]*activeRecord),
		pollInterval: pollInterval,
	}
}

// DefaultPollInterval is the step-retry delay in ticks (simulated minutes).
const DefaultPollInterval = 10

// RegisterPool maps a department pool key (e.g. "bed", "trauma-bay",
// "nurse") to a pool name in the resource registry.
func (d *Department) RegisterPool(key, registryPool string) {
	d.pools[key] = registryPool
}

// AddWorkflow adds a workflow to the department's table.
func (d *Department) AddWorkflow(w *Workflow) {
	d.workflows[w.ID] = w
}

// IsFull reports whether the active-patient count has reached capacity.
func (d *Department) IsFull() bool {
	return len(d.active) >= d.Capacity
}

// ActiveCount returns the number of admitted patients.
func (d *Department) ActiveCount() int {
	return len(d.active)
}

// WaitingLen returns the waiting-list length.
func (d *Department) WaitingLen() int {
	return len(d.waiting)
}

// Occupancy returns active patients divided by capacity.
func (d *Department) Occupancy() float64 {
	if d.Capacity == 0 {
		return 0
	}
	return float64(len(d.active)) / float64(d.Capacity)
}

// CanAdmit reports, without side effects, whether an admission attempt for
// this patient would succeed right now.
func (d *Department) CanAdmit(p *Patient, now int64) bool {
	if d.IsFull() {
		return false
	}
	pool := d.pools[d.admission.BedPool(p)]
	opts := AllocateOpts{Emergency: d.admission.Emergency(p)}
	return d.resources.PoolAvailable(pool, now, opts) >= 1
}

// AdmitPatient admits a patient or, when the department is full (or no bed
// is free) and Force is unset, appends them to the priority-ranked waiting
// list. Returns true only on actual admission.
func (d *Department) AdmitPatient(sim *Simulator, p *Patient, opts AdmissionOpts, now int64) bool {
	if _, exists := d.active[p.ID]; exists {
		logrus.Warnf("[%s] admit: patient %s already active", d.ID, p.ID)
		return false
	}

	if d.IsFull() && !opts.Force {
		if opts.NoWaitlist {
			return false
		}
		d.enqueueWaiting(sim, p, now)
		return false
	}

	allocOpts := AllocateOpts{Emergency: d.admission.Emergency(p) || opts.Force}
	pool := d.pools[d.admission.BedPool(p)]
	bedID, ok := d.resources.AllocateFromPool(pool, p.ID, 1, now, allocOpts)
	if !ok {
		if opts.NoWaitlist {
			return false
		}
		d.enqueueWaiting(sim, p, now)
		return false
	}

	rec := &activeRecord{
		Patient:       p,
		BedResourceID: bedID,
		AdmissionTime: now,
		Status:        StatusInTreatment,
	}
	d.active[p.ID] = rec
	p.Location = d.ID
	p.Status = StatusInTreatment
	sim.Stats.RecordAdmission(d.ID)
	sim.Log.Append(LogEntry{Time: now, Level: LevelInfo, Type: EventTypeArrival, EntityID: p.ID,
		Message: "admitted to " + d.ID})

	d.startWorkflow(sim, rec, now)
	return true
}

// enqueueWaiting inserts the patient into the waiting list, ranked by
// (6 - acuity) plus the kind-specific adjustment, FIFO within equal rank.
func (d *Department) enqueueWaiting(sim *Simulator, p *Patient, now int64) {
	d.waitSeq++
	entry := &waitingEntry{
		Patient:     p,
		Priority:    d.admission.WaitingPriority(p),
		EnqueueTime: now,
		seq:         d.waitSeq,
	}
	idx := sort.Search(len(d.waiting), func(i int) bool {
		if d.waiting[i].Priority != entry.Priority {
			return d.waiting[i].Priority < entry.Priority
		}
		return d.waiting[i].seq > entry.seq
	})
	d.waiting = append(d.waiting, nil)
	copy(d.waiting[idx+1:], d.waiting[idx:])
	d.waiting[idx] = entry

	p.Location = d.ID
	p.Status = StatusWaiting
	logrus.Debugf("[%s] patient %s waiting, queue depth %d", d.ID, p.ID, len(d.waiting))

	// Low-acuity patients may give up; patience is sampled once here.
	if p.Acuity >= AcuityLessUrgent && sim != nil {
		patience := int64(180 + sim.rngFor(SubsystemAbandonment).Intn(240))
		sim.schedule(NewWaitingAbandonEvent(now+patience, p.ID, d.ID), 0)
	}
}

// startWorkflow selects a workflow for a freshly admitted patient and
// schedules its first step. An unknown workflow id freezes the patient's
// progression but must not halt the run.
func (d *Department) startWorkflow(sim *Simulator, rec *activeRecord, now int64) {
	p := rec.Patient
	wfID := d.selector.Select(p)
	if _, ok := d.workflows[wfID]; !ok {
		logrus.Errorf("[%s] unknown workflow %q for patient %s; freezing patient", d.ID, wfID, p.ID)
		rec.Status = StatusFrozen
		p.Status = StatusFrozen
		sim.Stats.RecordFrozen()
		sim.Log.Append(LogEntry{Time: now, Level: LevelError, Type: EventTypeStepStart, EntityID: p.ID,
			Message: "unknown workflow " + wfID + " in " + d.ID})
		return
	}
	rec.WorkflowID = wfID
	rec.StepIndex = 0
	p.WorkflowID = wfID
	p.StepIndex = 0
	sim.schedule(NewStepStartEvent(now, p.ID, d.ID), 0)
}

// ProcessStep attempts the patient's current step. If the step's resource
// requirements cannot all be satisfied, nothing is held and a retry is
// self-scheduled one poll interval later; the engine never blocks.
func (d *Department) ProcessStep(sim *Simulator, patientID string, now int64) {
	rec := d.active[patientID]
	if rec == nil || rec.Status == StatusFrozen {
		logrus.Debugf("[%s] step start for absent/frozen patient %s, ignoring", d.ID, patientID)
		return
	}
	wf := d.workflows[rec.WorkflowID]
	step, ok := wf.StepAt(rec.StepIndex)
	if !ok {
		logrus.Errorf("[%s] patient %s step index %d out of bounds for workflow %s; freezing",
			d.ID, patientID, rec.StepIndex, rec.WorkflowID)
		rec.Status = StatusFrozen
		rec.Patient.Status = StatusFrozen
		sim.Stats.RecordFrozen()
		return
	}

	emergency := d.admission.Emergency(rec.Patient)
	allocated := make([]stepAlloc, 0, len(step.Requires))
	for _, key := range sortedDemandKeys(step.Requires) {
		pool := d.pools[key]
		resID, got := d.resources.AllocateFromPool(pool, patientID, step.Requires[key], now, AllocateOpts{Emergency: emergency})
		if !got {
			// Roll back and poll again later. The units were never
			// occupied, so they skip turnover.
			for _, sa := range allocated {
				d.resources.ReleaseUnits(sa.ResourceID, patientID, sa.Amount, now, ReleaseOpts{SkipTurnover: true})
			}
			logrus.Debugf("[%s] step %q blocked on pool %q for patient %s, retrying in %d ticks",
				d.ID, step.Name, key, patientID, d.pollInterval)
			sim.schedule(NewStepStartEvent(now+d.pollInterval, patientID, d.ID), 0)
			return
		}
		allocated = append(allocated, stepAlloc{ResourceID: resID, Amount: step.Requires[key]})
	}

	rec.stepAllocs = allocated
	rec.StepStarted = now
	duration := sim.scaleDuration(step.Duration)
	sim.schedule(NewStepCompleteEvent(now+duration, patientID, d.ID, step.Name), 0)
}

// CompleteStep releases the step's resources and advances the patient, or
// completes the workflow after the final step.
func (d *Department) CompleteStep(sim *Simulator, patientID, stepName string, now int64) {
	rec := d.active[patientID]
	if rec == nil || rec.Status == StatusFrozen {
		return
	}
	wf := d.workflows[rec.WorkflowID]
	step, ok := wf.StepAt(rec.StepIndex)
	if !ok || step.Name != stepName {
		logrus.Warnf("[%s] stale completion %q for patient %s (current %q), ignoring",
			d.ID, stepName, patientID, step.Name)
		return
	}

	for _, sa := range rec.stepAllocs {
		d.resources.ReleaseUnits(sa.ResourceID, patientID, sa.Amount, now, ReleaseOpts{})
	}
	rec.stepAllocs = nil
	rec.Patient.AddTreatment(d.ID, now-rec.StepStarted)

	next, done := wf.NextIndex(rec.StepIndex)
	if done {
		d.completeWorkflow(sim, rec, now)
		return
	}
	rec.StepIndex = next
	rec.Patient.StepIndex = next
	sim.schedule(NewStepStartEvent(now, patientID, d.ID), 0)
}

// completeWorkflow applies the kind-specific disposition rule.
func (d *Department) completeWorkflow(sim *Simulator, rec *activeRecord, now int64) {
	p := rec.Patient
	disp := d.disposition.Decide(p, sim.rngFor(SubsystemDisposition))
	switch disp.Kind {
	case DispositionContinue:
		wf := d.workflows[rec.WorkflowID]
		idx, ok := wf.IndexOf(disp.LoopTo)
		if !ok {
			logrus.Errorf("[%s] disposition loop target %q not in workflow %s; discharging patient %s",
				d.ID, disp.LoopTo, rec.WorkflowID, p.ID)
			d.DischargePatient(sim, p.ID, "", now)
			return
		}
		rec.StepIndex = idx
		p.StepIndex = idx
		logrus.Debugf("[%s] patient %s loops back to step %q", d.ID, p.ID, disp.LoopTo)
		sim.schedule(NewStepStartEvent(now, p.ID, d.ID), 0)

	case DispositionTransfer:
		sim.Manager.RequestTransfer(sim, p, d, disp.Target, now)

	case DispositionDischarge:
		d.DischargePatient(sim, p.ID, "", now)
	}
}

// DischargePatient releases the patient's bed (starting its turnover) and
// any step resources, removes the patient from the active map, reports
// wait/stay statistics, and backfills from the waiting list in the same
// processing pass. An empty destination means discharge home, which also
// purges the patient from the entity registry.
func (d *Department) DischargePatient(sim *Simulator, patientID, destination string, now int64) bool {
	rec := d.active[patientID]
	if rec == nil {
		return false
	}
	for _, sa := range rec.stepAllocs {
		d.resources.ReleaseUnits(sa.ResourceID, patientID, sa.Amount, now, ReleaseOpts{})
	}
	rec.stepAllocs = nil
	d.resources.Release(rec.BedResourceID, patientID, now)
	delete(d.active, patientID)

	p := rec.Patient
	stay := now - rec.AdmissionTime
	if destination == "" {
		p.Status = StatusDischarged
		p.Location = ""
		sim.Stats.RecordDischarge(d.ID, float64(p.WaitTimes[d.ID]), float64(stay))
		sim.Entities.Remove(patientID)
		sim.Log.Append(LogEntry{Time: now, Level: LevelInfo, Type: EventTypeStepComplete, EntityID: patientID,
			Message: "discharged from " + d.ID})
	} else {
		p.Status = StatusTransferred
		p.Location = ""
		sim.Stats.RecordTransferOut(d.ID, float64(stay))
	}

	d.pullFromWaiting(sim, now)
	return true
}

// pullFromWaiting admits waiting patients while capacity and beds allow,
// highest priority first.
func (d *Department) pullFromWaiting(sim *Simulator, now int64) {
	for len(d.waiting) > 0 && !d.IsFull() {
		entry := d.waiting[0]
		d.waiting = d.waiting[1:]
		p := entry.Patient
		if d.AdmitPatient(sim, p, AdmissionOpts{NoWaitlist: true}, now) {
			waited := now - entry.EnqueueTime
			p.AddWait(d.ID, waited)
			sim.Stats.RecordWait(d.ID, float64(waited))
			continue
		}
		// No bed free yet (e.g. turnover in progress): put the entry back
		// and book a retry. Without it a patient could sit forever on a
		// list nothing else drains.
		d.waiting = append([]*waitingEntry{entry}, d.waiting...)
		p.Status = StatusWaiting
		p.Location = d.ID
		d.scheduleAdmissionRetry(sim, p, now)
		break
	}
}

// scheduleAdmissionRetry books one waiting-list retry after a blocked
// backfill: at the earliest turnover window end in the head patient's bed
// pool, or one poll interval out when nothing is in turnover.
func (d *Department) scheduleAdmissionRetry(sim *Simulator, p *Patient, now int64) {
	if d.admitRetryPending {
		return
	}
	at := now + d.pollInterval
	pool := d.pools[d.admission.BedPool(p)]
	if ready, ok := d.resources.PoolNextReady(pool, now); ok {
		at = ready
	}
	d.admitRetryPending = true
	sim.schedule(NewAdmissionRetryEvent(at, d.ID), 0)
}

// RetryAdmissions is the admission-retry event entry point.
func (d *Department) RetryAdmissions(sim *Simulator, now int64) {
	d.admitRetryPending = false
	d.pullFromWaiting(sim, now)
}

// AbandonWaiting removes a patient from the waiting list if still present,
// purging them from the entity registry. Returns false when the patient is
// no longer waiting here.
func (d *Department) AbandonWaiting(sim *Simulator, patientID string, now int64) bool {
	for i, entry := range d.waiting {
		if entry.Patient.ID != patientID {
			continue
		}
		d.waiting = append(d.waiting[:i], d.waiting[i+1:]...)
		p := entry.Patient
		waited := now - entry.EnqueueTime
		p.Status = StatusAbandoned
		p.Location = ""
		sim.Stats.RecordAbandonment(d.ID, float64(waited))
		sim.Entities.Remove(patientID)
		sim.Log.Append(LogEntry{Time: now, Level: LevelWarn, Type: EventTypeWaitingAbandon, EntityID: patientID,
			Message: "left " + d.ID + " waiting list untreated"})
		return true
	}
	return false
}

// activePatient returns the active record for a patient, nil if not here.
func (d *Department) activePatient(patientID string) *activeRecord {
	return d.active[patientID]
}

func sortedDemandKeys(demand ResourceDemand) []string {
	keys := make([]string, 0, len(demand))
	for k := range demand {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
