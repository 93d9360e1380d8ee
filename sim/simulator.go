// The simulation driver. New builds the hospital out of a config (resource
// registries, departments with their kind policies, the staffing roster) and
// Run drives the event loop: dequeue, execute, repeat until the horizon.
// Statistics are owned here and passed nowhere else; departments and the
// transfer manager report through the Record* methods only.

package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ArrivalSource produces patient arrival events one at a time. The driver
// pulls the next arrival after dispatching the previous one, so the source
// never has to know the horizon.
type ArrivalSource interface {
	Next(after int64) (*PatientArrivalEvent, bool)
}

// Simulator drives one run.
type Simulator struct {
	Config   *SimulationConfig
	Stats    *Statistics
	Log      *EventLog
	Entities *EntityRegistry
	Manager  *DepartmentManager

	scheduler   *EventScheduler
	resources   *ResourceRegistry
	departments map[string]*Department
	deptOrder   []string
	rng         *PartitionedRNG
	source      ArrivalSource
	predictor   Predictor
	fallback    *RatePredictor

	horizon int64
}

// New builds a simulator from a validated config.
func New(cfg *SimulationConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		Config:      cfg,
		Stats:       NewStatistics(),
		Log:         NewEventLog(cfg.EventLogCapacity),
		Entities:    NewEntityRegistry(),
		Manager:     NewDepartmentManager(cfg.TransferRetryBudget),
		resources:   NewResourceRegistry(),
		departments: make(map[string]*Department),
		rng:         NewPartitionedRNG(cfg.Seed),
		horizon:     cfg.Horizon,
	}
	s.fallback = &RatePredictor{Arrivals: cfg.Arrivals}
	s.predictor = s.fallback
	s.scheduler = NewEventScheduler(s.entityScore)

	icuID, wardID := "", ""
	for _, dc := range cfg.Departments {
		switch DepartmentKind(dc.Kind) {
		case DeptICU:
			if icuID == "" {
				icuID = dc.ID
			}
		case DeptWard:
			if wardID == "" {
				wardID = dc.ID
			}
		}
	}

	for _, dc := range cfg.Departments {
		kind := DepartmentKind(dc.Kind)
		var (
			admission   AdmissionPolicy
			selector    WorkflowSelector
			disposition DispositionPolicy
			workflows   []*Workflow
		)
		switch kind {
		case DeptEmergency:
			admission = EDAdmissionPolicy{}
			selector = EDWorkflowSelector{}
			disposition = EDDispositionPolicy{ICUID: icuID, WardID: wardID}
			workflows = EmergencyWorkflows()
		case DeptICU:
			admission = ICUAdmissionPolicy{}
			selector = ICUWorkflowSelector{}
			disposition = ICUDispositionPolicy{WardID: wardID}
			workflows = ICUWorkflows()
		case DeptWard:
			admission = WardAdmissionPolicy{}
			selector = WardWorkflowSelector{}
			disposition = WardDispositionPolicy{}
			workflows = WardWorkflows()
		}

		dept := NewDepartment(dc.ID, kind, dc.Capacity, s.resources, admission, selector, disposition, dc.PollInterval)
		for _, pb := range dc.Pools {
			dept.RegisterPool(pb.Key, pb.Pool)
		}
		for _, w := range workflows {
			dept.AddWorkflow(w)
		}
		for _, rc := range dc.Resources {
			rk, ok := ParseResourceKind(rc.Kind)
			if !ok {
				return nil, fmt.Errorf("resource %s: unknown kind %q", rc.ID, rc.Kind)
			}
			res := NewResource(rc.ID, rk, rc.Capacity)
			if rc.Condition > 0 {
				res.Condition = rc.Condition
			}
			res.ReservedForEmergency = rc.ReservedForEmergency
			res.TurnoverTicks = rc.TurnoverTicks
			if err := s.resources.Register(res, rc.Pool); err != nil {
				return nil, err
			}
		}
		s.departments[dc.ID] = dept
		s.deptOrder = append(s.deptOrder, dc.ID)
	}

	rosterEvents, err := ExpandRoster(cfg.Shifts, cfg.Horizon)
	if err != nil {
		return nil, fmt.Errorf("expand roster: %w", err)
	}
	for _, ev := range rosterEvents {
		s.schedule(ev, 0)
	}

	if cfg.StatsInterval > 0 {
		s.schedule(NewStatsTickEvent(cfg.StatsInterval), 0)
	}
	return s, nil
}

// SetArrivalSource attaches the arrival generator and schedules its first
// arrival.
func (s *Simulator) SetArrivalSource(src ArrivalSource) {
	s.source = src
	if ev, ok := src.Next(s.scheduler.Clock()); ok {
		s.schedule(ev, 0)
	}
}

// SetPredictor swaps in a custom arrival predictor. The configured rate
// table remains the fallback.
func (s *Simulator) SetPredictor(p Predictor) {
	if p != nil {
		s.predictor = p
	}
}

// SeedWaiting models a backlog present when the run starts: patients are
// admitted to the entry department while beds allow, and the spillover lands
// on its waiting list.
func (s *Simulator) SeedWaiting(patients []*Patient) {
	dept := s.departments[s.Config.EntryDepartment]
	now := s.scheduler.Clock()
	for _, p := range patients {
		s.Entities.Add(p)
		dept.AdmitPatient(s, p, AdmissionOpts{}, now)
	}
}

// Clock returns the current simulation time in ticks.
func (s *Simulator) Clock() int64 {
	return s.scheduler.Clock()
}

// Horizon returns the configured run length in ticks.
func (s *Simulator) Horizon() int64 {
	return s.horizon
}

// Department returns a department by id, or nil.
func (s *Simulator) Department(id string) *Department {
	return s.departments[id]
}

// Resources returns the shared resource registry.
func (s *Simulator) Resources() *ResourceRegistry {
	return s.resources
}

// ScheduleEvent enqueues an event with no explicit priority.
func (s *Simulator) ScheduleEvent(ev Event) {
	s.schedule(ev, 0)
}

func (s *Simulator) schedule(ev Event, explicitPriority float64) {
	s.scheduler.Schedule(ev, explicitPriority)
}

// departmentKind returns the kind of a department id, empty when unknown.
func (s *Simulator) departmentKind(id string) DepartmentKind {
	if d := s.departments[id]; d != nil {
		return d.Kind
	}
	return ""
}

// rngFor returns the named subsystem's private random stream.
func (s *Simulator) rngFor(subsystem string) *rand.Rand {
	return s.rng.Stream(subsystem)
}

// entityScore feeds patient priority scores into event ordering: among
// same-tick events of the same class, higher-priority patients go first.
func (s *Simulator) entityScore(entityID string) float64 {
	if p, ok := s.Entities.Get(entityID).(*Patient); ok {
		return p.Scores.PriorityScore
	}
	return 0
}

// scaleDuration applies the configured speed factor to a step duration.
func (s *Simulator) scaleDuration(d int64) int64 {
	if s.Config.SpeedFactor == 1.0 {
		return d
	}
	scaled := int64(float64(d)/s.Config.SpeedFactor + 0.5)
	if scaled < 0 {
		scaled = 0
	}
	return scaled
}

// Run drives the event loop until the horizon or queue exhaustion, then
// finalizes statistics. A panicking event handler is logged and skipped; one
// bad patient must not take down the run.
func (s *Simulator) Run() error {
	logrus.Infof("run %s: horizon %d ticks, seed %d", s.Stats.RunID, s.horizon, s.rng.Seed())

	for {
		next, ok := s.scheduler.PeekTime()
		if !ok || next > s.horizon {
			break
		}
		ev := s.scheduler.DequeueNext()
		s.dispatch(ev)
	}

	s.finalize()
	if err := s.resources.CheckInvariants(); err != nil {
		return fmt.Errorf("resource accounting violated after run: %w", err)
	}
	return nil
}

func (s *Simulator) dispatch(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("event %s for %q panicked at tick %d: %v", ev.Type(), ev.EntityID(), s.Clock(), r)
			s.Log.Append(LogEntry{Time: s.Clock(), Level: LevelError, Type: ev.Type(), EntityID: ev.EntityID(),
				Message: fmt.Sprintf("handler panic: %v", r)})
		}
	}()
	ev.Execute(s)
}

func (s *Simulator) finalize() {
	end := s.Clock()
	s.Stats.SimEnd = end
	s.Stats.ClampedSchedules = s.scheduler.ClampedSchedules()
	for _, dc := range s.Config.Departments {
		for _, rc := range dc.Resources {
			s.Stats.ResourceUtilization[rc.ID] = s.resources.Utilization(rc.ID, 0, end)
		}
	}
}

func (s *Simulator) handlePatientArrival(e *PatientArrivalEvent) {
	now := s.Clock()
	p := e.Patient
	s.Entities.Add(p)
	p.ArrivalTime = now
	s.Stats.RecordArrival()
	s.Log.Append(LogEntry{Time: now, Level: LevelInfo, Type: EventTypeArrival, EntityID: p.ID,
		Message: fmt.Sprintf("arrived by %s, acuity %d", p.Mode, p.Acuity)})

	dept := s.departments[e.DepartmentID]
	if dept == nil {
		dept = s.departments[s.Config.EntryDepartment]
	}
	dept.AdmitPatient(s, p, AdmissionOpts{Force: p.Acuity == AcuityResuscitation}, now)

	if s.source != nil {
		if next, ok := s.source.Next(now); ok && next.Timestamp() <= s.horizon {
			s.schedule(next, 0)
		}
	}
}

func (s *Simulator) handleStepStart(e *StepStartEvent) {
	if dept := s.departments[e.DepartmentID]; dept != nil {
		dept.ProcessStep(s, e.PatientID, s.Clock())
	}
}

func (s *Simulator) handleStepComplete(e *StepCompleteEvent) {
	if dept := s.departments[e.DepartmentID]; dept != nil {
		dept.CompleteStep(s, e.PatientID, e.StepName, s.Clock())
	}
}

func (s *Simulator) handleTransferQueue(e *TransferQueueEvent) {
	s.Manager.ProcessQueue(s, s.Clock())
}

func (s *Simulator) handleAdmissionRetry(e *AdmissionRetryEvent) {
	if dept := s.departments[e.DepartmentID]; dept != nil {
		dept.RetryAdmissions(s, s.Clock())
	}
}

func (s *Simulator) handleShiftChange(e *ShiftChangeEvent) {
	now := s.Clock()
	if !s.resources.AdjustCapacity(e.ResourceID, e.Delta, now) {
		logrus.Warnf("shift change for unknown resource %q", e.ResourceID)
		return
	}
	s.Log.Append(LogEntry{Time: now, Level: LevelInfo, Type: EventTypeShiftChange, EntityID: e.ResourceID,
		Message: fmt.Sprintf("%s capacity %+d", e.Role, e.Delta)})
}

func (s *Simulator) handleWaitingAbandon(e *WaitingAbandonEvent) {
	if dept := s.departments[e.DepartmentID]; dept != nil {
		// Already-admitted patients are no longer on the list; the stale
		// event is a no-op.
		dept.AbandonWaiting(s, e.PatientID, s.Clock())
	}
}

func (s *Simulator) handleStatsTick(e *StatsTickEvent) {
	now := s.Clock()
	var ed, icu, ward float64
	for _, id := range s.deptOrder {
		d := s.departments[id]
		switch d.Kind {
		case DeptEmergency:
			ed = d.Occupancy()
		case DeptICU:
			icu = d.Occupancy()
		case DeptWard:
			ward = d.Occupancy()
		}
	}
	s.Stats.SamplePeriod(now, ed, icu, ward)

	rate := predictOrFallback(s.predictor, s.fallback, now)
	logrus.Debugf("tick %d: ED %.0f%%, ICU %.0f%%, ward %.0f%%, predicted %.1f arrivals/h",
		now, 100*ed, 100*icu, 100*ward, rate)

	if next := now + s.Config.StatsInterval; next <= s.horizon {
		s.schedule(NewStatsTickEvent(next), 0)
	}
}
