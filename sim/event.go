package sim

// Event is the interface for all simulation events. Each event carries its
// scheduled timestamp (in ticks, one tick = one simulated minute), a type tag
// used for same-instant ordering, an optional entity reference, and an
// Execute method that advances simulation state when invoked.
//
// Events form a closed set: every variant below carries exactly the fields
// its handler needs. There is no generic payload bag.
type Event interface {
	Timestamp() int64
	Type() EventType
	EntityID() string
	Execute(sim *Simulator)
}

// EventType tags each event variant for logging and same-instant ordering.
type EventType string

const (
	EventTypeArrival        EventType = "PatientArrival"
	EventTypeStepStart      EventType = "StepStart"
	EventTypeStepComplete   EventType = "StepComplete"
	EventTypeTransferQueue  EventType = "TransferQueue"
	EventTypeAdmissionRetry EventType = "AdmissionRetry"
	EventTypeShiftChange    EventType = "ShiftChange"
	EventTypeWaitingAbandon EventType = "WaitingAbandon"
	EventTypeStatsTick      EventType = "StatsTick"
)

// eventClass groups event types for the type-class priority boost.
// Among events at the same tick, emergency-class events are dequeued before
// urgent-class, urgent before transfer-class, transfer before default.
type eventClass int

const (
	classDefault eventClass = iota
	classTransfer
	classUrgent
	classEmergency
)

var eventTypeClass = map[EventType]eventClass{
	EventTypeArrival:        classEmergency,
	EventTypeStepStart:      classUrgent,
	EventTypeStepComplete:   classUrgent,
	EventTypeTransferQueue:  classTransfer,
	EventTypeAdmissionRetry: classDefault,
	EventTypeShiftChange:    classDefault,
	EventTypeWaitingAbandon: classDefault,
	EventTypeStatsTick:      classDefault,
}

// classBoost maps an event class to its priority contribution.
var classBoost = [...]float64{
	classDefault:   0,
	classTransfer:  10,
	classUrgent:    20,
	classEmergency: 30,
}

// typeClassBoost returns the priority boost for an event type.
// Unknown types get the default class.
func typeClassBoost(t EventType) float64 {
	return classBoost[eventTypeClass[t]]
}

// BaseEvent provides the common timestamp/type/entity fields.
type BaseEvent struct {
	timestamp int64
	eventType EventType
	entityID  string
}

func newBaseEvent(timestamp int64, eventType EventType, entityID string) BaseEvent {
	return BaseEvent{
		timestamp: timestamp,
		eventType: eventType,
		entityID:  entityID,
	}
}

func (e *BaseEvent) Timestamp() int64 {
	return e.timestamp
}

func (e *BaseEvent) Type() EventType {
	return e.eventType
}

func (e *BaseEvent) EntityID() string {
	return e.entityID
}

// PatientArrivalEvent represents a patient arriving at a department
// (normally the emergency department).
type PatientArrivalEvent struct {
	BaseEvent
	Patient      *Patient
	DepartmentID string
}

func NewPatientArrivalEvent(timestamp int64, p *Patient, departmentID string) *PatientArrivalEvent {
	return &PatientArrivalEvent{
		BaseEvent:    newBaseEvent(timestamp, EventTypeArrival, p.ID),
		Patient:      p,
		DepartmentID: departmentID,
	}
}

func (e *PatientArrivalEvent) Execute(sim *Simulator) {
	sim.handlePatientArrival(e)
}

// StepStartEvent asks a department to start (or re-attempt) the current
// workflow step for a patient. Poll-until-available retries reuse this event
// with a later timestamp; the engine never blocks waiting for resources.
type StepStartEvent struct {
	BaseEvent
	PatientID    string
	DepartmentID string
}

func NewStepStartEvent(timestamp int64, patientID, departmentID string) *StepStartEvent {
	return &StepStartEvent{
		BaseEvent:    newBaseEvent(timestamp, EventTypeStepStart, patientID),
		PatientID:    patientID,
		DepartmentID: departmentID,
	}
}

func (e *StepStartEvent) Execute(sim *Simulator) {
	sim.handleStepStart(e)
}

// StepCompleteEvent marks the end of a workflow step's duration. Resources
// held by the step are released and the patient advances (or the workflow
// completes and a disposition is applied).
type StepCompleteEvent struct {
	BaseEvent
	PatientID    string
	DepartmentID string
	StepName     string
}

func NewStepCompleteEvent(timestamp int64, patientID, departmentID, stepName string) *StepCompleteEvent {
	return &StepCompleteEvent{
		BaseEvent:    newBaseEvent(timestamp, EventTypeStepComplete, patientID),
		PatientID:    patientID,
		DepartmentID: departmentID,
		StepName:     stepName,
	}
}

func (e *StepCompleteEvent) Execute(sim *Simulator) {
	sim.handleStepComplete(e)
}

// TransferQueueEvent triggers a pass over the department manager's transfer
// queue. Retries after a full destination are rescheduled instances of this
// event, a fixed number of simulated minutes apart.
type TransferQueueEvent struct {
	BaseEvent
}

func NewTransferQueueEvent(timestamp int64) *TransferQueueEvent {
	return &TransferQueueEvent{
		BaseEvent: newBaseEvent(timestamp, EventTypeTransferQueue, ""),
	}
}

func (e *TransferQueueEvent) Execute(sim *Simulator) {
	sim.handleTransferQueue(e)
}

// AdmissionRetryEvent re-attempts a department's waiting-list admissions
// after a backfill found capacity free but every bed in a turnover window.
// Runs in the default class so same-tick discharges release their beds
// first.
type AdmissionRetryEvent struct {
	BaseEvent
	DepartmentID string
}

func NewAdmissionRetryEvent(timestamp int64, departmentID string) *AdmissionRetryEvent {
	return &AdmissionRetryEvent{
		BaseEvent:    newBaseEvent(timestamp, EventTypeAdmissionRetry, ""),
		DepartmentID: departmentID,
	}
}

func (e *AdmissionRetryEvent) Execute(sim *Simulator) {
	sim.handleAdmissionRetry(e)
}

// ShiftChangeEvent resizes a staff pool when a rostered shift starts or ends.
// Delta is positive at shift start and negative at shift end.
type ShiftChangeEvent struct {
	BaseEvent
	ResourceID string
	Role       string
	Delta      int
}

func NewShiftChangeEvent(timestamp int64, resourceID, role string, delta int) *ShiftChangeEvent {
	return &ShiftChangeEvent{
		BaseEvent:  newBaseEvent(timestamp, EventTypeShiftChange, ""),
		ResourceID: resourceID,
		Role:       role,
		Delta:      delta,
	}
}

func (e *ShiftChangeEvent) Execute(sim *Simulator) {
	sim.handleShiftChange(e)
}

// WaitingAbandonEvent checks whether a low-acuity patient is still on a
// department waiting list after their patience ran out. If so the patient
// leaves without treatment and is purged from the entity registry.
type WaitingAbandonEvent struct {
	BaseEvent
	PatientID    string
	DepartmentID string
}

func NewWaitingAbandonEvent(timestamp int64, patientID, departmentID string) *WaitingAbandonEvent {
	return &WaitingAbandonEvent{
		BaseEvent:    newBaseEvent(timestamp, EventTypeWaitingAbandon, patientID),
		PatientID:    patientID,
		DepartmentID: departmentID,
	}
}

func (e *WaitingAbandonEvent) Execute(sim *Simulator) {
	sim.handleWaitingAbandon(e)
}

// StatsTickEvent samples periodic series (occupancy, arrivals, wait time)
// and reschedules itself until the horizon.
type StatsTickEvent struct {
	BaseEvent
}

func NewStatsTickEvent(timestamp int64) *StatsTickEvent {
	return &StatsTickEvent{
		BaseEvent: newBaseEvent(timestamp, EventTypeStatsTick, ""),
	}
}

func (e *StatsTickEvent) Execute(sim *Simulator) {
	sim.handleStatsTick(e)
}
