// Package sim provides the discrete-event simulation engine for hospital
// patient flow.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: the closed set of event variants that drive the simulation
//   - scheduler.go: the pending-event heap and the monotonic clock
//   - simulator.go: the event loop, department wiring, and event handlers
//
// Then the domain layer:
//   - patient.go: the Patient entity and its acuity-derived scores
//   - resource.go, resource_registry.go: beds, staff, rooms, equipment, with
//     emergency reserves and bed turnover
//   - workflow.go, department.go: treatment workflows and the department
//     engine (active map, priority waiting list, step polling)
//   - emergency.go, icu.go, ward.go: the kind-specific policy sets
//   - transfer.go: the cross-department transfer queue with bounded retries
//
// # Architecture
//
// A Department is assembled by composition: the shared engine in
// department.go plus three injected policies per department kind.
//   - AdmissionPolicy: waiting-list ranking, bed pool routing, emergency use
//   - WorkflowSelector: workflow choice for a freshly admitted patient
//   - DispositionPolicy: discharge, transfer, or loop back on completion
//
// Time is an int64 tick, one tick per simulated minute. The clock advances
// only when the scheduler dequeues an event; everything downstream of a
// handler runs at a single instant. Randomness is partitioned per subsystem
// (rng.go) so one subsystem's draw count never perturbs another's sequence.
//
// Workload generation lives in sim/workload: a nonhomogeneous Poisson
// arrival process over hour-of-day and day-of-week rate tables, and the
// synthetic patient population it feeds to the driver.
package sim
