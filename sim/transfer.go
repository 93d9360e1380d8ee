// The department manager owns the cross-department transfer queue. A
// transfer request stays queued while the destination is full, retried on a
// fixed simulated-time interval; after the retry budget is exhausted the
// request is dropped and a transfer-failed notification is recorded.

package sim

import (
	"sort"

	"github.com/sirupsen/logrus"
)

const (
	// TransferRetryInterval is the delay between transfer queue passes when
	// a destination is full, in ticks (15 simulated minutes).
	TransferRetryInterval = 15

	// DefaultTransferRetryBudget bounds how many full-destination retries a
	// request survives before being dropped (2 simulated hours of retries).
	DefaultTransferRetryBudget = 8
)

// TransferRequest lives only inside the manager's queue; it is destroyed on
// success or final failure.
type TransferRequest struct {
	Patient     *Patient
	From        *Department
	TargetID    string
	RequestTime int64
	Attempts    int

	seq uint64
}

// DepartmentManager orchestrates transfers between departments.
type DepartmentManager struct {
	pending     []*TransferRequest
	seq         uint64
	retryBudget int

	// retryScheduled suppresses duplicate retry events; a single pending
	// TransferQueueEvent serves the whole queue.
	retryScheduled bool
}

// NewDepartmentManager creates a manager with the given retry budget;
// budget <= 0 uses the default.
func NewDepartmentManager(retryBudget int) *DepartmentManager {
	if retryBudget <= 0 {
		retryBudget = DefaultTransferRetryBudget
	}
	return &DepartmentManager{retryBudget: retryBudget}
}

// QueueLen returns the number of pending transfer requests.
func (m *DepartmentManager) QueueLen() int {
	return len(m.pending)
}

// RequestTransfer enqueues a transfer and triggers a queue pass at the
// current tick, unless a pass is already pending; one pass serves every
// request, so same-tick requests must not each burn a retry attempt.
func (m *DepartmentManager) RequestTransfer(sim *Simulator, p *Patient, from *Department, targetID string, now int64) {
	m.seq++
	m.pending = append(m.pending, &TransferRequest{
		Patient:     p,
		From:        from,
		TargetID:    targetID,
		RequestTime: now,
		seq:         m.seq,
	})
	logrus.Debugf("transfer requested: %s %s -> %s", p.ID, from.ID, targetID)
	if !m.retryScheduled {
		m.retryScheduled = true
		sim.schedule(NewTransferQueueEvent(now), 0)
	}
}

// priorityOf computes a request's current priority: (6 - acuity) plus the
// department-pair bonus plus wait-time escalation. Recomputed at each queue
// pass because the escalation term grows with waiting time.
func (m *DepartmentManager) priorityOf(req *TransferRequest, sim *Simulator, now int64) float64 {
	priority := float64(6 - req.Patient.Acuity)
	priority += transferPairBonus(req.From.Kind, sim.departmentKind(req.TargetID))

	waited := now - req.RequestTime
	switch {
	case waited >= 24*60:
		priority += 3
	case waited >= 12*60:
		priority += 2
	case waited >= 6*60:
		priority += 1
	}
	return priority
}

// transferPairBonus ranks department pairs: ED->ICU highest, ED->Ward
// medium, ICU->Ward lower, anything else none.
func transferPairBonus(from, to DepartmentKind) float64 {
	switch {
	case from == DeptEmergency && to == DeptICU:
		return 3
	case from == DeptEmergency && to == DeptWard:
		return 2
	case from == DeptICU && to == DeptWard:
		return 1
	default:
		return 0
	}
}

// ProcessQueue works through pending requests, highest priority first.
// A full destination leaves the request queued and schedules one retry pass
// after the fixed interval; an admission failure with room available drops
// the request with a transfer-failed notification.
func (m *DepartmentManager) ProcessQueue(sim *Simulator, now int64) {
	m.retryScheduled = false
	if len(m.pending) == 0 {
		return
	}

	sort.SliceStable(m.pending, func(i, j int) bool {
		pi := m.priorityOf(m.pending[i], sim, now)
		pj := m.priorityOf(m.pending[j], sim, now)
		if pi != pj {
			return pi > pj
		}
		return m.pending[i].seq < m.pending[j].seq
	})

	remaining := m.pending[:0]
	for i, req := range m.pending {
		target := sim.Department(req.TargetID)
		if target == nil {
			logrus.Errorf("transfer: unknown target department %q, dropping request for %s", req.TargetID, req.Patient.ID)
			m.fail(sim, req, now, "unknown destination "+req.TargetID)
			continue
		}

		if !target.CanAdmit(req.Patient, now) {
			req.Attempts++
			if req.Attempts >= m.retryBudget {
				m.fail(sim, req, now, "destination "+req.TargetID+" full after retry budget")
				continue
			}
			// Destination blocked: keep this and all lower-priority
			// requests queued and come back in one retry interval.
			remaining = append(remaining, m.pending[i:]...)
			m.scheduleRetry(sim, now)
			break
		}

		// Leave the source first so the patient is never active in two
		// departments at once, then admit to the destination.
		req.From.DischargePatient(sim, req.Patient.ID, req.TargetID, now)
		if !target.AdmitPatient(sim, req.Patient, AdmissionOpts{NoWaitlist: true}, now) {
			// CanAdmit held a bed a moment ago; the source discharge can
			// consume it through its own backfill when pools are shared.
			// Force with the reserve, and give up if even that fails.
			logrus.Warnf("transfer: destination %s lost its bed for %s, forcing admission", req.TargetID, req.Patient.ID)
			if !target.AdmitPatient(sim, req.Patient, AdmissionOpts{Force: true, NoWaitlist: true}, now) {
				m.fail(sim, req, now, "destination "+req.TargetID+" lost its bed")
				continue
			}
		}
		waited := now - req.RequestTime
		sim.Stats.RecordTransfer(float64(waited))
		sim.Log.Append(LogEntry{Time: now, Level: LevelInfo, Type: EventTypeTransferQueue, EntityID: req.Patient.ID,
			Message: "transferred " + req.From.ID + " -> " + req.TargetID})
	}
	m.pending = remaining
}

// fail drops a request and records the transfer-failed notification. The
// patient's workflow already completed, so leaving them parked would hold a
// bed forever; the source discharges them home instead.
func (m *DepartmentManager) fail(sim *Simulator, req *TransferRequest, now int64, reason string) {
	sim.Stats.RecordTransferFailure()
	sim.Log.Append(LogEntry{Time: now, Level: LevelWarn, Type: EventTypeTransferQueue, EntityID: req.Patient.ID,
		Message: "transfer failed: " + reason})
	logrus.Warnf("transfer failed for %s: %s", req.Patient.ID, reason)
	if !req.From.DischargePatient(sim, req.Patient.ID, "", now) {
		// The source already let the patient go (a forced admission fell
		// through after the source-side discharge); finalize directly.
		req.Patient.Status = StatusDischarged
		req.Patient.Location = ""
		sim.Entities.Remove(req.Patient.ID)
	}
}

// scheduleRetry schedules a single queue pass one retry interval out.
func (m *DepartmentManager) scheduleRetry(sim *Simulator, now int64) {
	if m.retryScheduled {
		return
	}
	m.retryScheduled = true
	sim.schedule(NewTransferQueueEvent(now+TransferRetryInterval), 0)
}
