package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listSource replays a fixed arrival sequence, one event per Next call.
type listSource struct {
	events []*PatientArrivalEvent
	i      int
}

func (l *listSource) Next(after int64) (*PatientArrivalEvent, bool) {
	for l.i < len(l.events) {
		ev := l.events[l.i]
		l.i++
		if ev.Timestamp() > after {
			return ev, true
		}
	}
	return nil, false
}

// syntheticArrivals builds a deterministic arrival sequence: one patient
// every interval, attributes drawn from the given seed.
func syntheticArrivals(seed int64, n int, interval int64, entry string) *listSource {
	rng := rand.New(rand.NewSource(seed))
	modes := []ArrivalMode{ModeWalkIn, ModeAmbulance, ModeHelicopter, ModeTransfer}
	src := &listSource{}
	for i := 0; i < n; i++ {
		at := int64(i+1) * interval
		acuity := AcuityLevel(1 + rng.Intn(5))
		p := NewPatient("", at, acuity, rng.Intn(95), nil, modes[rng.Intn(len(modes))])
		if acuity <= AcuityEmergent {
			p.NeedsVentilator = rng.Float64() < 0.4
			p.NeedsIsolation = rng.Float64() < 0.1
		}
		src.events = append(src.events, NewPatientArrivalEvent(at, p, entry))
	}
	return src
}

func smallConfig() *SimulationConfig {
	cfg := DefaultConfig()
	cfg.Horizon = 24 * 60
	cfg.StatsInterval = 60
	return cfg
}

func TestSimulator_RunEndToEnd(t *testing.T) {
	cfg := smallConfig()
	s, err := New(cfg)
	require.NoError(t, err)

	s.SetArrivalSource(syntheticArrivals(11, 60, 20, "ed"))
	require.NoError(t, s.Run())

	stats := s.Stats
	assert.Equal(t, 60, stats.Arrivals)
	assert.Greater(t, stats.Admissions, 0, "no patient was ever admitted")
	assert.Greater(t, stats.Discharges, 0, "no patient completed a stay")
	assert.LessOrEqual(t, s.Clock(), cfg.Horizon)
	assert.Len(t, stats.Hourly, 24, "expected one sample per hour")
	assert.Zero(t, stats.FrozenPatients)

	// Every patient still registered must be somewhere coherent: active in
	// exactly one department or on exactly one waiting list.
	for _, e := range s.Entities.ByKind("patient") {
		p := e.(*Patient)
		locations := 0
		for _, id := range s.deptOrder {
			d := s.departments[id]
			if d.activePatient(p.ID) != nil {
				locations++
			}
			for _, w := range d.waiting {
				if w.Patient.ID == p.ID {
					locations++
				}
			}
		}
		// Patients in the transfer queue sit between departments.
		inTransfer := false
		for _, req := range s.Manager.pending {
			if req.Patient.ID == p.ID {
				inTransfer = true
			}
		}
		if !inTransfer && locations != 1 {
			t.Errorf("patient %s found in %d places", p.ID, locations)
		}
	}
}

func TestSimulator_DeterministicGivenSeed(t *testing.T) {
	run := func() *Statistics {
		cfg := smallConfig()
		s, err := New(cfg)
		require.NoError(t, err)
		s.SetArrivalSource(syntheticArrivals(23, 80, 15, "ed"))
		require.NoError(t, s.Run())
		return s.Stats
	}

	a, b := run(), run()
	assert.Equal(t, a.Arrivals, b.Arrivals)
	assert.Equal(t, a.Admissions, b.Admissions)
	assert.Equal(t, a.Discharges, b.Discharges)
	assert.Equal(t, a.Transfers, b.Transfers)
	assert.Equal(t, a.Abandonments, b.Abandonments)
	assert.Equal(t, a.AvgWait(), b.AvgWait())
	assert.Equal(t, a.AvgStay(), b.AvgStay())
}

type panicEvent struct{ BaseEvent }

func (e *panicEvent) Execute(*Simulator) { panic("handler bug") }

func TestSimulator_PanicInHandlerDoesNotAbortRun(t *testing.T) {
	cfg := smallConfig()
	cfg.Shifts = nil
	s, err := New(cfg)
	require.NoError(t, err)

	s.ScheduleEvent(&panicEvent{BaseEvent: newBaseEvent(30, EventTypeStepStart, "ghost")})
	require.NoError(t, s.Run())

	assert.NotEmpty(t, s.Log.ByLevel(LevelError), "panic was not recorded")
	// The loop kept going past the panic.
	assert.Equal(t, cfg.Horizon, s.Clock())
}

func TestSimulator_ShiftChangeResizesStaffPool(t *testing.T) {
	cfg := smallConfig()
	cfg.Horizon = 2 * 60
	cfg.Shifts = nil
	s, err := New(cfg)
	require.NoError(t, err)

	base := s.Resources().Get("ed-nurses").Capacity
	s.ScheduleEvent(NewShiftChangeEvent(10, "ed-nurses", "nurse", 5))
	require.NoError(t, s.Run())

	r := s.Resources().Get("ed-nurses")
	assert.Equal(t, base+5, r.Capacity)
	assert.Equal(t, base+5, r.Available)
}

func TestSimulator_SeedWaitingFillsEntryDepartment(t *testing.T) {
	cfg := smallConfig()
	cfg.Shifts = nil
	s, err := New(cfg)
	require.NoError(t, err)

	patients := make([]*Patient, 5)
	for i := range patients {
		patients[i] = NewPatient("", 0, AcuityUrgent, 40, nil, ModeWalkIn)
	}
	s.SeedWaiting(patients)

	ed := s.Department("ed")
	assert.Equal(t, 5, ed.ActiveCount(), "backlog patients with free beds start treatment")
	assert.Equal(t, 5, s.Entities.Len())
}

func TestSimulator_SpeedFactorScalesDurations(t *testing.T) {
	cfg := smallConfig()
	cfg.SpeedFactor = 2.0
	s, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(50), s.scaleDuration(100))
	assert.Equal(t, int64(13), s.scaleDuration(25))

	cfg2 := smallConfig()
	s2, err := New(cfg2)
	require.NoError(t, err)
	assert.Equal(t, int64(100), s2.scaleDuration(100))
}

func TestSimulator_NoSourceMeansNoArrivals(t *testing.T) {
	cfg := smallConfig()
	cfg.Horizon = 6 * 60
	cfg.Shifts = nil
	s, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, s.Run())
	assert.Zero(t, s.Stats.Arrivals)
	assert.Zero(t, s.Stats.Admissions)
	assert.Len(t, s.Stats.Hourly, 6)
}
