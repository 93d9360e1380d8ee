// YAML-backed run configuration. A config file describes the hospital
// (departments, resource pools, staffing roster) and the run parameters
// (horizon, seed, arrival pattern); Validate catches bad input before any
// event is scheduled.

package sim

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ResourceConfig declares one resource added to a department's registry.
type ResourceConfig struct {
	ID                   string  `yaml:"id"`
	Pool                 string  `yaml:"pool"`
	Kind                 string  `yaml:"kind"`
	Capacity             int     `yaml:"capacity"`
	Condition            float64 `yaml:"condition"`
	ReservedForEmergency int     `yaml:"reserved_for_emergency"`
	TurnoverTicks        int64   `yaml:"turnover_ticks"`
}

// PoolBinding maps a department pool key to a registry pool name.
type PoolBinding struct {
	Key  string `yaml:"key"`
	Pool string `yaml:"pool"`
}

// DepartmentConfig declares one department.
type DepartmentConfig struct {
	ID           string           `yaml:"id"`
	Kind         string           `yaml:"kind"`
	Capacity     int              `yaml:"capacity"`
	PollInterval int64            `yaml:"poll_interval"`
	Pools        []PoolBinding    `yaml:"pools"`
	Resources    []ResourceConfig `yaml:"resources"`
}

// ShiftConfig declares a recurring staffing shift. Start is a standard
// 5-field cron expression evaluated in simulated time; each firing raises the
// resource's capacity by Staff and lowers it again DurationTicks later.
type ShiftConfig struct {
	ResourceID    string `yaml:"resource_id"`
	Role          string `yaml:"role"`
	Start         string `yaml:"start"`
	DurationTicks int64  `yaml:"duration_ticks"`
	Staff         int    `yaml:"staff"`
}

// ArrivalConfig shapes the nonhomogeneous Poisson arrival process.
type ArrivalConfig struct {
	// HourlyRates holds the base arrival rate (patients per hour) for each
	// hour of day.
	HourlyRates [24]float64 `yaml:"hourly_rates"`

	// DayOfWeekMultipliers scales the hourly rate per weekday, Monday first.
	DayOfWeekMultipliers [7]float64 `yaml:"day_of_week_multipliers"`
}

// WorkloadConfig shapes the synthetic patient population.
type WorkloadConfig struct {
	// AcuityWeights are relative frequencies for acuity levels 1..5.
	AcuityWeights [5]float64 `yaml:"acuity_weights"`

	// ModeWeights are relative frequencies for walk-in, ambulance,
	// helicopter, and inter-facility transfer arrivals, in that order.
	ModeWeights [4]float64 `yaml:"mode_weights"`

	// ComorbidityProb is the chance of each candidate comorbidity applying.
	ComorbidityProb float64 `yaml:"comorbidity_prob"`

	// VentilatorProb and IsolationProb apply only to acuity 1-2 patients.
	VentilatorProb float64 `yaml:"ventilator_prob"`
	IsolationProb  float64 `yaml:"isolation_prob"`
}

// SimulationConfig is the root of a run's YAML configuration.
type SimulationConfig struct {
	Seed    int64 `yaml:"seed"`
	Horizon int64 `yaml:"horizon"` // run length in ticks

	// SpeedFactor scales all workflow step durations; 2.0 halves them.
	SpeedFactor float64 `yaml:"speed_factor"`

	// StatsInterval is the periodic-sampling cadence in ticks; 0 disables.
	StatsInterval int64 `yaml:"stats_interval"`

	// EntryDepartment receives generated arrivals, normally the ED.
	EntryDepartment string `yaml:"entry_department"`

	// InitialWaiting seeds that many patients onto the entry department's
	// waiting list at tick zero.
	InitialWaiting int `yaml:"initial_waiting"`

	TransferRetryBudget int `yaml:"transfer_retry_budget"`
	EventLogCapacity    int `yaml:"event_log_capacity"`

	Arrivals    ArrivalConfig      `yaml:"arrivals"`
	Workload    WorkloadConfig     `yaml:"workload"`
	Departments []DepartmentConfig `yaml:"departments"`
	Shifts      []ShiftConfig      `yaml:"shifts"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for internal consistency.
func (c *SimulationConfig) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	if c.SpeedFactor <= 0 {
		return fmt.Errorf("speed_factor must be positive, got %g", c.SpeedFactor)
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("stats_interval must not be negative, got %d", c.StatsInterval)
	}
	if c.InitialWaiting < 0 {
		return fmt.Errorf("initial_waiting must not be negative, got %d", c.InitialWaiting)
	}
	if len(c.Departments) == 0 {
		return fmt.Errorf("at least one department is required")
	}

	deptIDs := make(map[string]bool)
	resourceIDs := make(map[string]bool)
	for _, d := range c.Departments {
		if d.ID == "" {
			return fmt.Errorf("department id must not be empty")
		}
		if deptIDs[d.ID] {
			return fmt.Errorf("duplicate department id %q", d.ID)
		}
		deptIDs[d.ID] = true
		if _, err := parseDepartmentKind(d.Kind); err != nil {
			return fmt.Errorf("department %s: %w", d.ID, err)
		}
		if d.Capacity <= 0 {
			return fmt.Errorf("department %s: capacity must be positive, got %d", d.ID, d.Capacity)
		}
		for _, r := range d.Resources {
			if resourceIDs[r.ID] {
				return fmt.Errorf("department %s: duplicate resource id %q", d.ID, r.ID)
			}
			resourceIDs[r.ID] = true
			if _, ok := ParseResourceKind(r.Kind); !ok {
				return fmt.Errorf("resource %s: unknown kind %q", r.ID, r.Kind)
			}
		}
	}

	if c.EntryDepartment == "" {
		return fmt.Errorf("entry_department must be set")
	}
	if !deptIDs[c.EntryDepartment] {
		return fmt.Errorf("entry_department %q is not a configured department", c.EntryDepartment)
	}

	for i, s := range c.Shifts {
		if !resourceIDs[s.ResourceID] {
			return fmt.Errorf("shift %d: unknown resource %q", i, s.ResourceID)
		}
		if _, err := cron.ParseStandard(s.Start); err != nil {
			return fmt.Errorf("shift %d: bad cron expression %q: %w", i, s.Start, err)
		}
		if s.DurationTicks <= 0 {
			return fmt.Errorf("shift %d: duration_ticks must be positive, got %d", i, s.DurationTicks)
		}
		if s.Staff <= 0 {
			return fmt.Errorf("shift %d: staff must be positive, got %d", i, s.Staff)
		}
	}

	for h, rate := range c.Arrivals.HourlyRates {
		if rate < 0 {
			return fmt.Errorf("arrivals.hourly_rates[%d] must not be negative, got %g", h, rate)
		}
	}
	for d, mult := range c.Arrivals.DayOfWeekMultipliers {
		if mult < 0 {
			return fmt.Errorf("arrivals.day_of_week_multipliers[%d] must not be negative, got %g", d, mult)
		}
	}
	return nil
}

func parseDepartmentKind(s string) (DepartmentKind, error) {
	switch DepartmentKind(s) {
	case DeptEmergency, DeptICU, DeptWard:
		return DepartmentKind(s), nil
	default:
		return "", fmt.Errorf("unknown department kind %q", s)
	}
}

// DefaultConfig returns a three-department hospital tuned for a one-week run.
// A YAML file overrides any subset of it.
func DefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		Seed:                42,
		Horizon:             7 * 24 * 60,
		SpeedFactor:         1.0,
		StatsInterval:       60,
		EntryDepartment:     "ed",
		TransferRetryBudget: DefaultTransferRetryBudget,
		EventLogCapacity:    DefaultEventLogCapacity,
		Arrivals: ArrivalConfig{
			HourlyRates: [24]float64{
				2, 1.5, 1, 1, 1, 1.5, // 00-05: overnight lull
				2.5, 4, 5, 6, 6.5, 7, // 06-11: morning ramp
				7, 6.5, 6, 6, 6.5, 7, // 12-17: afternoon plateau
				8, 8.5, 8, 6, 4, 3, // 18-23: evening peak
			},
			DayOfWeekMultipliers: [7]float64{1.1, 1.0, 1.0, 1.0, 1.05, 1.2, 1.15},
		},
		Workload: WorkloadConfig{
			AcuityWeights:   [5]float64{0.03, 0.12, 0.35, 0.35, 0.15},
			ModeWeights:     [4]float64{0.62, 0.30, 0.02, 0.06},
			ComorbidityProb: 0.25,
			VentilatorProb:  0.35,
			IsolationProb:   0.10,
		},
		Departments: []DepartmentConfig{
			{
				ID: "ed", Kind: string(DeptEmergency), Capacity: 30,
				Pools: []PoolBinding{
					{Key: PoolKeyBed, Pool: "ed-beds"},
					{Key: PoolKeyResusBay, Pool: "ed-resus"},
					{Key: PoolKeyTraumaBay, Pool: "ed-trauma"},
					{Key: PoolKeyFastTrackBed, Pool: "ed-fasttrack"},
					{Key: PoolKeyDoctor, Pool: "ed-doctors"},
					{Key: PoolKeyNurse, Pool: "ed-nurses"},
					{Key: PoolKeyMonitor, Pool: "ed-monitors"},
				},
				Resources: []ResourceConfig{
					{ID: "ed-beds", Pool: "ed-beds", Kind: "bed", Capacity: 18, Condition: 1.0, ReservedForEmergency: 2, TurnoverTicks: 15},
					{ID: "ed-resus", Pool: "ed-resus", Kind: "room", Capacity: 2, Condition: 1.0, TurnoverTicks: 30},
					{ID: "ed-trauma", Pool: "ed-trauma", Kind: "room", Capacity: 4, Condition: 1.0, TurnoverTicks: 20},
					{ID: "ed-fasttrack", Pool: "ed-fasttrack", Kind: "bed", Capacity: 6, Condition: 1.0, TurnoverTicks: 10},
					{ID: "ed-doctors", Pool: "ed-doctors", Kind: "staff", Capacity: 8, Condition: 1.0},
					{ID: "ed-nurses", Pool: "ed-nurses", Kind: "staff", Capacity: 16, Condition: 1.0},
					{ID: "ed-monitors", Pool: "ed-monitors", Kind: "equipment", Capacity: 10, Condition: 0.9},
				},
			},
			{
				ID: "icu", Kind: string(DeptICU), Capacity: 12,
				Pools: []PoolBinding{
					{Key: PoolKeyBed, Pool: "icu-beds"},
					{Key: PoolKeyIsolationRoom, Pool: "icu-isolation"},
					{Key: PoolKeyDoctor, Pool: "icu-doctors"},
					{Key: PoolKeyNurse, Pool: "icu-nurses"},
					{Key: PoolKeyMonitor, Pool: "icu-monitors"},
					{Key: PoolKeyVentilator, Pool: "icu-vents"},
				},
				Resources: []ResourceConfig{
					{ID: "icu-beds", Pool: "icu-beds", Kind: "bed", Capacity: 10, Condition: 1.0, ReservedForEmergency: 1, TurnoverTicks: 45},
					{ID: "icu-isolation", Pool: "icu-isolation", Kind: "room", Capacity: 2, Condition: 1.0, TurnoverTicks: 60},
					{ID: "icu-doctors", Pool: "icu-doctors", Kind: "staff", Capacity: 4, Condition: 1.0},
					{ID: "icu-nurses", Pool: "icu-nurses", Kind: "staff", Capacity: 12, Condition: 1.0},
					{ID: "icu-monitors", Pool: "icu-monitors", Kind: "equipment", Capacity: 12, Condition: 0.95},
					{ID: "icu-vents", Pool: "icu-vents", Kind: "equipment", Capacity: 8, Condition: 0.9},
				},
			},
			{
				ID: "ward", Kind: string(DeptWard), Capacity: 60,
				Pools: []PoolBinding{
					{Key: PoolKeyBed, Pool: "ward-beds"},
					{Key: PoolKeyDoctor, Pool: "ward-doctors"},
					{Key: PoolKeyNurse, Pool: "ward-nurses"},
				},
				Resources: []ResourceConfig{
					{ID: "ward-beds", Pool: "ward-beds", Kind: "bed", Capacity: 60, Condition: 1.0, TurnoverTicks: 30},
					{ID: "ward-doctors", Pool: "ward-doctors", Kind: "staff", Capacity: 6, Condition: 1.0},
					{ID: "ward-nurses", Pool: "ward-nurses", Kind: "staff", Capacity: 20, Condition: 1.0},
				},
			},
		},
		Shifts: []ShiftConfig{
			// Day shift adds ED staff from 07:00 for 12 hours.
			{ResourceID: "ed-doctors", Role: "doctor", Start: "0 7 * * *", DurationTicks: 12 * 60, Staff: 4},
			{ResourceID: "ed-nurses", Role: "nurse", Start: "0 7 * * *", DurationTicks: 12 * 60, Staff: 8},
			// Weekend surge nurses.
			{ResourceID: "ed-nurses", Role: "nurse", Start: "0 10 * * SAT,SUN", DurationTicks: 10 * 60, Staff: 4},
		},
	}
}
