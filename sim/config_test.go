package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate_CatchesBadConfigs(t *testing.T) {
	mutations := map[string]func(*SimulationConfig){
		"zero horizon":          func(c *SimulationConfig) { c.Horizon = 0 },
		"zero speed":            func(c *SimulationConfig) { c.SpeedFactor = 0 },
		"negative stats":        func(c *SimulationConfig) { c.StatsInterval = -1 },
		"negative backlog":      func(c *SimulationConfig) { c.InitialWaiting = -1 },
		"no departments":        func(c *SimulationConfig) { c.Departments = nil },
		"duplicate department":  func(c *SimulationConfig) { c.Departments[1].ID = c.Departments[0].ID },
		"unknown dept kind":     func(c *SimulationConfig) { c.Departments[0].Kind = "pharmacy" },
		"zero capacity":         func(c *SimulationConfig) { c.Departments[0].Capacity = 0 },
		"unknown resource kind": func(c *SimulationConfig) { c.Departments[0].Resources[0].Kind = "drone" },
		"missing entry":         func(c *SimulationConfig) { c.EntryDepartment = "" },
		"unknown entry":         func(c *SimulationConfig) { c.EntryDepartment = "ghost" },
		"shift bad resource":    func(c *SimulationConfig) { c.Shifts[0].ResourceID = "ghost" },
		"shift bad cron":        func(c *SimulationConfig) { c.Shifts[0].Start = "never" },
		"shift zero duration":   func(c *SimulationConfig) { c.Shifts[0].DurationTicks = 0 },
		"shift zero staff":      func(c *SimulationConfig) { c.Shifts[0].Staff = 0 },
		"negative rate":         func(c *SimulationConfig) { c.Arrivals.HourlyRates[3] = -1 },
		"negative multiplier":   func(c *SimulationConfig) { c.Arrivals.DayOfWeekMultipliers[0] = -0.5 },
	}
	for name, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	body := `
seed: 7
horizon: 1440
speed_factor: 2.0
initial_waiting: 5
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, int64(1440), cfg.Horizon)
	assert.Equal(t, 2.0, cfg.SpeedFactor)
	assert.Equal(t, 5, cfg.InitialWaiting)
	// Untouched sections keep their defaults.
	assert.Equal(t, "ed", cfg.EntryDepartment)
	assert.Len(t, cfg.Departments, 3)
}

func TestLoadConfig_RejectsMissingFileAndBadYAML(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("horizon: [not scalar"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	path2 := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path2, []byte("horizon: -10"), 0o644))
	_, err = LoadConfig(path2)
	assert.Error(t, err)
}
