// root.go
//
// Cobra CLI for the hospital patient-flow simulator: `run` executes a single
// scenario, `compare` runs two scenario files side by side.

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hospital-sim/hospital-sim/sim"
	"github.com/hospital-sim/hospital-sim/sim/workload"
)

var (
	logLevel string

	configPath     string
	seed           int64
	horizon        int64
	speedFactor    float64
	initialWaiting int
	showChart      bool

	baselinePath  string
	candidatePath string
)

var rootCmd = &cobra.Command{
	Use:   "hospital-sim",
	Short: "Discrete-event simulator for hospital patient flow",
	Long: `hospital-sim models patient flow through a hospital as a discrete-event
simulation: stochastic arrivals enter the emergency department, move through
acuity-dependent treatment workflows that contend for beds, staff, and
equipment, and step down through the ICU and ward until discharge.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("bad log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation scenario and print its statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		applyOverrides(cmd, cfg)

		stats, err := runScenario(cfg)
		if err != nil {
			return err
		}
		stats.Print()
		if showChart {
			fmt.Println()
			fmt.Print(sim.OccupancyChart(stats.Hourly))
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run two scenario files and print their metrics side by side",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := loadConfig(baselinePath)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		cand, err := loadConfig(candidatePath)
		if err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		baseStats, err := runScenario(base)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		candStats, err := runScenario(cand)
		if err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		fmt.Print(sim.CompareRuns("baseline", baseStats, "candidate", candStats))
		return nil
	},
}

func loadConfig(path string) (*sim.SimulationConfig, error) {
	if path == "" {
		return sim.DefaultConfig(), nil
	}
	return sim.LoadConfig(path)
}

// applyOverrides lets run flags override the loaded config. Only flags the
// user actually set are applied.
func applyOverrides(cmd *cobra.Command, cfg *sim.SimulationConfig) {
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = horizon
	}
	if cmd.Flags().Changed("speed") {
		cfg.SpeedFactor = speedFactor
	}
	if cmd.Flags().Changed("initial-waiting") {
		cfg.InitialWaiting = initialWaiting
	}
}

func runScenario(cfg *sim.SimulationConfig) (*sim.Statistics, error) {
	s, err := sim.New(cfg)
	if err != nil {
		return nil, err
	}

	rng := sim.NewPartitionedRNG(cfg.Seed)
	gen := workload.NewGenerator(cfg, rng.Stream(sim.SubsystemArrivals), rng.Stream(sim.SubsystemAcuity))
	if cfg.InitialWaiting > 0 {
		s.SeedWaiting(gen.Backlog(cfg.InitialWaiting))
	}
	s.SetArrivalSource(gen)

	if err := s.Run(); err != nil {
		return nil, err
	}
	return s.Stats, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warn, error)")

	runCmd.Flags().StringVar(&configPath, "config", "", "scenario YAML file (default: built-in three-department hospital)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "random seed override")
	runCmd.Flags().Int64Var(&horizon, "horizon", 7*24*60, "run length in simulated minutes")
	runCmd.Flags().Float64Var(&speedFactor, "speed", 1.0, "workflow duration scale factor (2.0 halves step durations)")
	runCmd.Flags().IntVar(&initialWaiting, "initial-waiting", 0, "patients seeded onto the ED waiting list at start")
	runCmd.Flags().BoolVar(&showChart, "chart", false, "print the hourly occupancy chart")

	compareCmd.Flags().StringVar(&baselinePath, "baseline", "", "baseline scenario YAML file")
	compareCmd.Flags().StringVar(&candidatePath, "candidate", "", "candidate scenario YAML file")
	compareCmd.MarkFlagRequired("baseline")
	compareCmd.MarkFlagRequired("candidate")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
