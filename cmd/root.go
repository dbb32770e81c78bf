package cmd

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/plantgen/sim"
	"github.com/inference-sim/plantgen/sim/deterministic"
	"github.com/inference-sim/plantgen/sim/export"
)

var (
	// CLI flags shared by the generation commands
	configPath string // Calibration YAML
	seed       int64  // Seed for all random draws (overrides the file when set)
	plants     int    // Number of plants (overrides the file when set)
	logLevel   string // Log verbosity level
	outPath    string // CSV output ("" = stdout)
	dbPath     string // SQLite output ("" = none)
	runName    string // Run key inside the SQLite database
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "plantgen",
	Short: "Generate cereal plant architectures (axes, leaf numbers, death dates)",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// generateCmd runs the stochastic generator
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Sample a population: cohorts, final leaf numbers and axis death dates",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadCalibration(cmd)
		startTime := time.Now()
		logrus.Infof("Generating %d plants with seed %d", cfg.Plants, cfg.Seed)

		population, err := sim.GeneratePopulation(cfg, sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)))
		if err != nil {
			logrus.Fatalf("Generation failed: %v", err)
		}
		writeAxisTable(deterministic.AxeTable(population))
		logrus.Infof("Generation complete in %v.", time.Since(startTime))
	},
}

// deterministicCmd runs the rounding-based generator
var deterministicCmd = &cobra.Command{
	Use:   "deterministic",
	Short: "Build a population from per-cohort statistics by proportional rounding",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadCalibration(cmd)
		population, err := deterministic.Generate(cfg, sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)))
		if err != nil {
			logrus.Fatalf("Deterministic generation failed: %v", err)
		}
		writeAxisTable(deterministic.AxeTable(population))
	},
}

// loadCalibration reads --config and applies explicitly set overrides.
func loadCalibration(cmd *cobra.Command) *sim.CalibrationConfig {
	if configPath == "" {
		logrus.Fatalf("Calibration file not provided (--config).")
	}
	cfg, err := sim.LoadCalibrationConfig(configPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("plants") {
		cfg.Plants = plants
	}
	return cfg
}

// writeAxisTable sends the table to --out (or stdout) and optionally --db.
func writeAxisTable(rows []deterministic.AxisRow) {
	if outPath == "" {
		if err := export.WriteCSV(os.Stdout, rows); err != nil {
			logrus.Fatalf("Writing axis table: %v", err)
		}
	} else {
		if err := export.ExportCSV(outPath, rows); err != nil {
			logrus.Fatalf("Writing axis table: %v", err)
		}
		logrus.Infof("Wrote %d axes to %s", len(rows), outPath)
	}

	if dbPath == "" {
		return
	}
	w, err := export.OpenSQLite(dbPath)
	if err != nil {
		logrus.Fatalf("Opening database: %v", err)
	}
	defer func() { _ = w.Close() }()
	if err := w.Write(context.Background(), runName, rows); err != nil {
		logrus.Fatalf("Storing axis table: %v", err)
	}
	logrus.Infof("Stored %d axes as run %q in %s", len(rows), runName, dbPath)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	for _, c := range []*cobra.Command{generateCmd, deterministicCmd} {
		c.Flags().StringVar(&configPath, "config", "", "Path to calibration YAML")
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for random draws (overrides the calibration file)")
		c.Flags().IntVar(&plants, "plants", 1, "Number of plants (overrides the calibration file)")
		c.Flags().StringVar(&outPath, "out", "", "CSV output path (default stdout)")
		c.Flags().StringVar(&dbPath, "db", "", "SQLite database to store the axis table in")
		c.Flags().StringVar(&runName, "run", "default", "Run name inside the SQLite database")
		_ = c.MarkFlagRequired("config")
		rootCmd.AddCommand(c)
	}
}
