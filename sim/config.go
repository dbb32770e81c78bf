package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// EmergenceConfig places first-leaf emergence of each cohort on the
// thermal-time axis: MainStemTT + (cohort-1) * Phyllochron.
type EmergenceConfig struct {
	MainStemTT  float64 `yaml:"ms_tt"`
	Phyllochron float64 `yaml:"phyllochron"`
}

// EmergenceTT returns the emergence thermal time of an axis of the given cohort.
func (e EmergenceConfig) EmergenceTT(cohort int) float64 {
	return e.MainStemTT + float64(cohort-1)*e.Phyllochron
}

// CohortStats is the per-cohort aggregate used by the deterministic path.
type CohortStats struct {
	Cohort    int     `yaml:"cohort"`
	TotalAxis float64 `yaml:"total_axis"` // mean number of axes of this cohort per plant
	NFF       float64 `yaml:"nff"`        // mean final leaf number
}

// AxisProbability is a theoretical joint probability of (cohort, axis).
type AxisProbability struct {
	Cohort      int     `yaml:"cohort"`
	Axis        string  `yaml:"axis"`
	Probability float64 `yaml:"probability"`
}

// FitConfig holds measured samples for the polynomial fit.
type FitConfig struct {
	X            []float64 `yaml:"x"`
	Y            []float64 `yaml:"y"`
	FixedCoefs   []float64 `yaml:"fixed_coefs"` // descending powers, leading coefficient excluded
	InitialGuess float64   `yaml:"initial_guess"`
}

// CalibrationConfig is the top-level calibration file.
// Loaded from YAML via LoadCalibrationConfig(path).
type CalibrationConfig struct {
	Seed                      int64                  `yaml:"seed"`
	Plants                    int                    `yaml:"plants"`
	ChildCohortProbabilities  map[int]float64        `yaml:"child_cohort_probabilities"`
	FirstChildDelay           int                    `yaml:"first_child_delay"`
	MSLeafNumberProbabilities map[float64]float64    `yaml:"ms_leaf_number_probabilities"`
	TillerLeafCoefficients    TillerLeafCoefficients `yaml:"tiller_leaf_coefficients"`
	Emergence                 EmergenceConfig        `yaml:"emergence"`
	BoltingTT                 float64                `yaml:"bolting_tt"`
	FloweringTT               float64                `yaml:"flowering_tt"`
	EarsPerPlant              float64                `yaml:"ears_per_plant"`
	Cohorts                   []CohortStats          `yaml:"cohorts,omitempty"`
	AxisProbabilities         []AxisProbability      `yaml:"axis_probabilities,omitempty"`
	Fit                       *FitConfig             `yaml:"fit,omitempty"`
}

// DefaultFirstChildDelay is the cohort delay between a parent and its first child.
const DefaultFirstChildDelay = 2

// LoadCalibrationConfig reads a calibration file with strict field checking.
func LoadCalibrationConfig(path string) (*CalibrationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading calibration: %w", err)
	}
	return ParseCalibrationConfig(data)
}

// ParseCalibrationConfig decodes calibration YAML; unknown fields are errors.
func ParseCalibrationConfig(data []byte) (*CalibrationConfig, error) {
	var cfg CalibrationConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing calibration: %w", err)
	}
	if cfg.FirstChildDelay == 0 {
		cfg.FirstChildDelay = DefaultFirstChildDelay
	}
	return &cfg, nil
}

// Window returns the bolting-flowering death window.
func (c *CalibrationConfig) Window() DeathWindow {
	return DeathWindow{BoltingTT: c.BoltingTT, FloweringTT: c.FloweringTT}
}

// Validate checks the fields used by the stochastic generator.
func (c *CalibrationConfig) Validate() error {
	if c.Plants <= 0 {
		return fmt.Errorf("plants must be positive, got %d: %w", c.Plants, ErrInputContract)
	}
	if c.FirstChildDelay < 1 {
		return fmt.Errorf("first_child_delay must be >= 1, got %d: %w", c.FirstChildDelay, ErrInputContract)
	}
	for cohort, p := range c.ChildCohortProbabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("child_cohort_probabilities[%d] = %g outside [0, 1]: %w", cohort, p, ErrInputContract)
		}
	}
	if len(c.MSLeafNumberProbabilities) == 0 {
		return fmt.Errorf("ms_leaf_number_probabilities required: %w", ErrInputContract)
	}
	if c.EarsPerPlant < 0 || math.IsNaN(c.EarsPerPlant) {
		return fmt.Errorf("ears_per_plant must be non-negative, got %g: %w", c.EarsPerPlant, ErrInputContract)
	}
	return c.Window().Validate()
}

// ValidateDeterministic checks the fields used by the deterministic generator.
func (c *CalibrationConfig) ValidateDeterministic() error {
	if c.Plants <= 0 {
		return fmt.Errorf("plants must be positive, got %d: %w", c.Plants, ErrInputContract)
	}
	if len(c.Cohorts) == 0 {
		return fmt.Errorf("cohorts required: %w", ErrInputContract)
	}
	for i, cs := range c.Cohorts {
		if cs.TotalAxis < 0 || cs.NFF < 0 || math.IsNaN(cs.TotalAxis) || math.IsNaN(cs.NFF) {
			return fmt.Errorf("cohorts[%d]: total_axis and nff must be non-negative: %w", i, ErrInputContract)
		}
	}
	for i, ap := range c.AxisProbabilities {
		if ap.Probability < 0 || ap.Probability > 1 || math.IsNaN(ap.Probability) {
			return fmt.Errorf("axis_probabilities[%d] = %g outside [0, 1]: %w", i, ap.Probability, ErrInputContract)
		}
	}
	return nil
}
