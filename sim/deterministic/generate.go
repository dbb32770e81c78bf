package deterministic

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/plantgen/sim"
)

// Generate runs AxisList then PlantList for the calibration's cohort
// statistics. Plant assignment draws from the SubsystemPlants stream.
func Generate(cfg *sim.CalibrationConfig, rng *sim.PartitionedRNG) ([]*sim.Plant, error) {
	if err := cfg.ValidateDeterministic(); err != nil {
		return nil, fmt.Errorf("invalid calibration: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source: %w", sim.ErrInputContract)
	}
	instances, err := AxisList(cfg.Cohorts, cfg.AxisProbabilities, cfg.Plants)
	if err != nil {
		return nil, err
	}
	logrus.Infof("deterministic generation: %d axes over %d plants", len(instances), cfg.Plants)
	return PlantList(instances, cfg.Plants, rng.ForSubsystem(sim.SubsystemPlants))
}
