package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// GeneratePopulation builds a stochastic population of cfg.Plants plants.
//
// Per plant: cohorts are decided from the child cohort probabilities, the
// main stem final leaf number is drawn, tiller leaf numbers follow from the
// tiller coefficients, and emergence is placed by cohort. Death dates are
// then scheduled over the whole population: axes decay from all generated
// axes at bolting to round(EarsPerPlant * Plants) at flowering.
func GeneratePopulation(cfg *CalibrationConfig, rng *PartitionedRNG) ([]*Plant, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source: %w", ErrInputContract)
	}
	dist, err := NewLeafNumberDistribution(cfg.MSLeafNumberProbabilities)
	if err != nil {
		return nil, err
	}
	cohortRNG := rng.ForSubsystem(SubsystemCohorts)
	leafRNG := rng.ForSubsystem(SubsystemLeaves)

	plants := make([]*Plant, cfg.Plants)
	for i := range plants {
		p, err := generatePlant(i+1, cfg, dist, cohortRNG, leafRNG)
		if err != nil {
			return nil, err
		}
		plants[i] = p
		logrus.Debugf("plant %d: %d axes", p.ID, len(p.Axes))
	}

	if err := scheduleDeaths(plants, cfg); err != nil {
		return nil, err
	}
	return plants, nil
}

func generatePlant(id int, cfg *CalibrationConfig, dist LeafNumberDistribution, cohortRNG, leafRNG RandomSource) (*Plant, error) {
	// Seeding one delay before the main stem makes cohort 1 the root.
	nodes, err := DecideCohortTree(cfg.ChildCohortProbabilities, MainStemCohort-cfg.FirstChildDelay, cfg.FirstChildDelay, cohortRNG)
	if err != nil {
		return nil, fmt.Errorf("plant %d: %w", id, err)
	}
	msNFF, err := SampleMainStemLeafNumber(dist, leafRNG)
	if err != nil {
		return nil, fmt.Errorf("plant %d: %w", id, err)
	}

	plant := NewPlant(id)
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		var axis Axis
		switch {
		case n.Parent < 0:
			axis = Axis{ID: MainStemID, Cohort: n.Cohort, FinalLeafNumber: msNFF}
		default:
			parent := nodes[n.Parent]
			axis.ID = ChildID(ids[n.Parent], parent.Cohort, n.Cohort, cfg.FirstChildDelay)
			axis.Cohort = n.Cohort
			axis.FinalLeafNumber = ClampLeafNumber(TillerLeafNumber(msNFF, n.Cohort, cfg.TillerLeafCoefficients), axis.ID)
		}
		axis.EmergenceTT = cfg.Emergence.EmergenceTT(n.Cohort)
		ids[i] = axis.ID
		if err := plant.Add(axis); err != nil {
			return nil, err
		}
	}
	return plant, nil
}

// scheduleDeaths runs DecideTimeOfDeath over every axis of the population
// and writes the stop times back.
func scheduleDeaths(plants []*Plant, cfg *CalibrationConfig) error {
	type ref struct {
		plant *Plant
		id    string
	}
	var refs []ref
	var emergence []float64
	for _, p := range plants {
		for _, a := range p.Sorted() {
			refs = append(refs, ref{plant: p, id: a.ID})
			emergence = append(emergence, a.EmergenceTT)
		}
	}

	maxAxes := len(emergence)
	minAxes := int(math.Round(cfg.EarsPerPlant * float64(cfg.Plants)))
	if minAxes > maxAxes {
		logrus.Warnf("ears target %d exceeds the %d generated axes; no axis will stop growing", minAxes, maxAxes)
		minAxes = maxAxes
	}

	stops, err := DecideTimeOfDeath(maxAxes, minAxes, emergence, cfg.Window())
	if err != nil {
		return fmt.Errorf("scheduling axis death: %w", err)
	}
	for i, r := range refs {
		a := r.plant.Axes[r.id]
		a.Stop = stops[i]
		r.plant.Axes[r.id] = a
	}
	return nil
}
