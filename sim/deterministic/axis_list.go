package deterministic

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/plantgen/sim"
)

// AxisInstance is one axis of the population before it is given a plant.
type AxisInstance struct {
	Cohort     int
	LeafNumber int    // leaf number modality
	Axis       string // axis identifier, e.g. "MS", "T1", "T1.2"
}

// jointByCohort groups theoretical (cohort, axis) probabilities per cohort
// and renormalizes each group to sum to 1.
func jointByCohort(joint []sim.AxisProbability) (map[int]map[string]float64, error) {
	grouped := make(map[int]map[string]float64)
	for _, ap := range joint {
		if ap.Probability < 0 || math.IsNaN(ap.Probability) {
			return nil, fmt.Errorf("cohort %d axis %q probability %g: %w", ap.Cohort, ap.Axis, ap.Probability, sim.ErrInputContract)
		}
		if grouped[ap.Cohort] == nil {
			grouped[ap.Cohort] = make(map[string]float64)
		}
		grouped[ap.Cohort][ap.Axis] += ap.Probability
	}
	for cohort, axes := range grouped {
		sum := 0.0
		for _, p := range axes {
			sum += p
		}
		if sum == 0 {
			delete(grouped, cohort)
			continue
		}
		for a, p := range axes {
			axes[a] = p / sum
		}
	}
	return grouped, nil
}

// AxisList computes the axes of a stand of nPlants plants.
//
// Each cohort gets round(TotalAxis * nPlants) axes. Those are split across
// the two leaf number modalities of the cohort's mean nff, and, in
// parallel, across axis identifiers using the joint probabilities
// renormalized within the cohort. The two expanded lists (both in ascending
// order) are paired one to one. Output is ordered by cohort.
func AxisList(cohorts []sim.CohortStats, joint []sim.AxisProbability, nPlants int) ([]AxisInstance, error) {
	if nPlants < 0 {
		return nil, fmt.Errorf("plant count %d: %w", nPlants, sim.ErrInputContract)
	}
	axisProba, err := jointByCohort(joint)
	if err != nil {
		return nil, err
	}

	sorted := make([]sim.CohortStats, len(cohorts))
	copy(sorted, cohorts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cohort < sorted[j].Cohort })

	var out []AxisInstance
	for i, c := range sorted {
		if i > 0 && sorted[i-1].Cohort == c.Cohort {
			return nil, fmt.Errorf("cohort %d listed twice: %w", c.Cohort, sim.ErrInputContract)
		}
		if c.TotalAxis < 0 || math.IsNaN(c.TotalAxis) {
			return nil, fmt.Errorf("cohort %d total_axis %g: %w", c.Cohort, c.TotalAxis, sim.ErrInputContract)
		}
		count := int(math.Round(c.TotalAxis * float64(nPlants)))

		modal, err := Modalities(c.NFF)
		if err != nil {
			return nil, fmt.Errorf("cohort %d: %w", c.Cohort, err)
		}
		mods, err := Cardinalities(modal, count)
		if err != nil {
			return nil, fmt.Errorf("cohort %d modalities: %w", c.Cohort, err)
		}
		n := total(mods)
		if n == 0 {
			continue
		}

		proba, ok := axisProba[c.Cohort]
		if !ok {
			return nil, fmt.Errorf("cohort %d has %d axes but no axis probabilities: %w", c.Cohort, n, sim.ErrInputContract)
		}
		axes, err := Cardinalities(proba, n)
		if err != nil {
			return nil, fmt.Errorf("cohort %d axes: %w", c.Cohort, err)
		}

		leafNumbers := expand(mods)
		names := expand(axes)
		for k := range leafNumbers {
			out = append(out, AxisInstance{Cohort: c.Cohort, LeafNumber: leafNumbers[k], Axis: names[k]})
		}
		logrus.Debugf("cohort %d: %d axes, modalities %v, axes %v", c.Cohort, n, mods, axes)
	}
	return out, nil
}
