package deterministic

import (
	"fmt"

	"github.com/inference-sim/plantgen/sim"
)

// PlantList distributes axis instances over nPlants empty plants, in input
// order. An axis may only join a plant that does not hold it yet and that
// already holds its parent (top-level axes may join any such plant). Among
// eligible plants the destination is drawn uniformly.
func PlantList(instances []AxisInstance, nPlants int, rng sim.RandomSource) ([]*sim.Plant, error) {
	if nPlants <= 0 {
		return nil, fmt.Errorf("plant count must be positive, got %d: %w", nPlants, sim.ErrInputContract)
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source: %w", sim.ErrInputContract)
	}
	plants := make([]*sim.Plant, nPlants)
	for i := range plants {
		plants[i] = sim.NewPlant(i + 1)
	}

	candidates := make([]*sim.Plant, 0, nPlants)
	for _, inst := range instances {
		candidates = candidates[:0]
		for _, p := range plants {
			if p.Accepts(inst.Axis) {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no plant can take axis %q of cohort %d (parent %q not placed or all plants full): %w",
				inst.Axis, inst.Cohort, sim.ParentID(inst.Axis), sim.ErrAllocationInfeasible)
		}
		pick := int(rng.Float64() * float64(len(candidates)))
		if pick >= len(candidates) {
			pick = len(candidates) - 1
		}
		axis := sim.Axis{ID: inst.Axis, Cohort: inst.Cohort, FinalLeafNumber: float64(inst.LeafNumber)}
		if err := candidates[pick].Add(axis); err != nil {
			return nil, err
		}
	}
	return plants, nil
}
