package sim

import (
	"fmt"
	"math"
	"sort"
)

// targetTolerance absorbs floating point error when the decay line lands
// on an integer axis count.
const targetTolerance = 1e-9

// DeathWindow is the thermal-time window in which axes may stop growing.
type DeathWindow struct {
	BoltingTT   float64
	FloweringTT float64
}

// Validate checks 0 <= BoltingTT <= FloweringTT.
func (w DeathWindow) Validate() error {
	if math.IsNaN(w.BoltingTT) || math.IsNaN(w.FloweringTT) || w.BoltingTT < 0 || w.FloweringTT < 0 {
		return fmt.Errorf("bolting %g and flowering %g must be non-negative: %w", w.BoltingTT, w.FloweringTT, ErrInputContract)
	}
	if w.BoltingTT > w.FloweringTT {
		return fmt.Errorf("bolting %g after flowering %g: %w", w.BoltingTT, w.FloweringTT, ErrInputContract)
	}
	return nil
}

// axisDecay is the straight line through (bolting, max) and (flowering, min).
type axisDecay struct {
	window   DeathWindow
	min, max float64
}

// at returns the target number of living axes at thermal time tt, truncated.
func (d axisDecay) at(tt float64) int {
	span := d.window.FloweringTT - d.window.BoltingTT
	if span == 0 {
		return int(d.min)
	}
	v := d.min + (d.max-d.min)*(d.window.FloweringTT-tt)/span
	return int(math.Floor(v + targetTolerance))
}

type emergedAxis struct {
	tt    float64
	index int
}

// DecideTimeOfDeath assigns the thermal times at which axes stop growing.
//
// The number of living axes decays linearly from maxAxes at bolting to
// minAxes at flowering. Walking integer thermal-time steps across the
// window, whenever more axes are alive than the line allows, the latest
// emerged living axis dies at that step (ties: the highest index dies
// first). The result is aligned with emergenceTT; axes that never die are
// left unresolved.
func DecideTimeOfDeath(maxAxes, minAxes int, emergenceTT []float64, window DeathWindow) ([]StopTime, error) {
	if minAxes < 0 || maxAxes < minAxes {
		return nil, fmt.Errorf("need 0 <= min axes (%d) <= max axes (%d): %w", minAxes, maxAxes, ErrInputContract)
	}
	if maxAxes > len(emergenceTT) {
		return nil, fmt.Errorf("max axes %d exceeds the %d axes given: %w", maxAxes, len(emergenceTT), ErrInputContract)
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	alive := make([]emergedAxis, len(emergenceTT))
	for i, tt := range emergenceTT {
		if math.IsNaN(tt) {
			return nil, fmt.Errorf("axis %d emergence is NaN: %w", i, ErrInputContract)
		}
		alive[i] = emergedAxis{tt: tt, index: i}
	}
	sort.Slice(alive, func(i, j int) bool {
		if alive[i].tt != alive[j].tt {
			return alive[i].tt < alive[j].tt
		}
		return alive[i].index < alive[j].index
	})

	decay := axisDecay{window: window, min: float64(minAxes), max: float64(maxAxes)}
	stops := make([]StopTime, len(emergenceTT))
	remaining := maxAxes
	for step := int(window.BoltingTT); step <= int(window.FloweringTT); step++ {
		target := decay.at(float64(step))
		for remaining > target && remaining > 0 {
			last := alive[len(alive)-1]
			alive = alive[:len(alive)-1]
			stops[last.index] = StopTime{TT: float64(step), Valid: true}
			remaining--
		}
		if remaining == 0 {
			break
		}
	}
	return stops, nil
}
