package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// probabilityMassTolerance bounds how far a closed distribution may sum
// away from 1 before sampling refuses it.
const probabilityMassTolerance = 1e-6

// LeafNumberProbability is one candidate main stem final leaf number.
type LeafNumberProbability struct {
	LeafNumber  float64
	Probability float64
}

// LeafNumberDistribution is an ordered discrete distribution of main stem
// final leaf numbers. Order is ascending leaf number so that a seed always
// selects the same candidate.
type LeafNumberDistribution []LeafNumberProbability

// NewLeafNumberDistribution normalizes a leaf number -> probability map to
// ascending leaf number order and validates it.
func NewLeafNumberDistribution(probabilities map[float64]float64) (LeafNumberDistribution, error) {
	if len(probabilities) == 0 {
		return nil, fmt.Errorf("empty leaf number distribution: %w", ErrInputContract)
	}
	dist := make(LeafNumberDistribution, 0, len(probabilities))
	total := 0.0
	for n, p := range probabilities {
		if n < 0 {
			return nil, fmt.Errorf("negative leaf number %g: %w", n, ErrInputContract)
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("leaf number %g probability %g outside [0, 1]: %w", n, p, ErrInputContract)
		}
		total += p
		dist = append(dist, LeafNumberProbability{LeafNumber: n, Probability: p})
	}
	if math.Abs(total-1) > probabilityMassTolerance {
		return nil, fmt.Errorf("leaf number probabilities sum to %g, want 1: %w", total, ErrInputContract)
	}
	sort.Slice(dist, func(i, j int) bool { return dist[i].LeafNumber < dist[j].LeafNumber })
	return dist, nil
}

// SampleMainStemLeafNumber draws a main stem final leaf number by inverse
// CDF: the first candidate whose cumulative probability reaches the draw.
func SampleMainStemLeafNumber(dist LeafNumberDistribution, rng RandomSource) (float64, error) {
	if len(dist) == 0 {
		return 0, fmt.Errorf("empty leaf number distribution: %w", ErrInputContract)
	}
	if rng == nil {
		return 0, fmt.Errorf("nil random source: %w", ErrInputContract)
	}
	u := rng.Float64()
	cumulative := 0.0
	for _, c := range dist {
		cumulative += c.Probability
		if u <= cumulative {
			return c.LeafNumber, nil
		}
	}
	// Rounding can leave the cumulative mass a hair below a draw close to 1.
	if cumulative >= 1-probabilityMassTolerance {
		return dist[len(dist)-1].LeafNumber, nil
	}
	return 0, fmt.Errorf("draw %g exceeds probability mass %g: %w", u, cumulative, ErrInputContract)
}

// TillerLeafCoefficients relate tiller final leaf number to the main stem:
//
//	nff_tiller = A1 * nff_MS - A2 * cohort
type TillerLeafCoefficients struct {
	A1 float64 `yaml:"a_1"`
	A2 float64 `yaml:"a_2"`
}

// TillerLeafNumber computes the final leaf number of a tiller of the given
// cohort. The result is not clamped; see ClampLeafNumber.
func TillerLeafNumber(msFinalLeafNumber float64, cohort int, c TillerLeafCoefficients) float64 {
	return c.A1*msFinalLeafNumber - c.A2*float64(cohort)
}

// ClampLeafNumber enforces nff >= 0, warning when calibration produced a
// negative value.
func ClampLeafNumber(nff float64, axisID string) float64 {
	if nff < 0 {
		logrus.Warnf("axis %s: final leaf number %.3f is negative; clamped to 0", axisID, nff)
		return 0
	}
	return nff
}
