package deterministic

import (
	"cmp"
	"fmt"
	"math"
	"sort"

	"github.com/inference-sim/plantgen/sim"
)

// Modalities splits a mean final leaf number into the two bracketing
// integer leaf numbers, weighted so the expectation equals nff.
// An integral nff yields a zero weight on floor+1.
func Modalities(nff float64) (map[int]float64, error) {
	if nff < 0 || math.IsNaN(nff) || math.IsInf(nff, 0) {
		return nil, fmt.Errorf("mean leaf number must be finite and >= 0, got %g: %w", nff, sim.ErrInputContract)
	}
	m1 := int(math.Floor(nff))
	p := float64(m1) + 1 - nff
	return map[int]float64{m1: p, m1 + 1: 1 - p}, nil
}

// byProportion returns the keys ordered by descending proportion; equal
// proportions keep ascending key order.
func byProportion[K cmp.Ordered](proportions map[K]float64) []K {
	keys := make([]K, 0, len(proportions))
	for k := range proportions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := proportions[keys[i]], proportions[keys[j]]
		if pi != pj {
			return pi > pj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Cardinalities allocates n units across categories proportionally.
// Each category first gets floor(p*n); the remaining units go one each to
// the categories with the largest proportions. Categories left at zero are
// dropped, so n == 0 yields an empty map. Counts always sum to n.
func Cardinalities[K cmp.Ordered](proportions map[K]float64, n int) (map[K]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot allocate %d units: %w", n, sim.ErrInputContract)
	}
	card := make(map[K]int, len(proportions))
	allocated := 0
	for k, p := range proportions {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("proportion of %v is %g: %w", k, p, sim.ErrInputContract)
		}
		c := int(math.Floor(p * float64(n)))
		card[k] = c
		allocated += c
	}
	missing := n - allocated
	if missing < 0 {
		return nil, fmt.Errorf("proportions over-allocate %d units by %d: %w", n, -missing, sim.ErrInputContract)
	}
	if missing > 0 {
		ranked := byProportion(proportions)
		if len(ranked) == 0 {
			return nil, fmt.Errorf("no category to allocate %d units to: %w", n, sim.ErrInputContract)
		}
		// Proportions summing below 1 leave more units than categories.
		for i := 0; i < missing; i++ {
			card[ranked[i%len(ranked)]]++
		}
	}
	for k, c := range card {
		if c == 0 {
			delete(card, k)
		}
	}
	return card, nil
}

// expand lists every key c times, keys in ascending order.
func expand[K cmp.Ordered](card map[K]int) []K {
	keys := make([]K, 0, len(card))
	for k := range card {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	var out []K
	for _, k := range keys {
		for j := 0; j < card[k]; j++ {
			out = append(out, k)
		}
	}
	return out
}

func total[K comparable](card map[K]int) int {
	n := 0
	for _, c := range card {
		n += c
	}
	return n
}
