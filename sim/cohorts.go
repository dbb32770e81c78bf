package sim

import (
	"fmt"
	"sort"
)

// CohortNode is one produced cohort. Parent indexes the producing node in
// the same slice, -1 for the root.
type CohortNode struct {
	Cohort int
	Parent int
}

// cohortFrame is the traversal state of one parent cohort: the next
// candidate cohort to draw for.
type cohortFrame struct {
	node      int // index into the result, -1 for the seed parent
	cohort    int
	candidate int // position in the sorted candidate list
}

// DecideChildCohorts decides which cohorts a parent cohort actually
// produces, including the descendants of every produced cohort.
// Callers seed parentIndex = -1 and firstChildDelay = 2 so that the main
// stem (cohort 1) is always included.
func DecideChildCohorts(probabilities map[int]float64, parentIndex, firstChildDelay int, rng RandomSource) ([]int, error) {
	nodes, err := DecideCohortTree(probabilities, parentIndex, firstChildDelay, rng)
	if err != nil {
		return nil, err
	}
	cohorts := make([]int, len(nodes))
	for i, n := range nodes {
		cohorts[i] = n.Cohort
	}
	return cohorts, nil
}

// DecideCohortTree is DecideChildCohorts keeping the parent links.
//
// When parentIndex+firstChildDelay == 1 the main stem is included without
// a draw and becomes the next parent. Otherwise every cohort >=
// parentIndex+firstChildDelay, in ascending order, is included when its
// probability is >= a fresh uniform draw, and its own children are decided
// before moving to the next candidate. Nodes are returned in that
// depth-first discovery order, which is also the draw order.
func DecideCohortTree(probabilities map[int]float64, parentIndex, firstChildDelay int, rng RandomSource) ([]CohortNode, error) {
	if firstChildDelay < 1 {
		return nil, fmt.Errorf("first child delay must be >= 1, got %d: %w", firstChildDelay, ErrInputContract)
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source: %w", ErrInputContract)
	}
	candidates := make([]int, 0, len(probabilities))
	for cohort, p := range probabilities {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("cohort %d probability %g outside [0, 1]: %w", cohort, p, ErrInputContract)
		}
		candidates = append(candidates, cohort)
	}
	sort.Ints(candidates)

	var nodes []CohortNode
	stack := []cohortFrame{{node: -1, cohort: parentIndex}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		first := top.cohort + firstChildDelay

		if first == MainStemCohort {
			// Main stem always exists; it is the only child of this frame.
			parent := top.node
			stack = stack[:len(stack)-1]
			nodes = append(nodes, CohortNode{Cohort: MainStemCohort, Parent: parent})
			stack = append(stack, cohortFrame{node: len(nodes) - 1, cohort: MainStemCohort})
			continue
		}

		for top.candidate < len(candidates) && candidates[top.candidate] < first {
			top.candidate++
		}
		if top.candidate == len(candidates) {
			stack = stack[:len(stack)-1]
			continue
		}
		cohort := candidates[top.candidate]
		top.candidate++
		if probabilities[cohort] >= rng.Float64() {
			nodes = append(nodes, CohortNode{Cohort: cohort, Parent: top.node})
			stack = append(stack, cohortFrame{node: len(nodes) - 1, cohort: cohort})
		}
	}
	return nodes, nil
}
