package sim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MainStemID is the axis identifier of the main stem of every plant.
const MainStemID = "MS"

// MainStemCohort is the cohort index of the main stem.
const MainStemCohort = 1

// StopTime is the thermal time at which an axis stops growing.
// Valid is false when the axis is still growing at the end of the
// bolting-flowering window.
type StopTime struct {
	TT    float64
	Valid bool
}

// String renders unresolved stop times as "NA".
func (s StopTime) String() string {
	if !s.Valid {
		return "NA"
	}
	return strconv.FormatFloat(s.TT, 'f', -1, 64)
}

// Axis is one stem (main stem or tiller) of one plant.
type Axis struct {
	ID              string   // hierarchical identifier: "MS", "T1", "T1.2"
	Cohort          int      // 1 for the main stem
	FinalLeafNumber float64  // nff, >= 0
	EmergenceTT     float64  // thermal time of first leaf tip emergence
	Stop            StopTime // unset until death is scheduled
}

// Parent returns the identifier of the axis this one branches from.
// Main stem and primary tillers return "".
func (a Axis) Parent() string {
	return ParentID(a.ID)
}

// ParentID strips the last dot-separated segment of an axis identifier.
func ParentID(id string) string {
	i := strings.LastIndex(id, ".")
	if i < 0 {
		return ""
	}
	return id[:i]
}

// ChildID names the tiller of cohort child branching from parentID (of
// cohort parent). The rank counts cohorts from the first one reachable
// after firstChildDelay, starting at 1.
func ChildID(parentID string, parent, child, firstChildDelay int) string {
	rank := child - parent - firstChildDelay + 1
	if parentID == MainStemID {
		return "T" + strconv.Itoa(rank)
	}
	return parentID + "." + strconv.Itoa(rank)
}

// Plant is a set of axes keyed by axis identifier.
// Every axis's parent is either "" or already present.
type Plant struct {
	ID   int // 1-based
	Axes map[string]Axis
}

// NewPlant returns an empty plant.
func NewPlant(id int) *Plant {
	return &Plant{ID: id, Axes: make(map[string]Axis)}
}

// Has reports whether the plant holds an axis with the given identifier.
func (p *Plant) Has(id string) bool {
	_, ok := p.Axes[id]
	return ok
}

// Accepts reports whether axis id can be added: not already present and
// its parent placed (or top-level).
func (p *Plant) Accepts(id string) bool {
	if p.Has(id) {
		return false
	}
	parent := ParentID(id)
	return parent == "" || p.Has(parent)
}

// Add inserts an axis, enforcing the parent-existence invariant.
func (p *Plant) Add(a Axis) error {
	if !p.Accepts(a.ID) {
		return fmt.Errorf("plant %d: cannot add axis %q (duplicate or parent %q missing): %w",
			p.ID, a.ID, a.Parent(), ErrAllocationInfeasible)
	}
	p.Axes[a.ID] = a
	return nil
}

// Sorted returns the axes ordered by cohort then identifier.
func (p *Plant) Sorted() []Axis {
	out := make([]Axis, 0, len(p.Axes))
	for _, a := range p.Axes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cohort != out[j].Cohort {
			return out[i].Cohort < out[j].Cohort
		}
		return out[i].ID < out[j].ID
	})
	return out
}
