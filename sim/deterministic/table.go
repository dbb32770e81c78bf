package deterministic

import (
	"math"
	"sort"

	"github.com/inference-sim/plantgen/sim"
)

// AxisRow is one row of the flat axis table handed to phenology and
// dimension table builders.
type AxisRow struct {
	PlantID            int
	CohortID           int
	AxisID             string
	NPhytomerPotential float64
	PhenID             int // CohortID*100 + rounded NPhytomerPotential
	EmergenceTT        float64
	StopTT             sim.StopTime
}

// PhenID composes the phenology identifier of an axis.
func PhenID(cohort int, leafNumber float64) int {
	return cohort*100 + int(math.Round(leafNumber))
}

// AxeTable flattens plants into one row per axis, sorted by plant, then
// cohort, then axis identifier.
func AxeTable(plants []*sim.Plant) []AxisRow {
	var rows []AxisRow
	for _, p := range plants {
		for _, a := range p.Axes {
			rows = append(rows, AxisRow{
				PlantID:            p.ID,
				CohortID:           a.Cohort,
				AxisID:             a.ID,
				NPhytomerPotential: a.FinalLeafNumber,
				PhenID:             PhenID(a.Cohort, a.FinalLeafNumber),
				EmergenceTT:        a.EmergenceTT,
				StopTT:             a.Stop,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PlantID != rows[j].PlantID {
			return rows[i].PlantID < rows[j].PlantID
		}
		if rows[i].CohortID != rows[j].CohortID {
			return rows[i].CohortID < rows[j].CohortID
		}
		return rows[i].AxisID < rows[j].AxisID
	})
	return rows
}
