// Package export writes the flat axis table to CSV files and SQLite databases.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/inference-sim/plantgen/sim/deterministic"
)

// axisColumns is the column order of exported axis tables.
var axisColumns = []string{
	"id_plt", "id_cohort", "id_axis", "N_phytomer_potential", "id_phen", "TT_em_phytomer1", "TT_stop_axis",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes the header and one line per row to w.
// Unresolved stop times are written as "NA".
func WriteCSV(w io.Writer, rows []deterministic.AxisRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(axisColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.PlantID),
			strconv.Itoa(r.CohortID),
			r.AxisID,
			formatFloat(r.NPhytomerPotential),
			strconv.Itoa(r.PhenID),
			formatFloat(r.EmergenceTT),
			r.StopTT.String(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row for plant %d axis %s: %w", r.PlantID, r.AxisID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportCSV writes the axis table to a file at path.
func ExportCSV(path string, rows []deterministic.AxisRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating axis table file: %w", err)
	}
	defer func() { _ = file.Close() }()
	if err := WriteCSV(file, rows); err != nil {
		return err
	}
	return file.Close()
}
