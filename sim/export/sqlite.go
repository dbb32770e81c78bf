package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/inference-sim/plantgen/sim/deterministic"
)

// SQLiteWriter stores axis tables in a SQLite database, one run per call.
type SQLiteWriter struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteWriter, error) {
	if path == "" {
		path = "plantgen.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS axes (
		run TEXT NOT NULL,
		id_plt INTEGER NOT NULL,
		id_cohort INTEGER NOT NULL,
		id_axis TEXT NOT NULL,
		n_phytomer_potential REAL NOT NULL,
		id_phen INTEGER NOT NULL,
		tt_em_phytomer1 REAL NOT NULL,
		tt_stop_axis REAL,
		PRIMARY KEY (run, id_plt, id_axis)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create axes table: %w", err)
	}
	return &SQLiteWriter{db: db}, nil
}

// Write replaces the rows stored under run with rows, in one transaction.
func (w *SQLiteWriter) Write(ctx context.Context, run string, rows []deterministic.AxisRow) (retErr error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM axes WHERE run = ?`, run); err != nil {
		return fmt.Errorf("clear run %q: %w", run, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO axes
		(run, id_plt, id_cohort, id_axis, n_phytomer_potential, id_phen, tt_em_phytomer1, tt_stop_axis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range rows {
		stop := sql.NullFloat64{Float64: r.StopTT.TT, Valid: r.StopTT.Valid}
		if _, err := stmt.ExecContext(ctx, run, r.PlantID, r.CohortID, r.AxisID,
			r.NPhytomerPotential, r.PhenID, r.EmergenceTT, stop); err != nil {
			return fmt.Errorf("insert plant %d axis %s: %w", r.PlantID, r.AxisID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Read returns the rows stored under run in table order.
func (w *SQLiteWriter) Read(ctx context.Context, run string) ([]deterministic.AxisRow, error) {
	rows, err := w.db.QueryContext(ctx, `SELECT id_plt, id_cohort, id_axis, n_phytomer_potential, id_phen, tt_em_phytomer1, tt_stop_axis
		FROM axes WHERE run = ? ORDER BY id_plt, id_cohort, id_axis`, run)
	if err != nil {
		return nil, fmt.Errorf("select run %q: %w", run, err)
	}
	defer func() { _ = rows.Close() }()
	var out []deterministic.AxisRow
	for rows.Next() {
		var r deterministic.AxisRow
		var stop sql.NullFloat64
		if err := rows.Scan(&r.PlantID, &r.CohortID, &r.AxisID, &r.NPhytomerPotential, &r.PhenID, &r.EmergenceTT, &stop); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		r.StopTT.TT, r.StopTT.Valid = stop.Float64, stop.Valid
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
