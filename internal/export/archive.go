package export

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	population  INTEGER NOT NULL,
	sim_time    REAL NOT NULL,
	dt          REAL NOT NULL,
	export_dir  TEXT NOT NULL,
	config      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS samples (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	time    REAL NOT NULL,
	mean_x  REAL NOT NULL,
	mean_la REAL NOT NULL,
	PRIMARY KEY (run_id, time)
);
`

// RunInfo describes the run stored in the archive.
type RunInfo struct {
	ID         string
	Population int
	SimTime    float64
	Dt         float64
	ExportDir  string
	Config     string // YAML
}

// Archive records a run and its samples in a SQLite database, so that many
// runs can be compared with SQL.
type Archive struct {
	schedule
	path  string
	run   RunInfo
	probe Probe
	now   func() time.Time

	db *sql.DB
}

// NewArchive creates an exporter appending to the database at path.
func NewArchive(path string, interval float64, run RunInfo, probe Probe) *Archive {
	return &Archive{
		schedule: schedule{interval: interval},
		path:     path,
		run:      run,
		probe:    probe,
		now:      time.Now,
	}
}

// Path returns the database file.
func (a *Archive) Path() string { return a.path }

// Before opens the database, creates the schema and inserts the run.
func (a *Archive) Before() error {
	if err := ensureDir(filepath.Dir(a.path)); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", a.path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, archiveSchema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create archive schema: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, population, sim_time, dt, export_dir, config) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.run.ID, a.now().UTC().Format(time.RFC3339), a.run.Population, a.run.SimTime, a.run.Dt, a.run.ExportDir, a.run.Config); err != nil {
		db.Close()
		return fmt.Errorf("failed to record run %s: %w", a.run.ID, err)
	}
	a.db = db
	return nil
}

// During inserts the current means.
func (a *Archive) During(t float64) error {
	meanX, meanLa := a.probe()
	if _, err := a.db.ExecContext(context.Background(),
		`INSERT INTO samples (run_id, time, mean_x, mean_la) VALUES (?, ?, ?, ?)`,
		a.run.ID, t, meanX, meanLa); err != nil {
		return fmt.Errorf("failed to record sample at %gs: %w", t, err)
	}
	return nil
}

// After marks the run finished and closes the database.
func (a *Archive) After() error {
	if a.db == nil {
		return nil
	}
	defer func() { a.db = nil }()
	_, err := a.db.ExecContext(context.Background(),
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		a.now().UTC().Format(time.RFC3339), a.run.ID)
	cerr := a.db.Close()
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", a.run.ID, err)
	}
	if cerr != nil {
		return fmt.Errorf("failed to close archive: %w", cerr)
	}
	return nil
}
