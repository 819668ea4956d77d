package db

// SchemaSQL is the complete schema for fresh installs.
// It reflects the current state after all migrations.
//
// Repository tests load it through GetSchemaSQL() so that a column used by
// adapter code but missing here fails with "no such column" at test time.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run `make test` to verify alignment
const SchemaSQL = `
-- Runs (one explore or navigate session)
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	mode TEXT NOT NULL CHECK(mode IN ('explore', 'navigate')),
	outcome TEXT NOT NULL CHECK(outcome IN ('running', 'goal_reached', 'explored', 'unreachable', 'fault', 'cancelled')) DEFAULT 'running',
	rows INTEGER NOT NULL,
	cols INTEGER NOT NULL,
	start_pose TEXT NOT NULL,
	goal TEXT,
	tie_break TEXT,
	seed INTEGER NOT NULL DEFAULT 0,
	steps INTEGER NOT NULL DEFAULT 0,
	advances INTEGER NOT NULL DEFAULT 0,
	obstacle_events INTEGER NOT NULL DEFAULT 0,
	move_failures INTEGER NOT NULL DEFAULT 0,
	indeterminate_reads INTEGER NOT NULL DEFAULT 0,
	drift_events INTEGER NOT NULL DEFAULT 0,
	final_pose TEXT,
	error_message TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode);
CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);

-- Final map of a run, one row per visited cell
CREATE TABLE IF NOT EXISTS run_cells (
	run_id TEXT NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	state TEXT NOT NULL CHECK(state IN ('unvisited', 'traversable', 'obstacle')),
	PRIMARY KEY (run_id, x, y),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

-- Run events (obstacles, move failures, drift, outcome)
CREATE TABLE IF NOT EXISTS run_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	position TEXT,
	detail TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id);
`

// InitSchema creates the database schema
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		// schema_version table exists - run any pending migrations
		return RunMigrations()
	}

	// Fresh install - create the current schema directly and mark
	// every migration as applied
	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
