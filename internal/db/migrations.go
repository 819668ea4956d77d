package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_runs_and_run_events",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_run_cells_table",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_indeterminate_and_drift_counters",
		Up:      migrationV3,
	},
}

// RunMigrations executes all pending migrations
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}
	return runMigrations(db)
}

func createVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func runMigrations(db *sql.DB) error {
	if err := createVersionTable(db); err != nil {
		return err
	}

	// Get current schema version
	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d: %s\n", migration.Version, migration.Name)

		if err := migration.Up(db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		fmt.Printf("✓ Migration %d completed\n", migration.Version)
	}

	return nil
}

// migrationV1 creates the first run history tables
func migrationV1(db *sql.DB) error {
	_, err := db.Exec(`
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
			final_pose TEXT,
			error_message TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS run_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			position TEXT,
			detail TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create run_events table: %w", err)
	}

	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode)",
		"CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome)",
		"CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id)",
	} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// migrationV2 stores the final map of each run
func migrationV2(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS run_cells (
			run_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			state TEXT NOT NULL CHECK(state IN ('unvisited', 'traversable', 'obstacle')),
			PRIMARY KEY (run_id, x, y),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create run_cells table: %w", err)
	}
	return nil
}

// migrationV3 adds sensor counters to runs
func migrationV3(db *sql.DB) error {
	for _, col := range []string{"indeterminate_reads", "drift_events"} {
		exists, err := columnExists(db, "runs", col)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE runs ADD COLUMN %s INTEGER NOT NULL DEFAULT 0", col)); err != nil {
			return fmt.Errorf("failed to add %s column: %w", col, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	return count > 0, nil
}
