package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func useTempDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "mazebot.db")
	SetPath(path)
	t.Cleanup(func() {
		Close()
		SetPath("")
	})
	return path
}

func tableExists(t *testing.T, database *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return n > 0
}

func TestGetDB_FreshInstall(t *testing.T) {
	path := useTempDB(t)

	database, err := GetDB()
	if err != nil {
		t.Fatalf("GetDB failed: %v", err)
	}

	if got, _ := GetDBPath(); got != path {
		t.Errorf("GetDBPath() = %s, want %s", got, path)
	}
	for _, table := range []string{"runs", "run_cells", "run_events", "schema_version"} {
		if !tableExists(t, database, table) {
			t.Errorf("table %s missing", table)
		}
	}

	var applied int
	if err := database.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&applied); err != nil {
		t.Fatal(err)
	}
	if applied != len(migrations) {
		t.Errorf("fresh install recorded %d migrations, want %d", applied, len(migrations))
	}
}

func TestGetDB_UpgradesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mazebot.db")
	SetPath(path)
	t.Cleanup(func() {
		Close()
		SetPath("")
	})

	old, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	if err := migrationV1(old); err != nil {
		t.Fatalf("migrationV1 failed: %v", err)
	}
	if err := createVersionTable(old); err != nil {
		t.Fatal(err)
	}
	if _, err := old.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	old.Close()

	database, err := GetDB()
	if err != nil {
		t.Fatalf("GetDB failed: %v", err)
	}
	if !tableExists(t, database, "run_cells") {
		t.Error("pending migrations were not applied")
	}
}

func TestRunMigrations_FromVersionOne(t *testing.T) {
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := migrationV1(database); err != nil {
		t.Fatalf("migrationV1 failed: %v", err)
	}
	if err := createVersionTable(database); err != nil {
		t.Fatal(err)
	}
	if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		t.Fatal(err)
	}

	if err := runMigrations(database); err != nil {
		t.Fatalf("runMigrations failed: %v", err)
	}

	if !tableExists(t, database, "run_cells") {
		t.Error("run_cells not created")
	}
	for _, col := range []string{"indeterminate_reads", "drift_events"} {
		ok, err := columnExists(database, "runs", col)
		if err != nil || !ok {
			t.Errorf("column runs.%s missing (err=%v)", col, err)
		}
	}

	// Re-running is a no-op
	if err := runMigrations(database); err != nil {
		t.Errorf("second runMigrations failed: %v", err)
	}
}

func TestSeedFixtures(t *testing.T) {
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	if _, err := database.Exec(GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	if err := SeedFixtures(database); err != nil {
		t.Fatalf("SeedFixtures failed: %v", err)
	}

	var runs, cells int
	_ = database.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs)
	_ = database.QueryRow("SELECT COUNT(*) FROM run_cells").Scan(&cells)
	if runs != 2 || cells != 8 {
		t.Errorf("seeded %d runs and %d cells, want 2 and 8", runs, cells)
	}
}
