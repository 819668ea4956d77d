// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test setup goes through setupTestDB, which loads db.GetSchemaSQL() so
// tests run against the same schema as a fresh install.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/mazebot/internal/adapters/sqlite"
	"github.com/example/mazebot/internal/db"
	"github.com/example/mazebot/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// every connection to :memory: is a separate database
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// createTestRun creates a run with a generated ID.
func createTestRun(t *testing.T, repo *sqlite.RunRepository, ctx context.Context, mode string) *secondary.RunRecord {
	t.Helper()

	nextID, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}

	run := &secondary.RunRecord{
		ID:        nextID,
		Mode:      mode,
		Outcome:   "running",
		Rows:      3,
		Cols:      4,
		StartPose: "(0,0) N",
	}
	if mode == "navigate" {
		run.Goal = "(3,2)"
		run.TieBreak = "right"
	}

	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	return run
}
