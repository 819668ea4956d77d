package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/mazebot/internal/adapters/sqlite"
	"github.com/example/mazebot/internal/ports/secondary"
)

func TestRunRepository_GetNextID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "RUN-001" {
		t.Errorf("expected RUN-001, got %s", id)
	}

	createTestRun(t, repo, ctx, "explore")

	id, _ = repo.GetNextID(ctx)
	if id != "RUN-002" {
		t.Errorf("expected RUN-002, got %s", id)
	}
}

func TestRunRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	run := createTestRun(t, repo, ctx, "navigate")

	got, err := repo.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Mode != "navigate" || got.Outcome != "running" {
		t.Errorf("got mode=%s outcome=%s", got.Mode, got.Outcome)
	}
	if got.Rows != 3 || got.Cols != 4 || got.StartPose != "(0,0) N" {
		t.Errorf("unexpected geometry: %+v", got)
	}
	if got.Goal != "(3,2)" || got.TieBreak != "right" {
		t.Errorf("goal=%q tieBreak=%q", got.Goal, got.TieBreak)
	}
	if got.CreatedAt == "" {
		t.Error("expected CreatedAt to be set")
	}
	if got.CompletedAt != "" {
		t.Errorf("running run has CompletedAt %s", got.CompletedAt)
	}
}

func TestRunRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)

	if _, err := repo.GetByID(context.Background(), "RUN-999"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestRunRepository_Create_RejectsUnknownMode(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)

	err := repo.Create(context.Background(), &secondary.RunRecord{
		ID: "RUN-001", Mode: "wander", Outcome: "running", Rows: 1, Cols: 1, StartPose: "(0,0) N",
	})
	if err == nil {
		t.Error("expected CHECK constraint failure")
	}
}

func TestRunRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	run := createTestRun(t, repo, ctx, "navigate")
	run.Outcome = "goal_reached"
	run.Steps = 12
	run.Advances = 6
	run.ObstacleEvents = 1
	run.MoveFailures = 2
	run.IndeterminateReads = 3
	run.DriftEvents = 1
	run.FinalPose = "(3,2) E"

	if err := repo.Update(ctx, run); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, run.ID)
	if got.Outcome != "goal_reached" || got.Steps != 12 || got.Advances != 6 {
		t.Errorf("outcome/counters not stored: %+v", got)
	}
	if got.ObstacleEvents != 1 || got.MoveFailures != 2 || got.IndeterminateReads != 3 || got.DriftEvents != 1 {
		t.Errorf("event counters not stored: %+v", got)
	}
	if got.FinalPose != "(3,2) E" {
		t.Errorf("FinalPose = %q", got.FinalPose)
	}
	if got.CompletedAt == "" {
		t.Error("expected CompletedAt once the run finished")
	}
}

func TestRunRepository_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)

	err := repo.Update(context.Background(), &secondary.RunRecord{ID: "RUN-999", Outcome: "fault"})
	if err == nil {
		t.Error("expected error for missing run")
	}
}

func TestRunRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	first := createTestRun(t, repo, ctx, "explore")
	second := createTestRun(t, repo, ctx, "navigate")
	third := createTestRun(t, repo, ctx, "navigate")

	third.Outcome = "unreachable"
	if err := repo.Update(ctx, third); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	tests := []struct {
		name    string
		filters secondary.RunFilters
		wantIDs []string
	}{
		{"all newest first", secondary.RunFilters{}, []string{third.ID, second.ID, first.ID}},
		{"by mode", secondary.RunFilters{Mode: "navigate"}, []string{third.ID, second.ID}},
		{"by outcome", secondary.RunFilters{Outcome: "unreachable"}, []string{third.ID}},
		{"limit", secondary.RunFilters{Limit: 1}, []string{third.ID}},
		{"no match", secondary.RunFilters{Mode: "explore", Outcome: "goal_reached"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := repo.List(ctx, tt.filters)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(runs) != len(tt.wantIDs) {
				t.Fatalf("got %d runs, want %d", len(runs), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if runs[i].ID != id {
					t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, id)
				}
			}
		})
	}
}

func TestRunRepository_Cells(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	run := createTestRun(t, repo, ctx, "explore")

	first := []*secondary.CellRecord{
		{X: 1, Y: 0, State: "obstacle"},
		{X: 0, Y: 0, State: "traversable"},
	}
	if err := repo.SaveCells(ctx, run.ID, first); err != nil {
		t.Fatalf("SaveCells failed: %v", err)
	}

	cells, err := repo.ListCells(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListCells failed: %v", err)
	}
	if len(cells) != 2 || cells[0].X != 0 || cells[0].State != "traversable" || cells[0].RunID != run.ID {
		t.Errorf("cells = %+v, want (0,0) first", cells)
	}

	// saving again replaces the map
	if err := repo.SaveCells(ctx, run.ID, []*secondary.CellRecord{{X: 2, Y: 1, State: "unvisited"}}); err != nil {
		t.Fatalf("SaveCells failed: %v", err)
	}
	cells, _ = repo.ListCells(ctx, run.ID)
	if len(cells) != 1 || cells[0].X != 2 {
		t.Errorf("cells after replace = %+v", cells)
	}

	if err := repo.SaveCells(ctx, run.ID, []*secondary.CellRecord{{X: 0, Y: 0, State: "lava"}}); err == nil {
		t.Error("expected CHECK constraint failure for unknown state")
	}
	cells, _ = repo.ListCells(ctx, run.ID)
	if len(cells) != 1 {
		t.Errorf("failed save should roll back, got %d cells", len(cells))
	}
}
