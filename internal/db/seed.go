package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with a small run history for
// development: one finished exploration and one navigation that hit an obstacle.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().Format(time.RFC3339)

	runs := []struct {
		id, mode, outcome, start, goal, tieBreak, final string
		steps, advances, obstacles                      int
	}{
		{"RUN-001", "explore", "explored", "(0,0) N", "", "", "(0,0) N", 9, 3, 1},
		{"RUN-002", "navigate", "goal_reached", "(0,0) N", "(1,1)", "right", "(1,1) E", 4, 2, 1},
	}
	for _, r := range runs {
		if _, err := database.Exec(
			`INSERT INTO runs (id, mode, outcome, rows, cols, start_pose, goal, tie_break,
				steps, advances, obstacle_events, final_pose, created_at, completed_at)
			VALUES (?, ?, ?, 2, 2, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.id, r.mode, r.outcome, r.start, r.goal, r.tieBreak,
			r.steps, r.advances, r.obstacles, r.final, now, now,
		); err != nil {
			return fmt.Errorf("seed runs: %w", err)
		}
	}

	// Both runs share the same 2x2 arena with a single obstacle at (0,1)
	cells := []struct {
		x, y  int
		state string
	}{
		{0, 0, "traversable"},
		{1, 0, "traversable"},
		{0, 1, "obstacle"},
		{1, 1, "traversable"},
	}
	for _, r := range runs {
		for _, c := range cells {
			if _, err := database.Exec(
				"INSERT INTO run_cells (run_id, x, y, state) VALUES (?, ?, ?, ?)",
				r.id, c.x, c.y, c.state,
			); err != nil {
				return fmt.Errorf("seed run_cells: %w", err)
			}
		}
	}

	events := []struct{ runID, kind, position, detail string }{
		{"RUN-001", "obstacle", "(0,1)", "reversed and turned around"},
		{"RUN-001", "outcome", "(0,0) N", "explored"},
		{"RUN-002", "obstacle", "(0,1)", "reversed and turned around"},
		{"RUN-002", "outcome", "(1,1) E", "goal_reached"},
	}
	for _, e := range events {
		if _, err := database.Exec(
			"INSERT INTO run_events (run_id, kind, position, detail, created_at) VALUES (?, ?, ?, ?, ?)",
			e.runID, e.kind, e.position, e.detail, now,
		); err != nil {
			return fmt.Errorf("seed run_events: %w", err)
		}
	}

	return nil
}
