// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/mazebot/internal/ports/secondary"
)

const runColumns = `id, mode, outcome, rows, cols, start_pose, goal, tie_break, seed,
	steps, advances, obstacle_events, move_failures, indeterminate_reads, drift_events,
	final_pose, error_message, created_at, completed_at`

// RunRepository implements secondary.RunRepository with SQLite.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new SQLite run repository.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// GetNextID returns the next available run ID.
func (r *RunRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM runs",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next run ID: %w", err)
	}

	return fmt.Sprintf("RUN-%03d", maxID+1), nil
}

// Create persists a new run.
func (r *RunRepository) Create(ctx context.Context, run *secondary.RunRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, outcome, rows, cols, start_pose, goal, tie_break, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.Outcome, run.Rows, run.Cols, run.StartPose,
		nullString(run.Goal), nullString(run.TieBreak), run.Seed,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// Update stores a run's outcome and counters. Leaving the running state
// stamps completed_at.
func (r *RunRepository) Update(ctx context.Context, run *secondary.RunRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE runs SET outcome = ?, steps = ?, advances = ?, obstacle_events = ?,
			move_failures = ?, indeterminate_reads = ?, drift_events = ?,
			final_pose = ?, error_message = ?,
			completed_at = CASE WHEN ? = 'running' THEN NULL ELSE CURRENT_TIMESTAMP END
		WHERE id = ?`,
		run.Outcome, run.Steps, run.Advances, run.ObstacleEvents,
		run.MoveFailures, run.IndeterminateReads, run.DriftEvents,
		nullString(run.FinalPose), nullString(run.ErrorMessage),
		run.Outcome, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}

	return nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return record, nil
}

// List retrieves runs matching the given filters, newest first.
func (r *RunRepository) List(ctx context.Context, filters secondary.RunFilters) ([]*secondary.RunRecord, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE 1=1"
	var args []any

	if filters.Mode != "" {
		query += " AND mode = ?"
		args = append(args, filters.Mode)
	}
	if filters.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, filters.Outcome)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, record)
	}

	return runs, rows.Err()
}

// SaveCells replaces the stored final map of a run.
func (r *RunRepository) SaveCells(ctx context.Context, runID string, cells []*secondary.CellRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_cells WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear cells: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO run_cells (run_id, x, y, state) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare cell insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cells {
		if _, err := stmt.ExecContext(ctx, runID, c.X, c.Y, c.State); err != nil {
			return fmt.Errorf("failed to save cell (%d,%d): %w", c.X, c.Y, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cells: %w", err)
	}
	return nil
}

// ListCells retrieves the stored final map of a run.
func (r *RunRepository) ListCells(ctx context.Context, runID string) ([]*secondary.CellRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT run_id, x, y, state FROM run_cells WHERE run_id = ? ORDER BY y ASC, x ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cells: %w", err)
	}
	defer rows.Close()

	var cells []*secondary.CellRecord
	for rows.Next() {
		c := &secondary.CellRecord{}
		if err := rows.Scan(&c.RunID, &c.X, &c.Y, &c.State); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		cells = append(cells, c)
	}

	return cells, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*secondary.RunRecord, error) {
	var (
		goal, tieBreak      sql.NullString
		finalPose, errorMsg sql.NullString
		createdAt           time.Time
		completedAt         sql.NullTime
	)

	record := &secondary.RunRecord{}
	err := s.Scan(
		&record.ID, &record.Mode, &record.Outcome, &record.Rows, &record.Cols,
		&record.StartPose, &goal, &tieBreak, &record.Seed,
		&record.Steps, &record.Advances, &record.ObstacleEvents, &record.MoveFailures,
		&record.IndeterminateReads, &record.DriftEvents,
		&finalPose, &errorMsg, &createdAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Goal = goal.String
	record.TieBreak = tieBreak.String
	record.FinalPose = finalPose.String
	record.ErrorMessage = errorMsg.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ensure RunRepository implements the interface.
var _ secondary.RunRepository = (*RunRepository)(nil)
