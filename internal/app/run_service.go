package app

import (
	"context"
	"fmt"

	"github.com/example/mazebot/internal/core/grid"
	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/ports/secondary"
)

// RunServiceImpl implements the RunService interface.
type RunServiceImpl struct {
	runRepo secondary.RunRepository
	events  secondary.EventLog
}

// NewRunService creates a new RunService with injected dependencies.
func NewRunService(runRepo secondary.RunRepository, events secondary.EventLog) *RunServiceImpl {
	return &RunServiceImpl{
		runRepo: runRepo,
		events:  events,
	}
}

// ListRuns lists past runs with optional filters.
func (s *RunServiceImpl) ListRuns(ctx context.Context, filters primary.RunFilters) ([]*primary.Run, error) {
	records, err := s.runRepo.List(ctx, secondary.RunFilters{
		Mode:    filters.Mode,
		Outcome: filters.Outcome,
		Limit:   filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*primary.Run, len(records))
	for i, r := range records {
		runs[i] = recordToRun(r)
	}
	return runs, nil
}

// GetRun retrieves a past run with its final map and events.
func (s *RunServiceImpl) GetRun(ctx context.Context, runID string) (*primary.RunDetail, error) {
	record, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	cells, err := s.runRepo.ListCells(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load map for run %s: %w", runID, err)
	}

	detail := &primary.RunDetail{
		Run:                *recordToRun(record),
		TieBreak:           record.TieBreak,
		Seed:               record.Seed,
		MoveFailures:       record.MoveFailures,
		IndeterminateReads: record.IndeterminateReads,
		DriftEvents:        record.DriftEvents,
	}
	m, err := restoreMap(record.Rows, record.Cols, cells)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild map for run %s: %w", runID, err)
	}
	detail.Cells = m.Names()

	if s.events != nil {
		events, err := s.events.ListEvents(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to load events for run %s: %w", runID, err)
		}
		for _, e := range events {
			detail.Events = append(detail.Events, &primary.RunEvent{
				Kind:      e.Kind,
				Position:  e.Position,
				Detail:    e.Detail,
				CreatedAt: e.CreatedAt,
			})
		}
	}
	return detail, nil
}

func recordToRun(r *secondary.RunRecord) *primary.Run {
	return &primary.Run{
		ID:             r.ID,
		Mode:           r.Mode,
		Outcome:        r.Outcome,
		Rows:           r.Rows,
		Cols:           r.Cols,
		StartPose:      r.StartPose,
		Goal:           r.Goal,
		Steps:          r.Steps,
		Advances:       r.Advances,
		ObstacleEvents: r.ObstacleEvents,
		FinalPose:      r.FinalPose,
		ErrorMessage:   r.ErrorMessage,
		CreatedAt:      r.CreatedAt,
		CompletedAt:    r.CompletedAt,
	}
}

// restoreMap rebuilds the final map from stored cells. Cells missing from
// storage stay unvisited.
func restoreMap(rows, cols int, cells []*secondary.CellRecord) (*grid.Map, error) {
	snap := make([][]grid.State, rows)
	for y := range snap {
		snap[y] = make([]grid.State, cols)
	}
	for _, c := range cells {
		if c.Y < 0 || c.Y >= rows || c.X < 0 || c.X >= cols {
			return nil, fmt.Errorf("cell (%d,%d): %w", c.X, c.Y, grid.ErrOutOfBounds)
		}
		s, err := grid.ParseState(c.State)
		if err != nil {
			return nil, err
		}
		snap[c.Y][c.X] = s
	}
	return grid.Restore(snap)
}

// Ensure RunServiceImpl implements the interface
var _ primary.RunService = (*RunServiceImpl)(nil)
