package app

import (
	"context"
	"fmt"

	"github.com/example/mazebot/internal/core/grid"
	"github.com/example/mazebot/internal/core/pose"
	"github.com/example/mazebot/internal/ctxutil"
	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/ports/secondary"
)

const outcomeRunning = "running"

// recorder persists a run's lifecycle. A nil repository disables it.
type recorder struct {
	runs secondary.RunRepository
}

// begin creates the run record and returns a context carrying its ID.
// Nothing is stored when saving is off.
func (r recorder) begin(ctx context.Context, save bool, record *secondary.RunRecord) (context.Context, error) {
	if !save || r.runs == nil {
		return ctx, nil
	}

	nextID, err := r.runs.GetNextID(ctx)
	if err != nil {
		return ctx, fmt.Errorf("failed to generate run ID: %w", err)
	}
	record.ID = nextID
	record.Outcome = outcomeRunning

	if err := r.runs.Create(ctx, record); err != nil {
		return ctx, fmt.Errorf("failed to create run: %w", err)
	}
	return ctxutil.WithRunID(ctx, nextID), nil
}

// complete stores the report counters and the final map.
func (r recorder) complete(ctx context.Context, record *secondary.RunRecord, report *primary.RunReport, m *grid.Map) error {
	if record.ID == "" || r.runs == nil {
		return nil
	}
	report.RunID = record.ID

	record.Outcome = string(report.Outcome)
	record.Steps = report.Steps
	record.Advances = report.Advances
	record.ObstacleEvents = report.ObstacleEvents
	record.MoveFailures = report.MoveFailures
	record.IndeterminateReads = report.IndeterminateReads
	record.DriftEvents = report.DriftEvents
	record.FinalPose = report.FinalPose.String()
	record.ErrorMessage = report.Err

	if err := r.runs.Update(ctx, record); err != nil {
		return fmt.Errorf("failed to update run %s: %w", record.ID, err)
	}
	if err := r.runs.SaveCells(ctx, record.ID, cellRecords(record.ID, m)); err != nil {
		return fmt.Errorf("failed to save map for run %s: %w", record.ID, err)
	}
	return nil
}

func newRunRecord(mode string, s primary.RunSettings) *secondary.RunRecord {
	return &secondary.RunRecord{
		Mode:      mode,
		Rows:      s.Rows,
		Cols:      s.Cols,
		StartPose: s.Start.String(),
	}
}

func cellRecords(runID string, m *grid.Map) []*secondary.CellRecord {
	cells := make([]*secondary.CellRecord, 0, m.Size())
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			st, _ := m.At(pose.Position{X: x, Y: y})
			cells = append(cells, &secondary.CellRecord{RunID: runID, X: x, Y: y, State: st.String()})
		}
	}
	return cells
}
