package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/mazebot/internal/ctxutil"
	"github.com/example/mazebot/internal/ports/secondary"
)

// EventLogAdapter implements secondary.EventLog on the run_events table.
type EventLogAdapter struct {
	db *sql.DB
}

// NewEventLogAdapter creates a new EventLogAdapter.
func NewEventLogAdapter(db *sql.DB) *EventLogAdapter {
	return &EventLogAdapter{db: db}
}

// LogEvent writes an event for the run found in context.
func (a *EventLogAdapter) LogEvent(ctx context.Context, kind, position, detail string) error {
	runID := ctxutil.RunIDFromContext(ctx)
	if runID == "" {
		// No run context - skip logging
		// This happens for runs started with --no-save
		return nil
	}

	_, err := a.db.ExecContext(ctx,
		"INSERT INTO run_events (run_id, kind, position, detail) VALUES (?, ?, ?, ?)",
		runID, kind, nullString(position), nullString(detail),
	)
	if err != nil {
		return fmt.Errorf("failed to log %s event: %w", kind, err)
	}
	return nil
}

// ListEvents returns a run's events in the order they were written.
func (a *EventLogAdapter) ListEvents(ctx context.Context, runID string) ([]*secondary.EventRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT id, run_id, kind, position, detail, created_at FROM run_events WHERE run_id = ? ORDER BY id ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.EventRecord
	for rows.Next() {
		var (
			position, detail sql.NullString
			createdAt        time.Time
		)
		e := &secondary.EventRecord{}
		if err := rows.Scan(&e.ID, &e.RunID, &e.Kind, &position, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Position = position.String
		e.Detail = detail.String
		e.CreatedAt = createdAt.Format(time.RFC3339)
		events = append(events, e)
	}

	return events, rows.Err()
}

// Ensure EventLogAdapter implements the interface.
var _ secondary.EventLog = (*EventLogAdapter)(nil)
