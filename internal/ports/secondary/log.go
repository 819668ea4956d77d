package secondary

import "context"

// EventLog defines the interface for writing run events.
// Implementations extract the run ID from context.
type EventLog interface {
	// LogEvent records one event. position is the pose or cell it concerns.
	LogEvent(ctx context.Context, kind, position, detail string) error

	// ListEvents returns a run's events in the order they were written.
	ListEvents(ctx context.Context, runID string) ([]*EventRecord, error)
}

// EventRecord represents a run event as stored in persistence.
type EventRecord struct {
	ID        int64
	RunID     string
	Kind      string // obstacle, move_failed, indeterminate, drift, outcome
	Position  string
	Detail    string
	CreatedAt string
}
