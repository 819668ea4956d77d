// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// RunRepository defines the secondary port for run history persistence.
type RunRepository interface {
	// GetNextID returns the next available run ID.
	GetNextID(ctx context.Context) (string, error)

	// Create persists a new run.
	Create(ctx context.Context, run *RunRecord) error

	// Update updates an existing run's counters and outcome.
	Update(ctx context.Context, run *RunRecord) error

	// GetByID retrieves a run by its ID.
	GetByID(ctx context.Context, id string) (*RunRecord, error)

	// List retrieves runs matching the given filters, newest first.
	List(ctx context.Context, filters RunFilters) ([]*RunRecord, error)

	// SaveCells replaces the stored final map of a run.
	SaveCells(ctx context.Context, runID string, cells []*CellRecord) error

	// ListCells retrieves the stored final map of a run.
	ListCells(ctx context.Context, runID string) ([]*CellRecord, error)
}

// RunRecord represents a run as stored in persistence.
type RunRecord struct {
	ID                 string
	Mode               string // explore, navigate
	Outcome            string // running, goal_reached, explored, unreachable, fault, cancelled
	Rows               int
	Cols               int
	StartPose          string
	Goal               string // empty for explore runs
	TieBreak           string
	Seed               int64
	Steps              int
	Advances           int
	ObstacleEvents     int
	MoveFailures       int
	IndeterminateReads int
	DriftEvents        int
	FinalPose          string
	ErrorMessage       string
	CreatedAt          string
	CompletedAt        string
}

// RunFilters contains filter criteria for querying runs.
type RunFilters struct {
	Mode    string
	Outcome string
	Limit   int
}

// CellRecord is one cell of a run's final map.
type CellRecord struct {
	RunID string
	X     int
	Y     int
	State string // unvisited, traversable, obstacle
}
