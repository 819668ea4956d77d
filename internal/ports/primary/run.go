package primary

import (
	"context"

	"github.com/example/mazebot/internal/core/classify"
	"github.com/example/mazebot/internal/core/navigate"
	"github.com/example/mazebot/internal/core/pose"
)

// ExplorerService defines the primary port for full-coverage runs.
type ExplorerService interface {
	// Explore visits every cell reachable from the start and returns the
	// final report. The report is returned alongside fault errors.
	Explore(ctx context.Context, req ExploreRequest) (*RunReport, error)
}

// NavigatorService defines the primary port for goal-seeking runs.
type NavigatorService interface {
	// Navigate drives towards the goal and returns the final report. The
	// report is returned alongside unreachable and fault errors.
	Navigate(ctx context.Context, req NavigateRequest) (*RunReport, error)
}

// RunService defines the primary port for run history.
type RunService interface {
	// ListRuns lists past runs with optional filters.
	ListRuns(ctx context.Context, filters RunFilters) ([]*Run, error)

	// GetRun retrieves a past run with its final map and events.
	GetRun(ctx context.Context, runID string) (*RunDetail, error)
}

// RunSettings are the parameters shared by both drivers.
type RunSettings struct {
	Rows  int
	Cols  int
	Start pose.Pose

	Policy            classify.IndeterminatePolicy
	MaxMoveFailures   int     // consecutive failures before the run faults; 0 means default
	DriftToleranceDeg float64 // 0 disables drift checks
	Save              bool    // persist the run when a repository is wired
}

// ExploreRequest contains parameters for an exploration run.
type ExploreRequest struct {
	RunSettings
}

// NavigateRequest contains parameters for a navigation run.
type NavigateRequest struct {
	RunSettings
	Goal     pose.Position
	TieBreak navigate.TieBreak
	Seed     int64
	MaxSteps int // 0 means rows*cols*4
}

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeGoalReached Outcome = "goal_reached"
	OutcomeExplored    Outcome = "explored"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeFault       Outcome = "fault"
	OutcomeCancelled   Outcome = "cancelled"
)

// RunReport is the diagnostic summary of a finished run.
type RunReport struct {
	RunID              string // empty when the run was not saved
	Mode               string
	Outcome            Outcome
	ReachedGoal        bool
	Steps              int
	Advances           int
	ObstacleEvents     int
	MoveFailures       int
	IndeterminateReads int
	DriftEvents        int
	FinalPose          pose.Pose
	Cells              [][]string // [y][x] state names, see grid.Map.Names
	Err                string
}

// Run represents a stored run at the port boundary.
type Run struct {
	ID             string
	Mode           string
	Outcome        string
	Rows           int
	Cols           int
	StartPose      string
	Goal           string
	Steps          int
	Advances       int
	ObstacleEvents int
	FinalPose      string
	ErrorMessage   string
	CreatedAt      string
	CompletedAt    string
}

// RunDetail is a stored run with its map and event log.
type RunDetail struct {
	Run
	TieBreak           string
	Seed               int64
	MoveFailures       int
	IndeterminateReads int
	DriftEvents        int
	Cells              [][]string // [y][x] state names
	Events             []*RunEvent
}

// RunEvent is one logged event of a run.
type RunEvent struct {
	Kind      string
	Position  string
	Detail    string
	CreatedAt string
}

// RunFilters contains filter options for listing runs.
type RunFilters struct {
	Mode    string
	Outcome string
	Limit   int
}
