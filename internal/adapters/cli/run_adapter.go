package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/mazebot/internal/core/grid"
	"github.com/example/mazebot/internal/core/pose"
	"github.com/example/mazebot/internal/ports/primary"
)

// mapGlyphs is the coloured glyph set for terminal maps. It is built per
// call so color.NoColor is honoured.
func mapGlyphs() grid.Glyphs {
	robot := color.New(color.FgCyan, color.Bold)
	return grid.Glyphs{
		Unvisited:   color.New(color.FgYellow).Sprint("⍰"),
		Traversable: color.New(color.FgGreen).Sprint("□"),
		Obstacle:    color.New(color.FgRed).Sprint("■"),
		Robot:       [4]string{robot.Sprint("▲"), robot.Sprint("▶"), robot.Sprint("▼"), robot.Sprint("◀")},
		Separator:   " ",
	}
}

// RunAdapter translates CLI operations to the run services and prints reports.
type RunAdapter struct {
	explorer  primary.ExplorerService
	navigator primary.NavigatorService
	runs      primary.RunService
	out       io.Writer
}

// NewRunAdapter creates a new RunAdapter. runs may be nil when history is disabled.
func NewRunAdapter(explorer primary.ExplorerService, navigator primary.NavigatorService, runs primary.RunService, out io.Writer) *RunAdapter {
	return &RunAdapter{
		explorer:  explorer,
		navigator: navigator,
		runs:      runs,
		out:       out,
	}
}

// Explore runs a full-coverage exploration and prints the report.
// A fault still prints the report before the error is returned.
func (a *RunAdapter) Explore(ctx context.Context, req primary.ExploreRequest) (*primary.RunReport, error) {
	report, err := a.explorer.Explore(ctx, req)
	if report != nil {
		a.PrintReport(report)
	}
	if err != nil {
		return report, fmt.Errorf("exploration failed: %w", err)
	}
	return report, nil
}

// Navigate runs a goal-seeking navigation and prints the report.
func (a *RunAdapter) Navigate(ctx context.Context, req primary.NavigateRequest) (*primary.RunReport, error) {
	fmt.Fprintf(a.out, "Navigating %s → %s (tie-break %s)\n", req.Start, req.Goal, tieBreakName(req))
	report, err := a.navigator.Navigate(ctx, req)
	if report != nil {
		a.PrintReport(report)
	}
	if err != nil {
		return report, fmt.Errorf("navigation failed: %w", err)
	}
	return report, nil
}

// PrintReport writes the map and the summary of a finished run.
func (a *RunAdapter) PrintReport(report *primary.RunReport) {
	fmt.Fprintln(a.out)
	final := report.FinalPose
	fmt.Fprint(a.out, RenderMap(report.Cells, &final))
	fmt.Fprintln(a.out)

	fmt.Fprintf(a.out, "%s %s run %s\n", outcomeIcon(string(report.Outcome)), report.Mode, report.Outcome)
	if report.RunID != "" {
		fmt.Fprintf(a.out, "  Run:        %s\n", report.RunID)
	}
	fmt.Fprintf(a.out, "  Final pose: %s\n", report.FinalPose)
	fmt.Fprintf(a.out, "  Steps:      %d (%d advances)\n", report.Steps, report.Advances)
	fmt.Fprintf(a.out, "  Obstacles:  %d\n", report.ObstacleEvents)
	if report.MoveFailures > 0 || report.IndeterminateReads > 0 || report.DriftEvents > 0 {
		fmt.Fprintf(a.out, "  Faults:     %d move failures, %d indeterminate reads, %d drift events\n",
			report.MoveFailures, report.IndeterminateReads, report.DriftEvents)
	}
	if report.Err != "" {
		fmt.Fprintf(a.out, "  Error:      %s\n", color.New(color.FgRed).Sprint(report.Err))
	}
}

// List lists stored runs.
func (a *RunAdapter) List(ctx context.Context, filters primary.RunFilters) ([]*primary.Run, error) {
	runs, err := a.history().ListRuns(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Start one with:")
		fmt.Fprintln(a.out, "  mazebot explore --world arena.yaml")
		return runs, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tOUTCOME\tGRID\tSTEPS\tOBSTACLES\tFINAL\tCREATED")
	fmt.Fprintln(w, "--\t----\t-------\t----\t-----\t---------\t-----\t-------")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.Mode, r.Outcome, r.Cols, r.Rows, r.Steps, r.ObstacleEvents, r.FinalPose, r.CreatedAt)
	}
	w.Flush()

	return runs, nil
}

// Show displays a stored run with its final map and events.
func (a *RunAdapter) Show(ctx context.Context, runID string) (*primary.RunDetail, error) {
	run, err := a.history().GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	fmt.Fprintf(a.out, "\nRun: %s\n", run.ID)
	fmt.Fprintf(a.out, "Mode:      %s\n", run.Mode)
	fmt.Fprintf(a.out, "Outcome:   %s %s\n", outcomeIcon(run.Outcome), run.Outcome)
	fmt.Fprintf(a.out, "Grid:      %dx%d\n", run.Cols, run.Rows)
	fmt.Fprintf(a.out, "Start:     %s\n", run.StartPose)
	if run.Goal != "" {
		fmt.Fprintf(a.out, "Goal:      %s (tie-break %s, seed %d)\n", run.Goal, run.TieBreak, run.Seed)
	}
	fmt.Fprintf(a.out, "Final:     %s\n", run.FinalPose)
	fmt.Fprintf(a.out, "Steps:     %d (%d advances)\n", run.Steps, run.Advances)
	fmt.Fprintf(a.out, "Obstacles: %d\n", run.ObstacleEvents)
	fmt.Fprintf(a.out, "Faults:    %d move failures, %d indeterminate reads, %d drift events\n",
		run.MoveFailures, run.IndeterminateReads, run.DriftEvents)
	if run.ErrorMessage != "" {
		fmt.Fprintf(a.out, "Error:     %s\n", run.ErrorMessage)
	}
	fmt.Fprintf(a.out, "Created:   %s\n", run.CreatedAt)
	if run.CompletedAt != "" {
		fmt.Fprintf(a.out, "Completed: %s\n", run.CompletedAt)
	}

	fmt.Fprintln(a.out)
	var final *pose.Pose
	if p, err := parseReportPose(run.FinalPose); err == nil {
		final = &p
	}
	fmt.Fprint(a.out, RenderMap(run.Cells, final))

	if len(run.Events) > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Events:")
		for _, e := range run.Events {
			fmt.Fprintf(a.out, "  %-13s %-9s %s\n", e.Kind, e.Position, e.Detail)
		}
	}
	fmt.Fprintln(a.out)

	return run, nil
}

func (a *RunAdapter) history() primary.RunService {
	if a.runs == nil {
		return noHistory{}
	}
	return a.runs
}

// RenderMap restores a [y][x] grid of state names and draws it with the
// terminal glyphs. robot, if set, is drawn over its cell.
func RenderMap(cells [][]string, robot *pose.Pose) string {
	m, err := grid.RestoreNames(cells)
	if err != nil {
		return color.New(color.FgRed).Sprintf("(map unavailable: %v)\n", err)
	}
	return m.RenderWith(mapGlyphs(), robot)
}

func outcomeIcon(outcome string) string {
	switch primary.Outcome(outcome) {
	case primary.OutcomeGoalReached, primary.OutcomeExplored:
		return color.New(color.FgGreen).Sprint("✓")
	case primary.OutcomeUnreachable, primary.OutcomeCancelled:
		return color.New(color.FgYellow).Sprint("!")
	}
	return color.New(color.FgRed).Sprint("✗")
}

func tieBreakName(req primary.NavigateRequest) string {
	if req.TieBreak == "" {
		return "right"
	}
	return string(req.TieBreak)
}

// parseReportPose reads back the "(x,y) H" form stored for final poses.
func parseReportPose(s string) (pose.Pose, error) {
	s = strings.NewReplacer("(", "", ")", "", " ", ",").Replace(s)
	return pose.ParsePose(s)
}

// noHistory stands in when persistence is disabled.
type noHistory struct{}

func (noHistory) ListRuns(context.Context, primary.RunFilters) ([]*primary.Run, error) {
	return nil, fmt.Errorf("run history is disabled")
}

func (noHistory) GetRun(context.Context, string) (*primary.RunDetail, error) {
	return nil, fmt.Errorf("run history is disabled")
}
