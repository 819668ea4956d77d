package app

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/example/mazebot/internal/core/classify"
	"github.com/example/mazebot/internal/core/grid"
	"github.com/example/mazebot/internal/core/motion"
	"github.com/example/mazebot/internal/core/navigate"
	"github.com/example/mazebot/internal/core/pose"
	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/ports/secondary"
)

const modeNavigate = "navigate"

// stepsPerCell bounds the navigator at rows*cols*stepsPerCell decisions.
const stepsPerCell = 4

// NavigatorServiceImpl implements the NavigatorService interface.
type NavigatorServiceImpl struct {
	robot       secondary.Robot
	classifier  Classifier
	calibration motion.Calibration
	recorder    recorder
	events      secondary.EventLog
}

// NewNavigatorService creates a new NavigatorService with injected dependencies.
// runs and events are optional - if nil, nothing is persisted.
func NewNavigatorService(robot secondary.Robot, classifier Classifier, cal motion.Calibration, runs secondary.RunRepository, events secondary.EventLog) *NavigatorServiceImpl {
	return &NavigatorServiceImpl{
		robot:       robot,
		classifier:  classifier,
		calibration: cal,
		recorder:    recorder{runs: runs},
		events:      events,
	}
}

// navigation is the state of one goal-seeking run. The pose only changes
// on confirmed moves.
type navigation struct {
	sess     *session
	grid     *grid.Map
	pose     pose.Pose
	goal     pose.Position
	tieBreak navigate.TieBreak
	rng      *rand.Rand
	maxSteps int
}

// Navigate drives towards the goal.
func (s *NavigatorServiceImpl) Navigate(ctx context.Context, req primary.NavigateRequest) (*primary.RunReport, error) {
	if err := validateSettings(req.RunSettings); err != nil {
		return nil, err
	}
	tieBreak, err := navigate.ParseTieBreak(string(req.TieBreak))
	if err != nil {
		return nil, err
	}
	m, err := grid.New(req.Rows, req.Cols)
	if err != nil {
		return nil, err
	}
	if !m.InBounds(req.Goal) {
		return nil, fmt.Errorf("goal %s: %w", req.Goal, grid.ErrOutOfBounds)
	}

	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = req.Rows * req.Cols * stepsPerCell
	}

	record := newRunRecord(modeNavigate, req.RunSettings)
	record.Goal = req.Goal.String()
	record.TieBreak = string(tieBreak)
	record.Seed = req.Seed
	ctx, err = s.recorder.begin(ctx, req.Save, record)
	if err != nil {
		return nil, err
	}

	nav := &navigation{
		sess:     newSession(s.robot, s.classifier, s.calibration, s.events, req.RunSettings, modeNavigate),
		grid:     m,
		pose:     req.Start,
		goal:     req.Goal,
		tieBreak: tieBreak,
		rng:      rand.New(rand.NewSource(req.Seed)),
		maxSteps: maxSteps,
	}
	outcome, runErr := nav.run(ctx)

	done := context.WithoutCancel(ctx)
	report := nav.sess.finish(done, m, nav.pose, outcome, runErr)
	report.ReachedGoal = outcome == primary.OutcomeGoalReached
	if err := s.recorder.complete(done, record, report, m); err != nil && runErr == nil {
		runErr = err
	}
	return report, runErr
}

func (n *navigation) run(ctx context.Context) (primary.Outcome, error) {
	// The robot stands on the start cell, so it is floor whatever the sensor says.
	if _, err := n.grid.Mark(n.pose.Position, grid.Traversable); err != nil {
		return primary.OutcomeFault, err
	}
	if _, err := n.sess.sense(ctx, n.pose.Position); err != nil {
		return terminalOutcome(err), err
	}

	for {
		if err := ctx.Err(); err != nil {
			return primary.OutcomeCancelled, err
		}
		if n.pose.Position == n.goal {
			return primary.OutcomeGoalReached, nil
		}
		if guard := navigate.GoalReachable(n.grid, n.pose.Position, n.goal); !guard.Allowed {
			return primary.OutcomeUnreachable, fmt.Errorf("%w: %s", ErrNoReachablePath, guard.Reason)
		}
		if n.sess.report.Steps >= n.maxSteps {
			return primary.OutcomeFault, fmt.Errorf("%w after %d steps, goal %s not reached", ErrStepBudgetExhausted, n.maxSteps, n.goal)
		}
		n.sess.report.Steps++

		if err := n.step(ctx); err != nil {
			return terminalOutcome(err), err
		}
	}
}

// step makes one decision and acts on it: turn, advance, sense, then
// commit the pose or back off an obstacle.
func (n *navigation) step(ctx context.Context) error {
	d := navigate.Decide(navigate.InputFor(n.grid, n.pose, n.tieBreak, n.rng))
	if d.Turn != "" {
		ok, err := n.sess.move(ctx, d.Turn, n.pose)
		if err != nil || !ok {
			return err
		}
		n.pose.Heading = d.Heading
	}

	next := n.pose.Ahead()
	if !n.grid.IsOpen(next) {
		// Turned around into a wall or a known obstacle; decide again from here.
		return nil
	}
	ok, err := n.sess.move(ctx, motion.AdvanceOneCell, n.pose)
	if err != nil || !ok {
		return err
	}

	state, err := n.grid.At(next)
	if err != nil {
		return fmt.Errorf("advance to %s: %w", next, err)
	}
	verdict, err := n.sess.sense(ctx, next)
	if err != nil {
		return err
	}
	if verdict == classify.Obstacle && state != grid.Traversable {
		return n.reject(ctx, next)
	}

	n.pose.Position = next
	if !n.grid.InBounds(n.pose.Position) {
		return fmt.Errorf("committed pose %s: %w", n.pose, grid.ErrOutOfBounds)
	}
	if _, err := n.grid.Mark(next, grid.Traversable); err != nil {
		return fmt.Errorf("mark %s: %w", next, err)
	}
	n.sess.report.Advances++
	return nil
}

// reject marks the cell the robot just drove into as an obstacle and backs
// out of it. The pose stays on the previous cell.
func (n *navigation) reject(ctx context.Context, cell pose.Position) error {
	if _, err := n.grid.Mark(cell, grid.Obstacle); err != nil {
		return fmt.Errorf("mark obstacle %s: %w", cell, err)
	}
	n.sess.obstacle(ctx, cell)

	turned, err := n.sess.backOff(ctx, n.pose)
	if err != nil {
		return err
	}
	if turned {
		n.pose.Heading = pose.Turn(n.pose.Heading, pose.Around)
	}
	return nil
}

// Ensure NavigatorServiceImpl implements the interface
var _ primary.NavigatorService = (*NavigatorServiceImpl)(nil)
