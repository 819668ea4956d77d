package app

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/example/mazebot/internal/core/classify"
	"github.com/example/mazebot/internal/core/grid"
	"github.com/example/mazebot/internal/core/motion"
	"github.com/example/mazebot/internal/core/pose"
	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/ports/secondary"
)

// DefaultMaxMoveFailures is the number of consecutive failed moves a run
// tolerates before it faults.
const DefaultMaxMoveFailures = 3

// ErrNoReachablePath is returned by Navigate when known obstacles cut the
// goal off.
var ErrNoReachablePath = errors.New("no reachable path to goal")

// ErrStepBudgetExhausted is returned by Navigate when the decision budget
// runs out while a path to the goal may still exist.
var ErrStepBudgetExhausted = errors.New("step budget exhausted")

// Classifier turns a raw cell reading into a verdict. Both
// *classify.Classifier and classify.DistanceClassifier satisfy it.
type Classifier interface {
	Classify(raw int) classify.Verdict
}

// Event kinds written to the event log.
const (
	eventObstacle      = "obstacle"
	eventMoveFailed    = "move_failed"
	eventIndeterminate = "indeterminate"
	eventDrift         = "drift"
	eventOutcome       = "outcome"
)

// session is the per-run state shared by both drivers: the collaborators,
// the counters for the report, and the consecutive failure budget.
type session struct {
	robot       secondary.Robot
	classifier  Classifier
	calibration motion.Calibration
	events      secondary.EventLog

	policy      classify.IndeterminatePolicy
	maxFailures int
	driftTol    float64

	failures    int     // consecutive
	expectedDeg float64 // gyro angle the robot should read, counter-clockwise positive

	report primary.RunReport
}

func newSession(robot secondary.Robot, classifier Classifier, cal motion.Calibration, events secondary.EventLog, settings primary.RunSettings, mode string) *session {
	maxFailures := settings.MaxMoveFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxMoveFailures
	}
	return &session{
		robot:       robot,
		classifier:  classifier,
		calibration: cal,
		events:      events,
		policy:      settings.Policy,
		maxFailures: maxFailures,
		driftTol:    settings.DriftToleranceDeg,
		report:      primary.RunReport{Mode: mode},
	}
}

// validateSettings checks what both drivers need before a map is built.
func validateSettings(s primary.RunSettings) error {
	if s.Rows < 1 || s.Cols < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", s.Cols, s.Rows)
	}
	if !s.Start.Heading.Valid() {
		return fmt.Errorf("invalid start heading %d", int(s.Start.Heading))
	}
	if p := s.Start.Position; p.X < 0 || p.X >= s.Cols || p.Y < 0 || p.Y >= s.Rows {
		return fmt.Errorf("start %s: %w", s.Start.Position, grid.ErrOutOfBounds)
	}
	if err := s.Policy.Validate(); err != nil {
		return err
	}
	return nil
}

// move executes one calibrated command. ok reports physical completion.
// A non-nil error is terminal: the context ended or the failure budget ran out.
func (s *session) move(ctx context.Context, k motion.Kind, at pose.Pose) (ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	cmd := s.calibration.Command(k)
	execErr := s.robot.Mover.Execute(ctx, cmd)
	if execErr == nil {
		s.failures = 0
		if k.IsTurn() {
			s.trackTurn(ctx, k, at)
		}
		return true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	s.failures++
	s.report.MoveFailures++
	s.logEvent(ctx, eventMoveFailed, at.String(), fmt.Sprintf("%s: %v", cmd, execErr))
	if s.failures >= s.maxFailures {
		if !errors.Is(execErr, secondary.ErrMoveFailed) {
			execErr = fmt.Errorf("%w: %v", secondary.ErrMoveFailed, execErr)
		}
		return false, fmt.Errorf("%d consecutive move failures: %w", s.failures, execErr)
	}
	return false, nil
}

// face turns from the current heading to want, if needed.
func (s *session) face(ctx context.Context, at pose.Pose, want pose.Heading) (motion.Kind, bool, error) {
	k, needed := motion.TurnToward(at.Heading, want)
	if !needed {
		return "", true, nil
	}
	ok, err := s.move(ctx, k, at)
	return k, ok, err
}

// backOff reverses out of an obstacle cell and turns around. The reverse is
// retried until it succeeds or the failure budget runs out; a failed turn
// only leaves the heading unchanged. turned reports whether the turn happened.
func (s *session) backOff(ctx context.Context, at pose.Pose) (turned bool, err error) {
	for {
		ok, err := s.move(ctx, motion.ReverseShort, at)
		if err != nil {
			return false, err
		}
		if ok {
			break
		}
	}
	return s.move(ctx, motion.TurnAround180, at)
}

// sense reads and classifies the cell at p, applying the indeterminate policy.
// Read failures count as indeterminate readings. An error means the context
// ended before a verdict was reached; the caller must not mark the cell.
func (s *session) sense(ctx context.Context, p pose.Position) (classify.Verdict, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return classify.Indeterminate, err
		}
		v := classify.Indeterminate
		raw, err := s.robot.Sensor.ReadCell(ctx)
		if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
			return classify.Indeterminate, ctxErr
		}
		if err == nil {
			v = s.classifier.Classify(raw)
		}
		if v == classify.Indeterminate {
			s.report.IndeterminateReads++
		}

		res := s.policy.Resolve(v, attempt)
		if !res.Retry {
			if v == classify.Indeterminate {
				s.logEvent(ctx, eventIndeterminate, p.String(),
					fmt.Sprintf("resolved as %s after %d reads", res.Verdict, attempt+1))
			}
			return res.Verdict, nil
		}
	}
}

// trackTurn updates the expected gyro angle and records drift when the
// gyro disagrees by more than the tolerance.
func (s *session) trackTurn(ctx context.Context, k motion.Kind, at pose.Pose) {
	switch k {
	case motion.TurnLeft90:
		s.expectedDeg += 90
	case motion.TurnRight90:
		s.expectedDeg -= 90
	case motion.TurnAround180:
		s.expectedDeg += 180
	}
	if s.robot.Heading == nil || s.driftTol <= 0 {
		return
	}
	got, err := s.robot.Heading.ReadHeading(ctx)
	if err != nil {
		return
	}
	drift := angleDiff(got, s.expectedDeg)
	if math.Abs(drift) > s.driftTol {
		s.report.DriftEvents++
		s.logEvent(ctx, eventDrift, at.String(),
			fmt.Sprintf("gyro %.1f, expected %.1f (%+.1f)", got, s.expectedDeg, drift))
	}
}

// angleDiff returns a-b normalised into [-180, 180).
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

func (s *session) obstacle(ctx context.Context, cell pose.Position) {
	s.report.ObstacleEvents++
	s.logEvent(ctx, eventObstacle, cell.String(), "reversed and turned around")
}

func (s *session) logEvent(ctx context.Context, kind, position, detail string) {
	if s.events != nil {
		_ = s.events.LogEvent(ctx, kind, position, detail)
	}
}

// finish fills in the final pose, map and outcome.
func (s *session) finish(ctx context.Context, m *grid.Map, p pose.Pose, outcome primary.Outcome, err error) *primary.RunReport {
	s.report.Outcome = outcome
	s.report.FinalPose = p
	s.report.Cells = m.Names()
	if err != nil {
		s.report.Err = err.Error()
	}
	s.logEvent(ctx, eventOutcome, p.String(), string(outcome))
	return &s.report
}
