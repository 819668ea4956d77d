package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/mazebot/internal/core/classify"
	"github.com/example/mazebot/internal/core/explore"
	"github.com/example/mazebot/internal/core/grid"
	"github.com/example/mazebot/internal/core/motion"
	"github.com/example/mazebot/internal/core/pose"
	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/ports/secondary"
)

const modeExplore = "explore"

// ExplorerServiceImpl implements the ExplorerService interface.
type ExplorerServiceImpl struct {
	robot       secondary.Robot
	classifier  Classifier
	calibration motion.Calibration
	recorder    recorder
	events      secondary.EventLog
}

// NewExplorerService creates a new ExplorerService with injected dependencies.
// runs and events are optional - if nil, nothing is persisted.
func NewExplorerService(robot secondary.Robot, classifier Classifier, cal motion.Calibration, runs secondary.RunRepository, events secondary.EventLog) *ExplorerServiceImpl {
	return &ExplorerServiceImpl{
		robot:       robot,
		classifier:  classifier,
		calibration: cal,
		recorder:    recorder{runs: runs},
		events:      events,
	}
}

// Explore visits every cell reachable from the start.
func (s *ExplorerServiceImpl) Explore(ctx context.Context, req primary.ExploreRequest) (*primary.RunReport, error) {
	if err := validateSettings(req.RunSettings); err != nil {
		return nil, err
	}
	m, err := grid.New(req.Rows, req.Cols)
	if err != nil {
		return nil, err
	}
	ex, err := explore.New(m, req.Start)
	if err != nil {
		return nil, err
	}

	record := newRunRecord(modeExplore, req.RunSettings)
	ctx, err = s.recorder.begin(ctx, req.Save, record)
	if err != nil {
		return nil, err
	}

	sess := newSession(s.robot, s.classifier, s.calibration, s.events, req.RunSettings, modeExplore)
	outcome, runErr := s.run(ctx, sess, ex)

	// The run context may already be cancelled; the record still needs closing.
	done := context.WithoutCancel(ctx)
	report := sess.finish(done, m, ex.Pose(), outcome, runErr)
	if err := s.recorder.complete(done, record, report, m); err != nil && runErr == nil {
		runErr = err
	}
	return report, runErr
}

// run drives the explorer until it is done, the context ends, or a fault
// makes the believed pose untrustworthy.
func (s *ExplorerServiceImpl) run(ctx context.Context, sess *session, ex *explore.Explorer) (primary.Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return primary.OutcomeCancelled, err
		}

		step := ex.Next()
		if step.Kind == explore.StepDone {
			return primary.OutcomeExplored, nil
		}
		sess.report.Steps++

		var err error
		switch step.Kind {
		case explore.StepEnter:
			err = s.enter(ctx, sess, ex, step)
		case explore.StepBacktrack:
			err = s.backtrack(ctx, sess, ex, step)
		}
		if err != nil {
			return terminalOutcome(err), err
		}
	}
}

func (s *ExplorerServiceImpl) enter(ctx context.Context, sess *session, ex *explore.Explorer, step explore.Step) error {
	ok, err := s.faceAndAdvance(ctx, sess, ex, step.Heading)
	if err != nil {
		return err
	}
	if !ok {
		return ex.Blocked()
	}
	if !ex.Map().InBounds(step.Target) {
		return fmt.Errorf("advance to %s: %w", step.Target, grid.ErrOutOfBounds)
	}

	verdict, err := sess.sense(ctx, step.Target)
	if err != nil {
		return err
	}
	if verdict != classify.Obstacle {
		sess.report.Advances++
		return ex.Entered(classify.Traversable)
	}

	if err := ex.Entered(classify.Obstacle); err != nil {
		return err
	}
	sess.obstacle(ctx, step.Target)
	turned, err := sess.backOff(ctx, ex.Pose())
	if err != nil {
		return err
	}
	if turned {
		ex.Rotated(motion.TurnAround180)
	}
	return nil
}

func (s *ExplorerServiceImpl) backtrack(ctx context.Context, sess *session, ex *explore.Explorer, step explore.Step) error {
	ok, err := s.faceAndAdvance(ctx, sess, ex, step.Heading)
	if err != nil {
		return err
	}
	if !ok {
		return ex.Blocked()
	}
	sess.report.Advances++
	return ex.Backtracked()
}

// faceAndAdvance turns toward h and drives one cell. The explorer learns
// about a successful turn even when the advance then fails.
func (s *ExplorerServiceImpl) faceAndAdvance(ctx context.Context, sess *session, ex *explore.Explorer, h pose.Heading) (bool, error) {
	k, ok, err := sess.face(ctx, ex.Pose(), h)
	if err != nil || !ok {
		return false, err
	}
	if k != "" {
		ex.Rotated(k)
	}
	return sess.move(ctx, motion.AdvanceOneCell, ex.Pose())
}

// terminalOutcome maps a terminal loop error to a report outcome.
func terminalOutcome(err error) primary.Outcome {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return primary.OutcomeCancelled
	case errors.Is(err, ErrNoReachablePath):
		return primary.OutcomeUnreachable
	}
	return primary.OutcomeFault
}

// Ensure ExplorerServiceImpl implements the interface
var _ primary.ExplorerService = (*ExplorerServiceImpl)(nil)
