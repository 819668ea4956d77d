// Package explore contains the depth-first "wall following with backtrack"
// explorer as an explicit-stack state machine.
// This is part of the Functional Core - no I/O, only pure functions.
//
// The explorer never moves the robot itself. Next returns the intent for
// the next physical action, and the caller reports what actually happened
// through Rotated, Entered, Blocked and Backtracked.
package explore

import (
	"errors"
	"fmt"

	"github.com/example/mazebot/internal/core/classify"
	"github.com/example/mazebot/internal/core/grid"
	"github.com/example/mazebot/internal/core/motion"
	"github.com/example/mazebot/internal/core/pose"
)

// StepKind identifies what the explorer wants to do next.
type StepKind int

const (
	// StepEnter asks the caller to face Heading and advance into Target.
	StepEnter StepKind = iota
	// StepBacktrack asks the caller to face Heading and return to the parent cell Target.
	StepBacktrack
	// StepDone means every reachable cell has been visited.
	StepDone
)

func (k StepKind) String() string {
	switch k {
	case StepEnter:
		return "enter"
	case StepBacktrack:
		return "backtrack"
	default:
		return "done"
	}
}

// Step is one intent produced by Next.
type Step struct {
	Kind    StepKind
	Heading pose.Heading
	Target  pose.Position
}

// ErrNoPendingStep is returned when an outcome is reported for a step that
// was never issued.
var ErrNoPendingStep = errors.New("no pending step")

// frame is one level of the depth-first search. The robot is always
// physically in the top frame's cell.
type frame struct {
	pos      pose.Position
	base     pose.Heading // scan starts here and rotates clockwise
	entry    pose.Heading // heading that led into pos
	hasEntry bool
	scan     int
}

// Explorer visits every cell reachable from the start exactly once.
type Explorer struct {
	grid     *grid.Map
	pose     pose.Pose
	stack    []frame
	pending  *Step
	marks    int
	maxDepth int
	stranded bool
}

// New creates an explorer and marks the start cell Traversable.
func New(m *grid.Map, start pose.Pose) (*Explorer, error) {
	if !m.InBounds(start.Position) {
		return nil, fmt.Errorf("start %s: %w", start.Position, grid.ErrOutOfBounds)
	}
	changed, err := m.Mark(start.Position, grid.Traversable)
	if err != nil {
		return nil, fmt.Errorf("mark start: %w", err)
	}
	e := &Explorer{
		grid:     m,
		pose:     start,
		stack:    []frame{{pos: start.Position, base: start.Heading}},
		maxDepth: 1,
	}
	if changed {
		e.marks++
	}
	return e, nil
}

// Next returns the next intent. Calling Next again before reporting an
// outcome returns the same step.
func (e *Explorer) Next() Step {
	if e.pending != nil {
		return *e.pending
	}
	for len(e.stack) > 0 {
		f := &e.stack[len(e.stack)-1]
		for f.scan < len(pose.Headings) {
			h := pose.Turn(f.base, f.scan)
			f.scan++
			n := pose.Advance(f.pos, h)
			if e.grid.IsOpen(n) && e.grid.IsUnvisited(n) {
				e.pending = &Step{Kind: StepEnter, Heading: h, Target: n}
				return *e.pending
			}
		}

		// Dead end: every heading from this cell is exhausted.
		if !f.hasEntry {
			e.stack = e.stack[:0]
			break
		}
		back := pose.Turn(f.entry, pose.Around)
		target := pose.Advance(f.pos, back)
		if !e.grid.IsOpen(target) {
			// The way back is closed; the robot cannot rejoin any parent frame.
			e.stranded = true
			e.stack = e.stack[:0]
			break
		}
		e.pending = &Step{Kind: StepBacktrack, Heading: back, Target: target}
		return *e.pending
	}
	return Step{Kind: StepDone}
}

// Rotated records a confirmed in-place turn.
func (e *Explorer) Rotated(k motion.Kind) {
	e.pose.Heading = motion.Apply(e.pose.Heading, k)
}

// Entered reports the classification of the cell entered for a StepEnter.
// A Traversable verdict commits the pose into the cell; an Obstacle verdict
// marks the cell and leaves the pose in the previous cell.
func (e *Explorer) Entered(v classify.Verdict) error {
	if e.pending == nil || e.pending.Kind != StepEnter {
		return fmt.Errorf("entered: %w", ErrNoPendingStep)
	}
	step := *e.pending
	e.pending = nil

	switch v {
	case classify.Obstacle:
		if _, err := e.grid.Mark(step.Target, grid.Obstacle); err != nil {
			return fmt.Errorf("mark obstacle %s: %w", step.Target, err)
		}
		e.pose = pose.Pose{Position: e.top().pos, Heading: step.Heading}
		return nil
	case classify.Traversable:
		changed, err := e.grid.Mark(step.Target, grid.Traversable)
		if err != nil {
			return fmt.Errorf("mark traversable %s: %w", step.Target, err)
		}
		if changed {
			e.marks++
		}
		e.pose = pose.Pose{Position: step.Target, Heading: step.Heading}
		e.stack = append(e.stack, frame{
			pos:      step.Target,
			base:     step.Heading,
			entry:    step.Heading,
			hasEntry: true,
		})
		if len(e.stack) > e.maxDepth {
			e.maxDepth = len(e.stack)
		}
		return nil
	}
	return fmt.Errorf("entered %s with unresolved verdict %s", step.Target, v)
}

// Blocked reports that the physical move for the pending step did not
// complete. The pose stays where it was. A blocked StepEnter is skipped; a
// blocked StepBacktrack will be issued again by Next.
func (e *Explorer) Blocked() error {
	if e.pending == nil {
		return fmt.Errorf("blocked: %w", ErrNoPendingStep)
	}
	e.pending = nil
	return nil
}

// Backtracked reports that the robot has returned to the parent cell.
func (e *Explorer) Backtracked() error {
	if e.pending == nil || e.pending.Kind != StepBacktrack {
		return fmt.Errorf("backtracked: %w", ErrNoPendingStep)
	}
	step := *e.pending
	e.pending = nil
	e.stack = e.stack[:len(e.stack)-1]
	e.pose = pose.Pose{Position: step.Target, Heading: step.Heading}
	return nil
}

func (e *Explorer) top() frame {
	return e.stack[len(e.stack)-1]
}

// Pose returns the believed pose.
func (e *Explorer) Pose() pose.Pose { return e.pose }

// Map returns the map being explored.
func (e *Explorer) Map() *grid.Map { return e.grid }

// Depth returns the current stack depth.
func (e *Explorer) Depth() int { return len(e.stack) }

// MaxDepth returns the deepest stack reached.
func (e *Explorer) MaxDepth() int { return e.maxDepth }

// Marks returns how many cells this explorer has marked Traversable.
func (e *Explorer) Marks() int { return e.marks }

// Stranded reports whether the search ended because the way back was closed.
func (e *Explorer) Stranded() bool { return e.stranded }
