// Package navigate contains the pure decision policy for goal-seeking runs.
// This is part of the Functional Core - no I/O, only pure functions.
package navigate

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/example/mazebot/internal/core/grid"
	"github.com/example/mazebot/internal/core/motion"
	"github.com/example/mazebot/internal/core/pose"
)

// TieBreak chooses between left and right when both are open and forward is not.
type TieBreak string

const (
	// TieBreakRight always turns right (right-hand rule).
	TieBreakRight TieBreak = "right"
	// TieBreakRandom picks a side with the injected random source.
	TieBreakRandom TieBreak = "random"
)

// ParseTieBreak accepts "right" or "random". Empty input means right.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieBreakRight:
		return TieBreakRight, nil
	case TieBreakRandom:
		return TieBreakRandom, nil
	}
	return "", fmt.Errorf("invalid tie-break %q: use right or random", s)
}

// DecisionInput is everything Decide needs, pre-computed by the caller.
type DecisionInput struct {
	Heading     pose.Heading
	ForwardOpen bool
	RightOpen   bool
	LeftOpen    bool
	TieBreak    TieBreak
	Rand        *rand.Rand // used only with TieBreakRandom
}

// Decision is the heading to take next and the turn that gets there.
// Turn is empty when the robot keeps going straight.
type Decision struct {
	Heading pose.Heading
	Turn    motion.Kind
	Reason  string
}

// InputFor builds a DecisionInput from the map around p.
func InputFor(m *grid.Map, p pose.Pose, tb TieBreak, rng *rand.Rand) DecisionInput {
	return DecisionInput{
		Heading:     p.Heading,
		ForwardOpen: m.IsOpen(p.Ahead()),
		RightOpen:   m.IsOpen(pose.Advance(p.Position, pose.Turn(p.Heading, pose.Right))),
		LeftOpen:    m.IsOpen(pose.Advance(p.Position, pose.Turn(p.Heading, pose.Left))),
		TieBreak:    tb,
		Rand:        rng,
	}
}

// Decide picks the next heading: forward if open, else the open side (tie
// broken per policy), else turn around.
func Decide(in DecisionInput) Decision {
	switch {
	case in.ForwardOpen:
		return Decision{Heading: in.Heading, Reason: "forward open"}
	case in.RightOpen && in.LeftOpen:
		if in.TieBreak != TieBreakRandom || in.Rand == nil {
			return turn(in.Heading, pose.Right, "both sides open, right-hand rule")
		}
		if in.Rand.Intn(2) == 0 {
			return turn(in.Heading, pose.Left, "both sides open, random picked left")
		}
		return turn(in.Heading, pose.Right, "both sides open, random picked right")
	case in.RightOpen:
		return turn(in.Heading, pose.Right, "only right open")
	case in.LeftOpen:
		return turn(in.Heading, pose.Left, "only left open")
	}
	return turn(in.Heading, pose.Around, "boxed in")
}

func turn(h pose.Heading, delta int, reason string) Decision {
	next := pose.Turn(h, delta)
	k, _ := motion.TurnToward(h, next)
	return Decision{Heading: next, Turn: k, Reason: reason}
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// GoalReachable evaluates whether the goal can still be reached from the
// robot's position over cells not known to be obstacles.
// Rule: a goal outside the field or cut off by known obstacles ends the run.
func GoalReachable(m *grid.Map, from, goal pose.Position) GuardResult {
	if !m.InBounds(goal) {
		return GuardResult{Reason: fmt.Sprintf("goal %s is outside the %dx%d field", goal, m.Cols(), m.Rows())}
	}
	if s, _ := m.At(goal); s == grid.Obstacle {
		return GuardResult{Reason: fmt.Sprintf("goal %s is an obstacle", goal)}
	}
	if !m.Reachable(from, goal) {
		return GuardResult{Reason: fmt.Sprintf("goal %s is cut off from %s by known obstacles", goal, from)}
	}
	return GuardResult{Allowed: true}
}
