package sim

import (
	"context"
	"fmt"

	"github.com/example/mazebot/internal/core/motion"
	"github.com/example/mazebot/internal/core/pose"
	"github.com/example/mazebot/internal/ports/secondary"
)

// Options injects faults into a simulated robot.
type Options struct {
	// FailMoves lists 1-based command numbers that fail without moving.
	FailMoves []int
	// UnreadableReads gives, per tile, how many reads fail before the sensor
	// returns the painted colour.
	UnreadableReads map[pose.Position]int
	// GyroDriftPerTurn is added to the gyro angle on every turn.
	GyroDriftPerTurn float64
}

// Robot is a perfect drive train on a World. It is not safe for
// concurrent use; a run drives it from a single goroutine.
type Robot struct {
	world *World
	pose  pose.Pose
	angle float64

	commands []motion.Command
	failAt   map[int]bool
	flaky    map[pose.Position]int
	drift    float64
	reads    int
}

// NewRobot places a robot on the world.
func NewRobot(w *World, start pose.Pose, opts Options) (*Robot, error) {
	if !w.InBounds(start.Position) {
		return nil, fmt.Errorf("start %s outside %dx%d world", start.Position, w.Cols(), w.Rows())
	}
	r := &Robot{
		world:  w,
		pose:   start,
		failAt: make(map[int]bool, len(opts.FailMoves)),
		flaky:  make(map[pose.Position]int, len(opts.UnreadableReads)),
		drift:  opts.GyroDriftPerTurn,
	}
	for _, n := range opts.FailMoves {
		r.failAt[n] = true
	}
	for p, n := range opts.UnreadableReads {
		r.flaky[p] = n
	}
	return r, nil
}

// Ports returns the robot as the collaborators a run needs.
func (r *Robot) Ports() secondary.Robot {
	return secondary.Robot{Mover: r, Sensor: r, Heading: r}
}

// Execute performs one move. Driving off the arena fails without moving.
func (r *Robot) Execute(ctx context.Context, cmd motion.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.commands = append(r.commands, cmd)
	if r.failAt[len(r.commands)] {
		return fmt.Errorf("%w: injected fault on command %d (%s)", secondary.ErrMoveFailed, len(r.commands), cmd)
	}

	switch cmd.Kind {
	case motion.AdvanceOneCell:
		next := r.pose.Ahead()
		if !r.world.InBounds(next) {
			return fmt.Errorf("%w: arena wall ahead of %s", secondary.ErrMoveFailed, r.pose)
		}
		r.pose.Position = next
	case motion.ReverseShort:
		back := r.pose.Behind()
		if !r.world.InBounds(back) {
			return fmt.Errorf("%w: arena wall behind %s", secondary.ErrMoveFailed, r.pose)
		}
		r.pose.Position = back
	case motion.TurnLeft90:
		r.pose.Heading = motion.Apply(r.pose.Heading, cmd.Kind)
		r.angle += 90 + r.drift
	case motion.TurnRight90:
		r.pose.Heading = motion.Apply(r.pose.Heading, cmd.Kind)
		r.angle -= 90 - r.drift
	case motion.TurnAround180:
		r.pose.Heading = motion.Apply(r.pose.Heading, cmd.Kind)
		r.angle += 180 + r.drift
	default:
		return fmt.Errorf("%w: unknown command %s", secondary.ErrMoveFailed, cmd)
	}
	return nil
}

// ReadCell returns the colour painted under the robot.
func (r *Robot) ReadCell(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.reads++
	if r.flaky[r.pose.Position] > 0 {
		r.flaky[r.pose.Position]--
		return 0, fmt.Errorf("%w: no reflection at %s", secondary.ErrSensorRead, r.pose.Position)
	}
	code, _ := r.world.ColorAt(r.pose.Position)
	return code, nil
}

// ReadHeading returns the gyro angle, counter-clockwise positive.
func (r *Robot) ReadHeading(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.angle, nil
}

// Pose returns where the robot really is.
func (r *Robot) Pose() pose.Pose { return r.pose }

// Commands returns every command received, including failed ones.
func (r *Robot) Commands() []motion.Command {
	return append([]motion.Command(nil), r.commands...)
}

// Count returns how many received commands were of kind k.
func (r *Robot) Count(k motion.Kind) int {
	n := 0
	for _, c := range r.commands {
		if c.Kind == k {
			n++
		}
	}
	return n
}

// Reads returns how many cell reads were taken.
func (r *Robot) Reads() int { return r.reads }

var (
	_ secondary.MoveExecutor  = (*Robot)(nil)
	_ secondary.CellSensor    = (*Robot)(nil)
	_ secondary.HeadingSensor = (*Robot)(nil)
)
