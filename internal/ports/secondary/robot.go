package secondary

import (
	"context"
	"errors"

	"github.com/example/mazebot/internal/core/motion"
)

var (
	// ErrMoveFailed is wrapped by MoveExecutor implementations when the
	// physical action did not complete as commanded.
	ErrMoveFailed = errors.New("move failed")

	// ErrSensorRead is wrapped by sensor implementations when no valid value
	// could be read in time.
	ErrSensorRead = errors.New("sensor read failed")
)

// MoveExecutor drives the robot. Execute blocks until the move has
// physically completed or failed; moves are never overlapped.
type MoveExecutor interface {
	Execute(ctx context.Context, cmd motion.Command) error
}

// CellSensor reads the raw value for the cell under the robot: a colour
// code, or a distance in millimetres for ultrasonic setups.
type CellSensor interface {
	ReadCell(ctx context.Context) (int, error)
}

// HeadingSensor reads the gyro angle in degrees since the run started,
// counter-clockwise positive.
type HeadingSensor interface {
	ReadHeading(ctx context.Context) (float64, error)
}

// Robot bundles the collaborators of one physical or simulated robot.
// Heading may be nil when no gyro is fitted.
type Robot struct {
	Mover   MoveExecutor
	Sensor  CellSensor
	Heading HeadingSensor
}
