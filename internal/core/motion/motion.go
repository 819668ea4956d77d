// Package motion defines the discrete move commands sent to the drive train.
// Commands are pure data - they describe what should happen, not how.
package motion

import (
	"fmt"
	"math"

	"github.com/example/mazebot/internal/core/pose"
)

// Kind is one discrete action of the drive train.
type Kind string

const (
	AdvanceOneCell Kind = "advance"
	ReverseShort   Kind = "reverse"
	TurnLeft90     Kind = "left"
	TurnRight90    Kind = "right"
	TurnAround180  Kind = "around"
)

// IsTurn reports whether k rotates the robot in place.
func (k Kind) IsTurn() bool {
	return k == TurnLeft90 || k == TurnRight90 || k == TurnAround180
}

// Command is a move with its calibrated magnitude. Magnitude is in wheel
// degrees; the core never interprets it.
type Command struct {
	Kind      Kind
	Magnitude int
}

func (c Command) String() string {
	return fmt.Sprintf("%s(%d)", c.Kind, c.Magnitude)
}

// Apply returns the heading after executing k from heading h.
func Apply(h pose.Heading, k Kind) pose.Heading {
	switch k {
	case TurnLeft90:
		return pose.Turn(h, pose.Left)
	case TurnRight90:
		return pose.Turn(h, pose.Right)
	case TurnAround180:
		return pose.Turn(h, pose.Around)
	}
	return h
}

// TurnToward returns the single turn that rotates from into to, or
// false if the robot already faces to.
func TurnToward(from, to pose.Heading) (Kind, bool) {
	switch pose.Relative(from, to) {
	case pose.Right:
		return TurnRight90, true
	case pose.Left:
		return TurnLeft90, true
	case pose.Around:
		return TurnAround180, true
	}
	return "", false
}

// Calibration holds the robot geometry used to size commands.
type Calibration struct {
	TileLengthMM    float64 `yaml:"tile_length_mm"`
	ReturnLengthMM  float64 `yaml:"return_length_mm"`
	WheelDiameterMM float64 `yaml:"wheel_diameter_mm"`
	WheelBaseMM     float64 `yaml:"wheel_base_mm"`
	Speed           int     `yaml:"speed"`
}

// DefaultCalibration matches the competition robot: 253 mm tiles, 70 mm
// back-off, 49.5 mm wheels on a 104 mm axle.
func DefaultCalibration() Calibration {
	return Calibration{
		TileLengthMM:    253,
		ReturnLengthMM:  70,
		WheelDiameterMM: 49.5,
		WheelBaseMM:     104,
		Speed:           30,
	}
}

// Validate checks that every dimension is positive and the back-off is shorter than a tile.
func (c Calibration) Validate() error {
	if c.TileLengthMM <= 0 || c.ReturnLengthMM <= 0 || c.WheelDiameterMM <= 0 || c.WheelBaseMM <= 0 {
		return fmt.Errorf("calibration lengths must be positive")
	}
	if c.ReturnLengthMM >= c.TileLengthMM {
		return fmt.Errorf("return length %.1fmm must be shorter than tile length %.1fmm", c.ReturnLengthMM, c.TileLengthMM)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %d", c.Speed)
	}
	return nil
}

// Command sizes a move of kind k.
func (c Calibration) Command(k Kind) Command {
	switch k {
	case AdvanceOneCell:
		return Command{Kind: k, Magnitude: c.distanceDegrees(c.TileLengthMM)}
	case ReverseShort:
		return Command{Kind: k, Magnitude: -c.distanceDegrees(c.ReturnLengthMM)}
	case TurnLeft90:
		return Command{Kind: k, Magnitude: c.tankTurnDegrees(90)}
	case TurnRight90:
		return Command{Kind: k, Magnitude: c.tankTurnDegrees(-90)}
	case TurnAround180:
		return Command{Kind: k, Magnitude: c.tankTurnDegrees(180)}
	}
	return Command{Kind: k}
}

// distanceDegrees converts a straight-line distance into wheel rotation.
func (c Calibration) distanceDegrees(mm float64) int {
	return int(360 * mm / (math.Pi * c.WheelDiameterMM))
}

// tankTurnDegrees converts a robot rotation into wheel rotation for a turn
// in place (positive = counter-clockwise).
func (c Calibration) tankTurnDegrees(robotDeg float64) int {
	return int(robotDeg * c.WheelBaseMM / c.WheelDiameterMM)
}
