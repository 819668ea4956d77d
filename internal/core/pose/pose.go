// Package pose contains the robot's believed location and orientation.
// This is part of the Functional Core - no I/O, only pure functions.
//
// Coordinate convention: X grows East, Y grows North. The start corner is (0,0)
// and moving forward from a North-facing start increases Y.
package pose

import (
	"fmt"
	"strings"
)

// Heading is one of the four compass directions, cyclically ordered.
type Heading int

const (
	North Heading = iota
	East
	South
	West
)

// Turn deltas.
const (
	Right  = 1
	Left   = -1
	Around = 2
)

// Headings lists all headings in clockwise order starting at North.
var Headings = [4]Heading{North, East, South, West}

var headingNames = [4]string{"N", "E", "S", "W"}

// Turn returns the heading reached by rotating h by delta quarter turns
// (positive = clockwise). Any delta is normalised mod 4.
func Turn(h Heading, delta int) Heading {
	return Heading(((int(h)+delta)%4 + 4) % 4)
}

// Relative returns the delta in {0, Right, Around, Left} that turns from into to.
func Relative(from, to Heading) int {
	switch ((int(to)-int(from))%4 + 4) % 4 {
	case 1:
		return Right
	case 2:
		return Around
	case 3:
		return Left
	default:
		return 0
	}
}

// Valid reports whether h is one of the four compass headings.
func (h Heading) Valid() bool {
	return h >= North && h <= West
}

// Degrees returns the clockwise angle of h relative to North.
func (h Heading) Degrees() int {
	return int(h) * 90
}

func (h Heading) String() string {
	if !h.Valid() {
		return fmt.Sprintf("Heading(%d)", int(h))
	}
	return headingNames[h]
}

// ParseHeading accepts "N", "north", "E", "east", ... (case-insensitive).
func ParseHeading(s string) (Heading, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return North, fmt.Errorf("invalid heading %q: use N, E, S or W", s)
}

// Position is a cell coordinate on the grid.
type Position struct {
	X, Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Advance returns the position one step ahead of p in heading h.
func Advance(p Position, h Heading) Position {
	switch h {
	case North:
		p.Y++
	case East:
		p.X++
	case South:
		p.Y--
	case West:
		p.X--
	}
	return p
}

// ParsePosition parses "x,y".
func ParsePosition(s string) (Position, error) {
	var p Position
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d,%d", &p.X, &p.Y); err != nil {
		return Position{}, fmt.Errorf("invalid position %q: want x,y", s)
	}
	return p, nil
}

// Pose is the robot's believed (Position, Heading).
type Pose struct {
	Position Position
	Heading  Heading
}

// Ahead returns the cell in front of the pose.
func (p Pose) Ahead() Position {
	return Advance(p.Position, p.Heading)
}

// Behind returns the cell the pose would reverse into.
func (p Pose) Behind() Position {
	return Advance(p.Position, Turn(p.Heading, Around))
}

// Turned returns a copy of the pose rotated by delta.
func (p Pose) Turned(delta int) Pose {
	p.Heading = Turn(p.Heading, delta)
	return p
}

// Moved returns a copy of the pose advanced one cell along its heading.
func (p Pose) Moved() Pose {
	p.Position = p.Ahead()
	return p
}

func (p Pose) String() string {
	return fmt.Sprintf("%s %s", p.Position, p.Heading)
}

// ParsePose parses "x,y,H" where H is a heading accepted by ParseHeading.
func ParsePose(s string) (Pose, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Pose{}, fmt.Errorf("invalid pose %q: want x,y,H", s)
	}
	pos, err := ParsePosition(parts[0] + "," + parts[1])
	if err != nil {
		return Pose{}, err
	}
	h, err := ParseHeading(parts[2])
	if err != nil {
		return Pose{}, err
	}
	return Pose{Position: pos, Heading: h}, nil
}
