// Package grid contains the explored map of the maze.
// This is part of the Functional Core - no I/O, only pure functions.
package grid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/mazebot/internal/core/pose"
)

// State is the knowledge held about one cell.
type State int

const (
	Unvisited State = iota
	Traversable
	Obstacle
)

func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case Traversable:
		return "traversable"
	case Obstacle:
		return "obstacle"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	switch s {
	case "unvisited":
		return Unvisited, nil
	case "traversable":
		return Traversable, nil
	case "obstacle":
		return Obstacle, nil
	}
	return Unvisited, fmt.Errorf("invalid cell state %q", s)
}

var (
	// ErrOutOfBounds is returned for any access outside the grid.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrObstacleSticky is returned when a cell marked Obstacle is re-classified.
	ErrObstacleSticky = errors.New("obstacle cells cannot be re-classified")
)

// Map is a rows x cols grid of cell states. Row index is Y, column index is X.
// A Map is owned by a single driver for the length of a run.
type Map struct {
	rows, cols int
	cells      []State
}

// New creates a map with every cell Unvisited.
func New(rows, cols int) (*Map, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("invalid grid size %dx%d: rows and cols must be at least 1", rows, cols)
	}
	return &Map{rows: rows, cols: cols, cells: make([]State, rows*cols)}, nil
}

// Rows returns the number of rows (Y extent).
func (m *Map) Rows() int { return m.rows }

// Cols returns the number of columns (X extent).
func (m *Map) Cols() int { return m.cols }

// Size returns rows*cols.
func (m *Map) Size() int { return m.rows * m.cols }

// InBounds reports whether p lies on the grid.
func (m *Map) InBounds(p pose.Position) bool {
	return p.X >= 0 && p.X < m.cols && p.Y >= 0 && p.Y < m.rows
}

// IsOpen reports whether p may be entered: in bounds and not an Obstacle.
func (m *Map) IsOpen(p pose.Position) bool {
	return m.InBounds(p) && m.cells[m.index(p)] != Obstacle
}

// IsUnvisited reports whether p is in bounds and still Unvisited.
func (m *Map) IsUnvisited(p pose.Position) bool {
	return m.InBounds(p) && m.cells[m.index(p)] == Unvisited
}

// At returns the state of p.
func (m *Map) At(p pose.Position) (State, error) {
	if !m.InBounds(p) {
		return Unvisited, fmt.Errorf("read %s on %dx%d grid: %w", p, m.rows, m.cols, ErrOutOfBounds)
	}
	return m.cells[m.index(p)], nil
}

// Mark sets the state of p and reports whether the stored state changed.
//
// Obstacle cells are never re-classified. Marking a Traversable cell
// Traversable again is a no-op.
func (m *Map) Mark(p pose.Position, s State) (bool, error) {
	if !m.InBounds(p) {
		return false, fmt.Errorf("mark %s on %dx%d grid: %w", p, m.rows, m.cols, ErrOutOfBounds)
	}
	i := m.index(p)
	cur := m.cells[i]
	if cur == s {
		return false, nil
	}
	if cur == Obstacle {
		return false, fmt.Errorf("mark %s %s: %w", p, s, ErrObstacleSticky)
	}
	m.cells[i] = s
	return true, nil
}

// Count returns the number of cells in state s.
func (m *Map) Count(s State) int {
	n := 0
	for _, c := range m.cells {
		if c == s {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the cells indexed [y][x].
func (m *Map) Snapshot() [][]State {
	out := make([][]State, m.rows)
	for y := range out {
		out[y] = make([]State, m.cols)
		copy(out[y], m.cells[y*m.cols:(y+1)*m.cols])
	}
	return out
}

// Restore builds a map from a snapshot indexed [y][x].
func Restore(cells [][]State) (*Map, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}
	m, err := New(len(cells), len(cells[0]))
	if err != nil {
		return nil, err
	}
	for y, row := range cells {
		if len(row) != m.cols {
			return nil, fmt.Errorf("snapshot row %d has %d cells, want %d", y, len(row), m.cols)
		}
		copy(m.cells[y*m.cols:], row)
	}
	return m, nil
}

// Names returns the snapshot as state names indexed [y][x].
func (m *Map) Names() [][]string {
	out := make([][]string, m.rows)
	for y := range out {
		out[y] = make([]string, m.cols)
		for x := range out[y] {
			out[y][x] = m.cells[y*m.cols+x].String()
		}
	}
	return out
}

// RestoreNames is Restore over state names, the inverse of Names.
func RestoreNames(names [][]string) (*Map, error) {
	cells := make([][]State, len(names))
	for y, row := range names {
		cells[y] = make([]State, len(row))
		for x, name := range row {
			s, err := ParseState(name)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", x, y, err)
			}
			cells[y][x] = s
		}
	}
	return Restore(cells)
}

// Reachable reports whether to can be reached from from through open cells.
func (m *Map) Reachable(from, to pose.Position) bool {
	if !m.IsOpen(from) || !m.IsOpen(to) {
		return false
	}
	seen := make([]bool, len(m.cells))
	queue := []pose.Position{from}
	seen[m.index(from)] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			return true
		}
		for _, h := range pose.Headings {
			n := pose.Advance(cur, h)
			if !m.IsOpen(n) || seen[m.index(n)] {
				continue
			}
			seen[m.index(n)] = true
			queue = append(queue, n)
		}
	}
	return false
}

func (m *Map) index(p pose.Position) int {
	return p.Y*m.cols + p.X
}

// Glyphs maps each state and robot heading to a token for Render.
type Glyphs struct {
	Unvisited   string
	Traversable string
	Obstacle    string
	Robot       [4]string // indexed by pose.Heading
	Separator   string
}

// RenderWith draws the map with the top line being the highest Y. If robot
// is non-nil its cell is drawn with the heading glyph.
func (m *Map) RenderWith(g Glyphs, robot *pose.Pose) string {
	var b strings.Builder
	for y := m.rows - 1; y >= 0; y-- {
		for x := 0; x < m.cols; x++ {
			if x > 0 {
				b.WriteString(g.Separator)
			}
			p := pose.Position{X: x, Y: y}
			if robot != nil && robot.Position == p && robot.Heading.Valid() {
				b.WriteString(g.Robot[robot.Heading])
				continue
			}
			b.WriteString(g.glyph(m.cells[m.index(p)]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (g Glyphs) glyph(s State) string {
	switch s {
	case Traversable:
		return g.Traversable
	case Obstacle:
		return g.Obstacle
	default:
		return g.Unvisited
	}
}
