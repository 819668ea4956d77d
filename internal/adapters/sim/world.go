// Package sim provides an in-process robot and arena for dry runs and tests.
package sim

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/mazebot/internal/core/classify"
	"github.com/example/mazebot/internal/core/pose"
)

// World is an arena of coloured tiles. Y grows North; layout rows are
// written top line first, so the first line is the highest Y.
type World struct {
	rows   int
	cols   int
	colors []int

	Start *pose.Pose
	Goal  *pose.Position
}

// NewWorld creates a rows x cols arena painted with the floor colour.
func NewWorld(rows, cols, floor int) (*World, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("world must be at least 1x1, got %dx%d", cols, rows)
	}
	w := &World{rows: rows, cols: cols, colors: make([]int, rows*cols)}
	for i := range w.colors {
		w.colors[i] = floor
	}
	return w, nil
}

func (w *World) Rows() int { return w.rows }
func (w *World) Cols() int { return w.cols }

// InBounds reports whether p is a tile of the arena.
func (w *World) InBounds(p pose.Position) bool {
	return p.X >= 0 && p.X < w.cols && p.Y >= 0 && p.Y < w.rows
}

// ColorAt returns the colour code painted at p.
func (w *World) ColorAt(p pose.Position) (int, bool) {
	if !w.InBounds(p) {
		return 0, false
	}
	return w.colors[p.Y*w.cols+p.X], true
}

// Paint sets the colour code at p.
func (w *World) Paint(p pose.Position, code int) error {
	if !w.InBounds(p) {
		return fmt.Errorf("paint %s: outside %dx%d world", p, w.cols, w.rows)
	}
	w.colors[p.Y*w.cols+p.X] = code
	return nil
}

// layoutGlyphs maps layout characters to colour codes. '.' is the floor colour.
var layoutGlyphs = map[rune]int{
	'#': classify.ColorBlack,
	'R': classify.ColorRed,
	'W': classify.ColorWhite,
	'B': classify.ColorBrown,
	'?': classify.ColorNone,
}

type worldFile struct {
	Rows   int         `yaml:"rows"`
	Cols   int         `yaml:"cols"`
	Floor  string      `yaml:"floor"`
	Start  string      `yaml:"start"`
	Goal   string      `yaml:"goal"`
	Layout string      `yaml:"layout"`
	Cells  []cellPaint `yaml:"cells"`
}

type cellPaint struct {
	At    string `yaml:"at"`
	Color string `yaml:"color"`
}

// LoadWorld reads a world file.
func LoadWorld(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world %s: %w", path, err)
	}
	w, err := ParseWorld(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse world %s: %w", path, err)
	}
	return w, nil
}

// ParseWorld decodes a YAML world. rows and cols may be omitted when a
// layout is given.
func ParseWorld(data []byte) (*World, error) {
	var f worldFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	floor := classify.ColorWhite
	if f.Floor != "" {
		code, err := classify.ParseColor(f.Floor)
		if err != nil {
			return nil, fmt.Errorf("floor: %w", err)
		}
		floor = code
	}

	lines := layoutLines(f.Layout)
	if f.Rows == 0 {
		f.Rows = len(lines)
	}
	if f.Cols == 0 && len(lines) > 0 {
		f.Cols = len([]rune(lines[0]))
	}

	w, err := NewWorld(f.Rows, f.Cols, floor)
	if err != nil {
		return nil, err
	}

	if len(lines) > 0 {
		if len(lines) != f.Rows {
			return nil, fmt.Errorf("layout has %d lines, want %d", len(lines), f.Rows)
		}
		for i, line := range lines {
			y := f.Rows - 1 - i
			runes := []rune(line)
			if len(runes) != f.Cols {
				return nil, fmt.Errorf("layout line %d has %d tiles, want %d", i+1, len(runes), f.Cols)
			}
			for x, r := range runes {
				if r == '.' {
					continue
				}
				code, ok := layoutGlyphs[r]
				if !ok {
					return nil, fmt.Errorf("layout line %d: unknown tile %q", i+1, r)
				}
				w.colors[y*f.Cols+x] = code
			}
		}
	}

	for _, c := range f.Cells {
		p, err := pose.ParsePosition(c.At)
		if err != nil {
			return nil, err
		}
		code, err := classify.ParseColor(c.Color)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", c.At, err)
		}
		if err := w.Paint(p, code); err != nil {
			return nil, err
		}
	}

	if f.Start != "" {
		start, err := pose.ParsePose(f.Start)
		if err != nil {
			return nil, err
		}
		if !w.InBounds(start.Position) {
			return nil, fmt.Errorf("start %s outside world", start.Position)
		}
		w.Start = &start
	}
	if f.Goal != "" {
		goal, err := pose.ParsePosition(f.Goal)
		if err != nil {
			return nil, err
		}
		if !w.InBounds(goal) {
			return nil, fmt.Errorf("goal %s outside world", goal)
		}
		w.Goal = &goal
	}
	return w, nil
}

func layoutLines(layout string) []string {
	var lines []string
	for _, l := range strings.Split(layout, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Render draws the arena in layout syntax, highest Y first. Colours without
// a layout glyph are written as their numeric code.
func (w *World) Render() string {
	glyphs := make(map[int]rune, len(layoutGlyphs))
	for r, code := range layoutGlyphs {
		glyphs[code] = r
	}

	var sb strings.Builder
	for y := w.rows - 1; y >= 0; y-- {
		for x := 0; x < w.cols; x++ {
			code := w.colors[y*w.cols+x]
			if r, ok := glyphs[code]; ok {
				sb.WriteRune(r)
			} else {
				fmt.Fprintf(&sb, "%d", code)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
