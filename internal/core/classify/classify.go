// Package classify turns raw sensor readings into cell verdicts.
// This is part of the Functional Core - no I/O, only pure functions.
package classify

import (
	"fmt"
	"sort"
	"strings"
)

// Raw colour codes reported by the colour sensor in COL-COLOR mode.
const (
	ColorNone   = 0
	ColorBlack  = 1
	ColorBlue   = 2
	ColorGreen  = 3
	ColorYellow = 4
	ColorRed    = 5
	ColorWhite  = 6
	ColorBrown  = 7
)

var colorNames = []string{"?", "BLACK", "BLUE", "GREEN", "YELLOW", "RED", "WHITE", "BROWN"}

// ColorName returns the sensor's name for code, or "?" for unknown codes.
func ColorName(code int) string {
	if code < 0 || code >= len(colorNames) {
		return "?"
	}
	return colorNames[code]
}

// ParseColor accepts a colour name ("black") or a numeric code ("1").
func ParseColor(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for code, name := range colorNames {
		if code > 0 && name == s {
			return code, nil
		}
	}
	var code int
	if _, err := fmt.Sscanf(s, "%d", &code); err == nil && code >= 0 && code < len(colorNames) {
		return code, nil
	}
	return 0, fmt.Errorf("unknown colour %q", s)
}

// Verdict is the classification of one reading.
type Verdict int

const (
	Indeterminate Verdict = iota
	Traversable
	Obstacle
)

func (v Verdict) String() string {
	switch v {
	case Traversable:
		return "traversable"
	case Obstacle:
		return "obstacle"
	default:
		return "indeterminate"
	}
}

// Classifier maps colour codes to verdicts using configured colour sets.
type Classifier struct {
	obstacle    map[int]bool
	traversable map[int]bool
}

// New creates a classifier. A code may not appear in both sets.
func New(obstacleColors, traversableColors []int) (*Classifier, error) {
	c := &Classifier{
		obstacle:    make(map[int]bool, len(obstacleColors)),
		traversable: make(map[int]bool, len(traversableColors)),
	}
	for _, code := range obstacleColors {
		c.obstacle[code] = true
	}
	for _, code := range traversableColors {
		if c.obstacle[code] {
			return nil, fmt.Errorf("colour %d (%s) is configured as both obstacle and traversable", code, ColorName(code))
		}
		c.traversable[code] = true
	}
	return c, nil
}

// Default returns the classifier used on the competition mat: BLACK and RED
// tiles are obstacles, WHITE and BROWN tiles are floor.
func Default() *Classifier {
	c, _ := New([]int{ColorBlack, ColorRed}, []int{ColorWhite, ColorBrown})
	return c
}

// Classify returns the verdict for a raw colour code.
func (c *Classifier) Classify(code int) Verdict {
	switch {
	case c.obstacle[code]:
		return Obstacle
	case c.traversable[code]:
		return Traversable
	default:
		return Indeterminate
	}
}

// ObstacleColors returns the configured obstacle codes in ascending order.
func (c *Classifier) ObstacleColors() []int { return sortedKeys(c.obstacle) }

// TraversableColors returns the configured traversable codes in ascending order.
func (c *Classifier) TraversableColors() []int { return sortedKeys(c.traversable) }

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// ClassifyDistance classifies an ultrasonic distance reading: anything at or
// closer than thresholdMM is an obstacle, a non-positive reading is unusable.
func ClassifyDistance(distanceMM, thresholdMM int) Verdict {
	switch {
	case distanceMM <= 0:
		return Indeterminate
	case distanceMM <= thresholdMM:
		return Obstacle
	default:
		return Traversable
	}
}

// DistanceClassifier classifies ultrasonic readings in millimetres.
type DistanceClassifier struct {
	ThresholdMM int
}

// Classify returns the verdict for a distance reading.
func (d DistanceClassifier) Classify(distanceMM int) Verdict {
	return ClassifyDistance(distanceMM, d.ThresholdMM)
}
