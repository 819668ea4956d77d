package grid

import (
	"errors"
	"testing"

	"github.com/example/mazebot/internal/core/pose"
)

var asciiGlyphs = Glyphs{
	Unvisited:   "?",
	Traversable: ".",
	Obstacle:    "#",
	Robot:       [4]string{"^", ">", "v", "<"},
	Separator:   " ",
}

func mustNew(t *testing.T, rows, cols int) *Map {
	t.Helper()
	m, err := New(rows, cols)
	if err != nil {
		t.Fatalf("New(%d, %d) failed: %v", rows, cols, err)
	}
	return m
}

func TestNew(t *testing.T) {
	m := mustNew(t, 4, 10)
	if m.Rows() != 4 || m.Cols() != 10 || m.Size() != 40 {
		t.Errorf("got %dx%d size %d", m.Rows(), m.Cols(), m.Size())
	}
	if m.Count(Unvisited) != 40 {
		t.Errorf("expected all 40 cells unvisited, got %d", m.Count(Unvisited))
	}

	for _, size := range [][2]int{{0, 4}, {4, 0}, {-1, 3}} {
		if _, err := New(size[0], size[1]); err == nil {
			t.Errorf("New(%d, %d) expected error", size[0], size[1])
		}
	}
}

func TestInBounds(t *testing.T) {
	m := mustNew(t, 3, 5)
	tests := []struct {
		p    pose.Position
		want bool
	}{
		{pose.Position{X: 0, Y: 0}, true},
		{pose.Position{X: 4, Y: 2}, true},
		{pose.Position{X: 5, Y: 0}, false},
		{pose.Position{X: 0, Y: 3}, false},
		{pose.Position{X: -1, Y: 0}, false},
		{pose.Position{X: 0, Y: -1}, false},
	}
	for _, tt := range tests {
		if got := m.InBounds(tt.p); got != tt.want {
			t.Errorf("InBounds(%s) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestIsOpen(t *testing.T) {
	m := mustNew(t, 2, 2)
	a := pose.Position{X: 0, Y: 0}
	b := pose.Position{X: 1, Y: 0}
	c := pose.Position{X: 0, Y: 1}

	if _, err := m.Mark(a, Traversable); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Mark(b, Obstacle); err != nil {
		t.Fatal(err)
	}

	if !m.IsOpen(a) {
		t.Error("traversable cell should be open")
	}
	if m.IsOpen(b) {
		t.Error("obstacle cell should never be open")
	}
	if !m.IsOpen(c) {
		t.Error("unvisited cell should be open")
	}
	if m.IsOpen(pose.Position{X: 2, Y: 0}) {
		t.Error("out of bounds cell should not be open")
	}
}

func TestMark(t *testing.T) {
	m := mustNew(t, 2, 2)
	p := pose.Position{X: 1, Y: 1}

	changed, err := m.Mark(p, Traversable)
	if err != nil || !changed {
		t.Fatalf("first Mark = (%v, %v), want (true, nil)", changed, err)
	}

	changed, err = m.Mark(p, Traversable)
	if err != nil || changed {
		t.Errorf("repeated Traversable Mark = (%v, %v), want (false, nil)", changed, err)
	}

	changed, err = m.Mark(p, Obstacle)
	if err != nil || !changed {
		t.Errorf("Traversable -> Obstacle = (%v, %v), want (true, nil)", changed, err)
	}

	_, err = m.Mark(p, Traversable)
	if !errors.Is(err, ErrObstacleSticky) {
		t.Errorf("Obstacle -> Traversable error = %v, want ErrObstacleSticky", err)
	}
	if s, _ := m.At(p); s != Obstacle {
		t.Errorf("obstacle was re-classified to %s", s)
	}

	_, err = m.Mark(pose.Position{X: 2, Y: 0}, Traversable)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("out of bounds Mark error = %v, want ErrOutOfBounds", err)
	}
}

func TestAt_OutOfBounds(t *testing.T) {
	m := mustNew(t, 2, 2)
	if _, err := m.At(pose.Position{X: -1, Y: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("At error = %v, want ErrOutOfBounds", err)
	}
}

func TestRenderWith_ASCII(t *testing.T) {
	m := mustNew(t, 3, 3)
	mark := func(x, y int, s State) {
		t.Helper()
		if _, err := m.Mark(pose.Position{X: x, Y: y}, s); err != nil {
			t.Fatal(err)
		}
	}
	mark(0, 0, Traversable)
	mark(0, 1, Traversable)
	mark(1, 1, Obstacle)
	mark(2, 2, Traversable)

	robot := pose.Pose{Position: pose.Position{X: 0, Y: 1}, Heading: pose.East}
	got := m.RenderWith(asciiGlyphs, &robot)
	want := "? ? .\n" +
		"> # ?\n" +
		". ? ?\n"
	if got != want {
		t.Errorf("Render mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}

	if m.RenderWith(asciiGlyphs, &robot) != got {
		t.Error("Render is not deterministic")
	}

	noRobot := m.RenderWith(asciiGlyphs, nil)
	if noRobot[6] != '.' {
		t.Errorf("robot cell without robot should show its state, got:\n%s", noRobot)
	}
}

func TestRenderWith(t *testing.T) {
	m := mustNew(t, 1, 3)
	if _, err := m.Mark(pose.Position{X: 1, Y: 0}, Obstacle); err != nil {
		t.Fatal(err)
	}
	g := Glyphs{Unvisited: "⍰", Traversable: "□", Obstacle: "■", Robot: [4]string{"N", "E", "S", "W"}}
	robot := pose.Pose{Position: pose.Position{X: 2, Y: 0}, Heading: pose.South}
	if got := m.RenderWith(g, &robot); got != "⍰■S\n" {
		t.Errorf("RenderWith = %q", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	m := mustNew(t, 2, 3)
	if _, err := m.Mark(pose.Position{X: 2, Y: 1}, Obstacle); err != nil {
		t.Fatal(err)
	}
	snap := m.Snapshot()
	if snap[1][2] != Obstacle {
		t.Errorf("snapshot[1][2] = %s", snap[1][2])
	}

	snap[0][0] = Traversable
	if s, _ := m.At(pose.Position{X: 0, Y: 0}); s != Unvisited {
		t.Error("Snapshot must be a copy")
	}

	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.RenderWith(asciiGlyphs, nil) != "? ? #\n. ? ?\n" {
		t.Errorf("restored render:\n%s", restored.RenderWith(asciiGlyphs, nil))
	}

	if _, err := Restore([][]State{{Unvisited}, {Unvisited, Unvisited}}); err == nil {
		t.Error("ragged snapshot should fail")
	}
}

func TestNamesRoundTrip(t *testing.T) {
	m := mustNew(t, 2, 2)
	if _, err := m.Mark(pose.Position{X: 1, Y: 0}, Obstacle); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Mark(pose.Position{X: 0, Y: 1}, Traversable); err != nil {
		t.Fatal(err)
	}

	names := m.Names()
	want := [][]string{{"unvisited", "obstacle"}, {"traversable", "unvisited"}}
	for y := range want {
		for x := range want[y] {
			if names[y][x] != want[y][x] {
				t.Errorf("Names()[%d][%d] = %s, want %s", y, x, names[y][x], want[y][x])
			}
		}
	}

	restored, err := RestoreNames(names)
	if err != nil {
		t.Fatalf("RestoreNames failed: %v", err)
	}
	if restored.RenderWith(asciiGlyphs, nil) != m.RenderWith(asciiGlyphs, nil) {
		t.Errorf("round trip changed the map:\n%s", restored.RenderWith(asciiGlyphs, nil))
	}
	if _, err := RestoreNames([][]string{{"traversable", "lava"}}); err == nil {
		t.Error("unknown state name should fail")
	}
}

func TestReachable(t *testing.T) {
	m := mustNew(t, 3, 3)
	// wall across the middle row except the right column
	for x := 0; x < 2; x++ {
		if _, err := m.Mark(pose.Position{X: x, Y: 1}, Obstacle); err != nil {
			t.Fatal(err)
		}
	}
	start := pose.Position{X: 0, Y: 0}
	goal := pose.Position{X: 0, Y: 2}
	if !m.Reachable(start, goal) {
		t.Error("goal should be reachable around the wall")
	}

	if _, err := m.Mark(pose.Position{X: 2, Y: 1}, Obstacle); err != nil {
		t.Fatal(err)
	}
	if m.Reachable(start, goal) {
		t.Error("goal should be cut off")
	}
	if m.Reachable(start, pose.Position{X: 9, Y: 9}) {
		t.Error("out of bounds goal is never reachable")
	}
}

func TestParseState(t *testing.T) {
	for _, s := range []State{Unvisited, Traversable, Obstacle} {
		got, err := ParseState(s.String())
		if err != nil || got != s {
			t.Errorf("ParseState(%q) = (%s, %v)", s.String(), got, err)
		}
	}
	if _, err := ParseState("lava"); err == nil {
		t.Error("expected error for unknown state")
	}
}
