package app

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/example/mazebot/internal/adapters/sim"
	"github.com/example/mazebot/internal/core/classify"
	"github.com/example/mazebot/internal/core/pose"
	"github.com/example/mazebot/internal/ctxutil"
	"github.com/example/mazebot/internal/ports/primary"
	"github.com/example/mazebot/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.RunRepository = (*mockRunRepository)(nil)
	_ secondary.EventLog      = (*mockEventLog)(nil)
)

// mockRunRepository implements secondary.RunRepository in memory.
type mockRunRepository struct {
	runs      map[string]*secondary.RunRecord
	cells     map[string][]*secondary.CellRecord
	order     []string
	nextID    int
	createErr error
	listErr   error
}

func newMockRunRepository() *mockRunRepository {
	return &mockRunRepository{
		runs:   make(map[string]*secondary.RunRecord),
		cells:  make(map[string][]*secondary.CellRecord),
		nextID: 1,
	}
}

func (m *mockRunRepository) GetNextID(ctx context.Context) (string, error) {
	id := fmt.Sprintf("RUN-%03d", m.nextID)
	m.nextID++
	return id, nil
}

func (m *mockRunRepository) Create(ctx context.Context, run *secondary.RunRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *run
	m.runs[run.ID] = &cp
	m.order = append(m.order, run.ID)
	return nil
}

func (m *mockRunRepository) Update(ctx context.Context, run *secondary.RunRecord) error {
	if _, ok := m.runs[run.ID]; !ok {
		return fmt.Errorf("run %s not found", run.ID)
	}
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *mockRunRepository) GetByID(ctx context.Context, id string) (*secondary.RunRecord, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return r, nil
}

func (m *mockRunRepository) List(ctx context.Context, filters secondary.RunFilters) ([]*secondary.RunRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.RunRecord
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.runs[m.order[i]]
		if filters.Mode != "" && r.Mode != filters.Mode {
			continue
		}
		if filters.Outcome != "" && r.Outcome != filters.Outcome {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRunRepository) SaveCells(ctx context.Context, runID string, cells []*secondary.CellRecord) error {
	m.cells[runID] = cells
	return nil
}

func (m *mockRunRepository) ListCells(ctx context.Context, runID string) ([]*secondary.CellRecord, error) {
	return m.cells[runID], nil
}

// mockEventLog records events with the run ID found in context.
type mockEventLog struct {
	events []*secondary.EventRecord
}

func newMockEventLog() *mockEventLog {
	return &mockEventLog{}
}

func (m *mockEventLog) LogEvent(ctx context.Context, kind, position, detail string) error {
	m.events = append(m.events, &secondary.EventRecord{
		ID:       int64(len(m.events) + 1),
		RunID:    ctxutil.RunIDFromContext(ctx),
		Kind:     kind,
		Position: position,
		Detail:   detail,
	})
	return nil
}

func (m *mockEventLog) ListEvents(ctx context.Context, runID string) ([]*secondary.EventRecord, error) {
	var out []*secondary.EventRecord
	for _, e := range m.events {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventLog) count(kind string) int {
	n := 0
	for _, e := range m.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// cancellingSensor cancels the run on its n-th read and fails that read
// the way a bridge does when its context ends mid-request.
type cancellingSensor struct {
	inner  secondary.CellSensor
	cancel context.CancelFunc
	n      int
	reads  int
}

func (s *cancellingSensor) ReadCell(ctx context.Context) (int, error) {
	s.reads++
	if s.reads == s.n {
		s.cancel()
		return 0, ctx.Err()
	}
	return s.inner.ReadCell(ctx)
}

// cancelOnRead swaps the robot's sensor for one that cancels the returned
// context on the n-th read.
func cancelOnRead(robot *sim.Robot, n int) (secondary.Robot, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	ports := robot.Ports()
	ports.Sensor = &cancellingSensor{inner: robot, cancel: cancel, n: n}
	return ports, ctx
}

// newSimRobot builds a simulated robot from a layout (top line = highest Y).
func newSimRobot(t *testing.T, layout string, start pose.Pose, opts sim.Options) *sim.Robot {
	t.Helper()
	w, err := sim.ParseWorld([]byte("layout: |\n" + indent(layout)))
	if err != nil {
		t.Fatalf("ParseWorld failed: %v", err)
	}
	r, err := sim.NewRobot(w, start, opts)
	if err != nil {
		t.Fatalf("NewRobot failed: %v", err)
	}
	return r
}

// indent turns a whitespace-separated layout into a YAML block scalar body.
func indent(layout string) string {
	var sb strings.Builder
	for _, line := range strings.Fields(layout) {
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

func settings(rows, cols int, start pose.Pose) primary.RunSettings {
	return primary.RunSettings{
		Rows:   rows,
		Cols:   cols,
		Start:  start,
		Policy: classify.DefaultPolicy(),
	}
}

func countCells(cells [][]string, state string) int {
	n := 0
	for _, row := range cells {
		for _, c := range row {
			if c == state {
				n++
			}
		}
	}
	return n
}

var northAtOrigin = pose.Pose{Heading: pose.North}
