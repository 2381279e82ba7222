package grid

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

func TestMovesStayInBounds(t *testing.T) {
	g := NewGridEnvironment(3, 3, 1)
	cases := []struct {
		from   Position
		action types.ActionID
		to     Position
	}{
		{Position{0, 0, 0}, MovementUp, Position{1, 0, 0}},
		{Position{0, 0, 0}, MovementDown, Position{0, 0, 0}},
		{Position{0, 0, 0}, MovementLeft, Position{0, 0, 0}},
		{Position{2, 2, 0}, MovementRight, Position{2, 2, 0}},
		{Position{1, 1, 0}, NoMovement, Position{1, 1, 0}},
		{Position{1, 1, 0}, NextGridMovement, Position{1, 1, 0}},
	}
	for _, c := range cases {
		tr, err := g.Apply(c.from, c.action)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if !tr.Next.(Position).Eq(c.to) {
			t.Errorf("%v %s: expected %v, got %v", c.from, MovementName(c.action), c.to, tr.Next)
		}
	}
}

func TestNextGridAndDoors(t *testing.T) {
	door := Door{From: Position{0, 1, 0}, To: Position{1, 1, 1}}
	g := NewGridEnvironment(2, 2, 2, door)

	tr, _ := g.Apply(Position{1, 1, 0}, NextGridMovement)
	if !tr.Next.(Position).Eq(Position{0, 0, 1}) {
		t.Errorf("corner should lead to the next grid, got %v", tr.Next)
	}
	tr, _ = g.Apply(Position{0, 1, 0}, NextGridMovement)
	if !tr.Next.(Position).Eq(Position{1, 1, 1}) || !tr.Done || tr.Reward != 1 {
		t.Errorf("door should lead to the goal, got %+v", tr)
	}
}

func TestApplyDoesNotMutate(t *testing.T) {
	g := NewGridEnvironment(3, 3, 1)
	s, _ := g.InitialState()
	g.Apply(s, MovementUp)
	if !s.(Position).Eq(Position{0, 0, 0}) {
		t.Errorf("state changed to %v", s)
	}
}

func TestEnumerateActionsAtEdges(t *testing.T) {
	g := NewGridEnvironment(3, 3, 1)
	if n := len(g.EnumerateActions(Position{0, 0, 0})); n != 4 {
		t.Errorf("expected 4 actions in the corner, got %d", n)
	}
	if n := len(g.EnumerateActions(Position{1, 1, 0})); n != 6 {
		t.Errorf("expected 6 actions inside, got %d", n)
	}
}

func TestInvalidDimensions(t *testing.T) {
	g := NewGridEnvironment(0, 3, 1)
	if _, err := g.InitialState(); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestRender(t *testing.T) {
	g := NewGridEnvironment(2, 3, 1)
	out := g.Render(Position{0, 0, 0}, types.RenderANSI)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || lines[1] != "..G" || lines[2] != "A.." {
		t.Errorf("unexpected render\n%s", out)
	}
}

func TestGridAnalyzerAndHeatMap(t *testing.T) {
	a := NewGridAnalyzer()
	trace := types.NewTrace()
	trace.Append(0, Position{0, 0, 0}, MovementUp, &types.StepResult{Observation: Position{1, 0, 0}})
	trace.Append(1, Position{1, 0, 0}, MovementRight, &types.StepResult{Observation: Position{1, 1, 0}})
	trace.Append(2, Position{1, 1, 0}, MovementDown, &types.StepResult{Observation: Position{0, 1, 0}})
	a.Analyze(0, 1, 0, "grid", trace)

	ds := a.DataSet().(*GridDataSet)
	if ds.Visits[0][0] != 1 || ds.Visits[1][0] != 1 || ds.Visits[1][1] != 1 || ds.Height != 2 || ds.Width != 2 {
		t.Fatalf("unexpected dataset %+v", ds)
	}
	merged := MergeGridDatasets([]types.DataSet{ds, ds}).(*GridDataSet)
	if merged.Max() != 2 {
		t.Errorf("expected merged max 2, got %f", merged.Max())
	}

	dir := t.TempDir()
	HeatMapComparator(dir)(0, 1, []string{"grid"}, []types.DataSet{ds})
	if _, err := os.Stat(path.Join(dir, "0_grid_visits.json")); err != nil {
		t.Errorf("visits not saved: %v", err)
	}
	a.Reset()
	if len(a.DataSet().(*GridDataSet).Visits) != 0 {
		t.Errorf("reset should clear the visits")
	}
}
