package grid

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Movement ids, also the action ids of the environment
const (
	MovementUp types.ActionID = iota
	MovementDown
	MovementLeft
	MovementRight
	NoMovement
	NextGridMovement
)

var movementNames = map[types.ActionID]string{
	MovementUp:       "Up",
	MovementDown:     "Down",
	MovementLeft:     "Left",
	MovementRight:    "Right",
	NoMovement:       "Nothing",
	NextGridMovement: "Next",
}

// MovementName of the action id
func MovementName(a types.ActionID) string {
	if name, ok := movementNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", a)
}

// GridEnvironment is a stack of height x width grids. An agent moves in the
// current grid and jumps to the next one from the far corner or through doors.
// Reaching the goal ends the episode with reward 1
type GridEnvironment struct {
	Height int
	Width  int
	Grids  int
	Doors  []Door
	Goal   Position
}

type Door struct {
	From Position
	To   Position
}

var _ types.TransitionFunction = &GridEnvironment{}
var _ types.Renderable = &GridEnvironment{}

// NewGridEnvironment places the goal at the far corner of the last grid
func NewGridEnvironment(height, width, grids int, doors ...Door) *GridEnvironment {
	return &GridEnvironment{
		Height: height,
		Width:  width,
		Grids:  grids,
		Doors:  doors,
		Goal:   Position{I: height - 1, J: width - 1, K: grids - 1},
	}
}

// WithGoal moves the goal
func (g *GridEnvironment) WithGoal(goal Position) *GridEnvironment {
	g.Goal = goal
	return g
}

func (g *GridEnvironment) InitialState() (types.DomainState, error) {
	if g.Height < 1 || g.Width < 1 || g.Grids < 1 {
		return nil, errors.Wrapf(types.ErrConfiguration, "grid dimensions must be positive, got %dx%dx%d", g.Height, g.Width, g.Grids)
	}
	return Position{0, 0, 0}, nil
}

func (g *GridEnvironment) EnumerateActions(s types.DomainState) []types.ActionID {
	p := s.(Position)
	if p.I == 0 && p.J == 0 {
		return []types.ActionID{NoMovement, NextGridMovement, MovementUp, MovementRight}
	} else if p.I == 0 {
		return []types.ActionID{NoMovement, NextGridMovement, MovementUp, MovementRight, MovementLeft}
	} else if p.J == 0 {
		return []types.ActionID{NoMovement, NextGridMovement, MovementUp, MovementRight, MovementDown}
	}
	return []types.ActionID{MovementUp, MovementDown, MovementLeft, MovementRight, NoMovement, NextGridMovement}
}

func (g *GridEnvironment) Apply(s types.DomainState, a types.ActionID) (*types.Transition, error) {
	cur, ok := s.(Position)
	if !ok {
		return nil, errors.Errorf("grid state of type %T", s)
	}
	next := g.move(cur, a)
	reached := next.Eq(g.Goal)
	reward := 0.0
	if reached {
		reward = 1
	}
	return &types.Transition{
		Next:   next,
		Reward: reward,
		Done:   reached,
		Info:   types.Info{"movement": MovementName(a), "grid": next.K},
	}, nil
}

func (g *GridEnvironment) move(cur Position, a types.ActionID) Position {
	newPos := cur
	if a == NextGridMovement {
		for _, d := range g.Doors {
			if d.From.Eq(cur) {
				return d.To
			}
		}
	}

	switch a {
	case NoMovement:
	case MovementUp:
		newPos.I = min(g.Height-1, cur.I+1)
	case MovementDown:
		newPos.I = max(0, cur.I-1)
	case MovementLeft:
		newPos.J = max(0, cur.J-1)
	case MovementRight:
		newPos.J = min(g.Width-1, cur.J+1)
	case NextGridMovement:
		if cur.I == g.Height-1 && cur.J == g.Width-1 && cur.K < g.Grids-1 {
			newPos = Position{0, 0, cur.K + 1}
		}
	}
	return newPos
}

func (g *GridEnvironment) Observe(s types.DomainState) types.Observation {
	return s.(Position)
}

// Render draws the current grid, top row first
func (g *GridEnvironment) Render(s types.DomainState, _ types.RenderMode) string {
	p := s.(Position)
	var b strings.Builder
	fmt.Fprintf(&b, "grid %d/%d\n", p.K+1, g.Grids)
	for i := g.Height - 1; i >= 0; i-- {
		for j := 0; j < g.Width; j++ {
			cell := Position{i, j, p.K}
			switch {
			case cell.Eq(p):
				b.WriteByte('A')
			case cell.Eq(g.Goal):
				b.WriteByte('G')
			case g.isDoor(cell):
				b.WriteByte('D')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (g *GridEnvironment) isDoor(p Position) bool {
	for _, d := range g.Doors {
		if d.From.Eq(p) {
			return true
		}
	}
	return false
}

type Position struct {
	I int `json:"i"`
	J int `json:"j"`
	K int `json:"k"`
}

var _ types.Hashable = Position{}

func (p Position) Hash() string {
	return fmt.Sprintf("(%d, %d, %d)", p.I, p.J, p.K)
}

func (p Position) Eq(other Position) bool {
	return p.I == other.I && p.J == other.J && p.K == other.K
}
