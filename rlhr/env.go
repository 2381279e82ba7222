// Package rlhr simulates moving staff into the open positions of an
// organisation. Every step moves one eligible staff member, identified by
// its index in the current eligible list, into the open position.
package rlhr

import (
	"fmt"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

// Params of the environment
type Params struct {
	Staff     int
	Positions int
	// rows of the staff details and length of the action mask
	Slots int
	Seed  uint64
}

func DefaultParams(slots int) Params {
	return Params{
		Staff:     10,
		Positions: 5,
		Slots:     slots,
		Seed:      uint64(time.Now().UnixNano()),
	}
}

// State of the organisation. Apply returns new states, a state is never modified
type State struct {
	roster   *Roster
	moved    []bool
	position int
	moves    int
}

// Eligible staff indexes in roster order
func (s *State) Eligible() []int {
	eligible := make([]int, 0, len(s.moved))
	for i, m := range s.moved {
		if !m {
			eligible = append(eligible, i)
		}
	}
	return eligible
}

// Moves done in the episode
func (s *State) Moves() int {
	return s.moves
}

// Env is the transition function of the staff movement simulator
type Env struct {
	params Params
	roster *Roster
	closed bool
}

var _ types.TransitionFunction = &Env{}
var _ types.Seedable = &Env{}
var _ types.Renderable = &Env{}

func NewEnv(params Params) (*Env, error) {
	if params.Staff < 1 || params.Positions < 1 || params.Slots < 1 {
		return nil, errors.Wrapf(types.ErrConfiguration, "staff, positions and slots must be positive, got %d, %d, %d",
			params.Staff, params.Positions, params.Slots)
	}
	roster, err := NewRoster(params.Staff, params.Positions, params.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "generating roster")
	}
	return &Env{params: params, roster: roster}, nil
}

// Roster of the current seed
func (e *Env) Roster() *Roster {
	return e.roster
}

// Seed regenerates the roster
func (e *Env) Seed(seed uint64) {
	roster, err := NewRoster(e.params.Staff, e.params.Positions, seed)
	if err != nil {
		return
	}
	e.params.Seed = seed
	e.roster = roster
}

func (e *Env) InitialState() (types.DomainState, error) {
	if e.closed {
		return nil, errors.Wrap(types.ErrIllegalState, "environment closed")
	}
	return &State{
		roster: e.roster,
		moved:  make([]bool, len(e.roster.Staff)),
	}, nil
}

func (e *Env) EnumerateActions(s types.DomainState) []types.ActionID {
	eligible := s.(*State).Eligible()
	actions := make([]types.ActionID, len(eligible))
	for i := range eligible {
		actions[i] = types.ActionID(i)
	}
	return actions
}

func (e *Env) Apply(s types.DomainState, a types.ActionID) (*types.Transition, error) {
	cur := s.(*State)
	eligible := cur.Eligible()
	if int(a) < 0 || int(a) >= len(eligible) {
		return nil, errors.Wrapf(types.ErrContractViolation, "temporary index %d out of %d eligible staff", a, len(eligible))
	}
	staff := eligible[a]

	moved := make([]bool, len(cur.moved))
	copy(moved, cur.moved)
	moved[staff] = true
	next := &State{
		roster:   cur.roster,
		moved:    moved,
		position: (cur.position + 1) % len(cur.roster.Positions),
		moves:    cur.moves + 1,
	}
	return &types.Transition{
		Next:   next,
		Reward: 1,
		Done:   len(eligible) == 1,
		Info: types.Info{
			"staff_id": cur.roster.Staff[staff].ID.String(),
			"position": cur.position,
		},
	}, nil
}

func (e *Env) Observe(s types.DomainState) types.Observation {
	return s.(*State).observe(e.params.Slots)
}

func (e *Env) Render(s types.DomainState, mode types.RenderMode) string {
	st := s.(*State)
	eligible := st.Eligible()
	header := fmt.Sprintf("position %d/%d | moved %d/%d | eligible %d",
		st.position+1, len(st.roster.Positions), st.moves, len(st.roster.Staff), len(eligible))

	var b strings.Builder
	if mode == types.RenderHuman {
		b.WriteString(aurora.Bold(header).String())
	} else {
		b.WriteString(header)
	}
	b.WriteByte('\n')
	for i, idx := range eligible {
		line := fmt.Sprintf("%3d %s", i, st.roster.Staff[idx].ID)
		switch {
		case mode != types.RenderHuman:
		case i < e.params.Slots:
			line = aurora.Green(line).String()
		default:
			line = aurora.Faint(line).String()
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Close is idempotent, no new episode can start afterwards
func (e *Env) Close() error {
	e.closed = true
	return nil
}

// Factory builds environments with as many slots as the configured action
// space. It has the signature of suite.Factory
func Factory(staff, positions int) func(int, types.Config) (types.TransitionFunction, error) {
	return func(i int, config types.Config) (types.TransitionFunction, error) {
		params := Params{
			Staff:     staff,
			Positions: positions,
			Slots:     config.MaxActionSpaceSize,
			Seed:      uint64(time.Now().UnixNano()) + uint64(i),
		}
		if config.Seed != nil {
			params.Seed = *config.Seed
		}
		return NewEnv(params)
	}
}
