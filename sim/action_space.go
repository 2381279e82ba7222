package sim

import (
	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

// ActionSpace computes and holds the legal actions of the current state
type ActionSpace struct {
	fn      types.TransitionFunction
	max     int
	current types.ActionSet
}

// NewActionSpace bounds the actions enumerated by fn to max
func NewActionSpace(fn types.TransitionFunction, max int) *ActionSpace {
	return &ActionSpace{
		fn:  fn,
		max: max,
	}
}

// CurrentActions enumerates the legal actions of the state without
// committing them. Candidates beyond the maximum size are dropped in id order
// and counted in the returned set
func (s *ActionSpace) CurrentActions(state types.DomainState) (types.ActionSet, error) {
	set := types.NewActionSet(s.fn.EnumerateActions(state), s.max)
	if set.Len() == 0 {
		return set, errors.Wrap(types.ErrContractViolation, "transition function enumerated no legal actions")
	}
	return set, nil
}

// Commit installs the snapshot used by Contains
func (s *ActionSpace) Commit(set types.ActionSet) {
	s.current = set
}

// Clear drops the snapshot, nothing is legal afterwards
func (s *ActionSpace) Clear() {
	s.current = types.ActionSet{}
}

// Snapshot returns the committed action set
func (s *ActionSpace) Snapshot() types.ActionSet {
	return s.current
}

// Contains reports whether the action is in the committed snapshot
func (s *ActionSpace) Contains(a types.ActionID) bool {
	return s.current.Contains(a)
}

// Max is the configured maximum action space size
func (s *ActionSpace) Max() int {
	return s.max
}
