package types

import (
	"golang.org/x/exp/slices"
)

// ActionSet is a snapshot of the legal actions of a state.
// Actions are sorted by id and unique
type ActionSet struct {
	Actions []ActionID
	// candidates dropped to honour the maximum action space size
	Truncated int

	members map[ActionID]struct{}
}

// NewActionSet builds a set from the candidates, keeping at most limit
// actions (limit < 1 keeps all). Candidates are de-duplicated and sorted so
// truncation always drops the same actions
func NewActionSet(candidates []ActionID, limit int) ActionSet {
	seen := make(map[ActionID]struct{}, len(candidates))
	unique := make([]ActionID, 0, len(candidates))
	for _, a := range candidates {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		unique = append(unique, a)
	}
	slices.Sort(unique)

	truncated := 0
	if limit > 0 && len(unique) > limit {
		truncated = len(unique) - limit
		unique = unique[:limit]
	}

	members := make(map[ActionID]struct{}, len(unique))
	for _, a := range unique {
		members[a] = struct{}{}
	}
	return ActionSet{
		Actions:   unique,
		Truncated: truncated,
		members:   members,
	}
}

// Len is the number of legal actions
func (s ActionSet) Len() int {
	return len(s.Actions)
}

// Contains reports whether the action is legal
func (s ActionSet) Contains(a ActionID) bool {
	if s.members == nil {
		for _, b := range s.Actions {
			if a == b {
				return true
			}
		}
		return false
	}
	_, ok := s.members[a]
	return ok
}

// IsTruncated is true when candidates were dropped
func (s ActionSet) IsTruncated() bool {
	return s.Truncated > 0
}

// Mask returns a 0/1 vector of length size marking the legal ids in [0, size)
func (s ActionSet) Mask(size int) []float64 {
	mask := make([]float64, size)
	for _, a := range s.Actions {
		if int(a) >= 0 && int(a) < size {
			mask[a] = 1
		}
	}
	return mask
}
