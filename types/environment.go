package types

import (
	"fmt"
	"io"
)

// ActionID identifies a discrete action.
// Action ids are ordered canonically by their integer value
type ActionID int

// DomainState is the world state of a concrete simulator.
// The shell never looks inside it
type DomainState interface{}

// Observation is what the suite gets to see of a DomainState
type Observation interface{}

// Info carries auxiliary diagnostic values returned with every step
type Info map[string]interface{}

// Copy returns a shallow copy of the info map, never nil
func (i Info) Copy() Info {
	out := make(Info, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// Transition is the outcome of applying an action to a domain state
type Transition struct {
	Next   DomainState
	Reward float64
	Done   bool
	Info   Info
}

// TransitionFunction is the domain logic a concrete simulator plugs into the shell.
//
// Apply must not mutate the state it is given, the shell only commits the
// returned state once every other check of the step has passed.
type TransitionFunction interface {
	// Initial domain state of a new episode, called on every reset
	InitialState() (DomainState, error)
	// Legal actions from the state, in any order
	EnumerateActions(DomainState) []ActionID
	// Apply a validated action and return the resulting transition
	Apply(DomainState, ActionID) (*Transition, error)
	// Observation of the state as exposed to the suite
	Observe(DomainState) Observation
}

// Seedable domains accept a seed for their random number generator
type Seedable interface {
	Seed(uint64)
}

// Renderable domains can draw a state
type Renderable interface {
	Render(DomainState, RenderMode) string
}

var _ io.Closer = (*nopCloser)(nil)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Closer returns the io.Closer of the transition function, or a no-op one
func Closer(fn TransitionFunction) io.Closer {
	if c, ok := fn.(io.Closer); ok {
		return c
	}
	return nopCloser{}
}

// Hashable observations provide a deterministic key, used by tabular policies
type Hashable interface {
	Hash() string
}

// ObservationKey returns a deterministic key for the observation
func ObservationKey(o Observation) string {
	if h, ok := o.(Hashable); ok {
		return h.Hash()
	}
	return fmt.Sprintf("%v", o)
}
