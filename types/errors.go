package types

import "github.com/pkg/errors"

// Errors returned by the simulator shell. They are always wrapped with
// context, match them with errors.Is
var (
	// invalid or missing configuration at construction time
	ErrConfiguration = errors.New("configuration error")
	// operation not permitted in the current simulator state
	ErrIllegalState = errors.New("illegal state")
	// action is not a member of the current action space
	ErrInvalidAction = errors.New("invalid action")
	// clock ticked past the end of the episode, a wiring bug
	ErrClockOverflow = errors.New("clock overflow")
	// transition function broke its size or non-nil guarantees
	ErrContractViolation = errors.New("transition function contract violation")
)
