package types

// EndType tells why an episode ended
type EndType int

const (
	// episode still running
	EndNone EndType = iota
	// the transition function reported a terminal state
	EndTerminal
	// the episode reached eps_end_timestep
	EndTimestep
)

func (e EndType) String() string {
	switch e {
	case EndTerminal:
		return "terminal"
	case EndTimestep:
		return "timestep"
	default:
		return "none"
	}
}

// Keys set by the simulator on every step info
const (
	InfoTimestep         = "timestep"
	InfoEpisodeReturn    = "episode_return"
	InfoEndType          = "end_type"
	InfoActionSpaceSize  = "action_space_size"
	InfoActionsTruncated = "action_space_truncated"
	InfoTruncatedActions = "truncated_actions"
)

// StepResult is returned by every accepted step
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool
	End         EndType
	Info        Info
	// legal actions for the next step, empty once done
	Actions ActionSet
}

// Terminated is true when the domain ended the episode
func (r *StepResult) Terminated() bool {
	return r.End == EndTerminal
}

// Truncated is true when the timestep bound ended the episode
func (r *StepResult) Truncated() bool {
	return r.End == EndTimestep
}
