package sim

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

// Status of the simulator state machine
type Status int

const (
	StatusUninitialized Status = iota
	StatusReady
	StatusTerminated
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusReady:
		return "ready"
	case StatusTerminated:
		return "terminated"
	case StatusClosed:
		return "closed"
	}
	return "unknown"
}

// state of a single episode, replaced on every reset
type episode struct {
	number int
	state  types.DomainState
	ret    float64
	end    types.EndType
}

// Simulator drives a TransitionFunction through reset, step and close.
//
// A Simulator is owned by a single caller, it does no locking.
// Wrap it (see suite.Synchronized) to share it between goroutines
type Simulator struct {
	config types.Config
	fn     types.TransitionFunction
	space  *ActionSpace
	clock  *EpisodeClock
	logger *log.Logger

	status   Status
	episode  *episode
	episodes int
}

// Option configures a Simulator
type Option func(*Simulator)

// WithLogger sets the logger, the default discards everything
func WithLogger(logger *log.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// New validates the configuration and creates a simulator for fn
func New(fn types.TransitionFunction, config types.Config, opts ...Option) (*Simulator, error) {
	if fn == nil {
		return nil, errors.Wrap(types.ErrConfiguration, "nil transition function")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		config: config,
		fn:     fn,
		space:  NewActionSpace(fn, config.MaxActionSpaceSize),
		clock:  NewEpisodeClock(config.EpsEndTimestep),
		logger: log.New(io.Discard),
		status: StatusUninitialized,
	}
	for _, o := range opts {
		o(s)
	}
	if config.Seed != nil {
		if seedable, ok := fn.(types.Seedable); ok {
			seedable.Seed(*config.Seed)
		}
	}
	return s, nil
}

// Config the simulator was built with
func (s *Simulator) Config() types.Config {
	return s.config
}

// Status of the state machine
func (s *Simulator) Status() Status {
	return s.status
}

// Timestep of the current episode
func (s *Simulator) Timestep() int {
	return s.clock.Timestep()
}

// Done reports whether the current episode has terminated
func (s *Simulator) Done() bool {
	return s.status == StatusTerminated
}

// Actions returns the legal actions of the current state
func (s *Simulator) Actions() types.ActionSet {
	return s.space.Snapshot()
}

// EpisodeReturn is the sum of rewards of the current episode
func (s *Simulator) EpisodeReturn() float64 {
	if s.episode == nil {
		return 0
	}
	return s.episode.ret
}

// Reset starts a new episode and returns its initial observation and legal
// actions. A running episode is discarded. On error the previous episode is
// left as it was
func (s *Simulator) Reset() (types.Observation, types.ActionSet, error) {
	if s.status == StatusClosed {
		return nil, types.ActionSet{}, errors.Wrap(types.ErrIllegalState, "reset on a closed simulator")
	}
	state, err := s.fn.InitialState()
	if err != nil {
		return nil, types.ActionSet{}, errors.Wrap(err, "creating initial state")
	}
	set, err := s.space.CurrentActions(state)
	if err != nil {
		return nil, types.ActionSet{}, errors.Wrap(err, "enumerating initial actions")
	}

	if s.status == StatusReady {
		s.logger.Debug("discarding running episode", "episode", s.episode.number, "timestep", s.clock.Timestep())
	}
	s.episodes += 1
	s.episode = &episode{
		number: s.episodes,
		state:  state,
	}
	s.clock.Reset()
	s.space.Commit(set)
	s.status = StatusReady

	if set.IsTruncated() {
		s.logger.Debug("action space truncated", "episode", s.episodes, "timestep", 0, "dropped", set.Truncated)
	}
	s.logger.Debug("episode reset", "episode", s.episodes, "actions", set.Len())
	return s.fn.Observe(state), set, nil
}

// ResetWithSeed reseeds a seedable domain and resets
func (s *Simulator) ResetWithSeed(seed uint64) (types.Observation, types.ActionSet, error) {
	if s.status == StatusClosed {
		return nil, types.ActionSet{}, errors.Wrap(types.ErrIllegalState, "reset on a closed simulator")
	}
	seedable, ok := s.fn.(types.Seedable)
	if !ok {
		return nil, types.ActionSet{}, errors.Wrapf(types.ErrConfiguration, "%T does not accept a seed", s.fn)
	}
	seedable.Seed(seed)
	return s.Reset()
}

// Step applies the action to the current state. Steps are only accepted
// between a reset and the end of the episode, and the action must be in the
// current action space. A rejected step changes nothing
func (s *Simulator) Step(action types.ActionID) (*types.StepResult, error) {
	switch s.status {
	case StatusUninitialized:
		return nil, errors.Wrap(types.ErrIllegalState, "step before the first reset")
	case StatusTerminated:
		return nil, errors.Wrapf(types.ErrIllegalState, "step after episode %d terminated, reset first", s.episode.number)
	case StatusClosed:
		return nil, errors.Wrap(types.ErrIllegalState, "step on a closed simulator")
	}
	if !s.space.Contains(action) {
		return nil, errors.Wrapf(types.ErrInvalidAction, "action %d not in %v", action, s.space.Snapshot().Actions)
	}

	transition, err := s.fn.Apply(s.episode.state, action)
	if err != nil {
		return nil, errors.Wrapf(err, "applying action %d", action)
	}
	if transition == nil {
		return nil, errors.Wrapf(types.ErrContractViolation, "apply returned no transition for action %d", action)
	}

	expired := s.clock.IsExpired(s.clock.Timestep() + 1)
	done := transition.Done || expired
	end := types.EndNone
	if transition.Done {
		end = types.EndTerminal
	} else if expired {
		end = types.EndTimestep
	}

	var next types.ActionSet
	if !done {
		next, err = s.space.CurrentActions(transition.Next)
		if err != nil {
			return nil, errors.Wrapf(err, "enumerating actions after timestep %d", s.clock.Timestep()+1)
		}
	}

	timestep, err := s.clock.Tick()
	if err != nil {
		return nil, err
	}

	// nothing below can fail
	s.episode.state = transition.Next
	s.episode.ret += transition.Reward
	s.episode.end = end
	if done {
		s.space.Clear()
		s.status = StatusTerminated
		s.logger.Debug("episode terminated", "episode", s.episode.number, "timestep", timestep, "end", end, "return", s.episode.ret)
	} else {
		s.space.Commit(next)
		if next.IsTruncated() {
			s.logger.Debug("action space truncated", "episode", s.episode.number, "timestep", timestep, "dropped", next.Truncated)
		}
	}

	info := transition.Info.Copy()
	info[types.InfoTimestep] = timestep
	info[types.InfoEpisodeReturn] = s.episode.ret
	info[types.InfoEndType] = end.String()
	info[types.InfoActionSpaceSize] = next.Len()
	info[types.InfoActionsTruncated] = next.IsTruncated()
	info[types.InfoTruncatedActions] = next.Truncated

	return &types.StepResult{
		Observation: s.fn.Observe(transition.Next),
		Reward:      transition.Reward,
		Done:        done,
		End:         end,
		Info:        info,
		Actions:     next,
	}, nil
}

// Render draws the current state. Domains that are not types.Renderable get
// a one line summary
func (s *Simulator) Render(mode types.RenderMode) (string, error) {
	if s.episode == nil || s.status == StatusClosed {
		return "", errors.Wrapf(types.ErrIllegalState, "render while %s", s.status)
	}
	if r, ok := s.fn.(types.Renderable); ok {
		return r.Render(s.episode.state, mode), nil
	}
	return fmt.Sprintf("episode %d, timestep %d/%d, %s, return %.2f, actions %v",
		s.episode.number, s.clock.Timestep(), s.clock.End(), s.status, s.episode.ret, s.space.Snapshot().Actions), nil
}

// Close releases the resources of the transition function. Calling it again
// does nothing
func (s *Simulator) Close() error {
	if s.status == StatusClosed {
		return nil
	}
	s.status = StatusClosed
	s.space.Clear()
	s.logger.Debug("simulator closed", "episodes", s.episodes)
	if err := types.Closer(s.fn).Close(); err != nil {
		return errors.Wrap(err, "closing transition function")
	}
	return nil
}
