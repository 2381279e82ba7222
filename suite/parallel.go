package suite

import (
	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

// ParallelStep holds the per agent results of a parallel step
type ParallelStep struct {
	Observations map[string]types.Observation
	Rewards      map[string]float64
	// the domain ended the episode
	Terminations map[string]bool
	// eps_end_timestep ended the episode
	Truncations map[string]bool
	Infos       map[string]types.Info
	Actions     map[string]types.ActionSet
}

// ParallelEnv presents an adapter through the parallel API of the suite,
// where every call takes and returns maps keyed by agent name. Agents leave
// the environment once their episode is done
type ParallelEnv struct {
	adapter *Adapter
	agents  []string
}

// NewParallel wraps the adapter
func NewParallel(adapter *Adapter) *ParallelEnv {
	return &ParallelEnv{
		adapter: adapter,
	}
}

// PossibleAgents that can ever act
func (p *ParallelEnv) PossibleAgents() []string {
	return p.adapter.Agents()
}

// Agents still acting in the current episode
func (p *ParallelEnv) Agents() []string {
	return append([]string(nil), p.agents...)
}

// Reset starts a new episode for every agent
func (p *ParallelEnv) Reset() (map[string]types.Observation, map[string]types.ActionSet, error) {
	obs, actions, err := p.adapter.Reset()
	if err != nil {
		return nil, nil, err
	}
	p.agents = p.adapter.Agents()
	observations := make(map[string]types.Observation)
	sets := make(map[string]types.ActionSet)
	for _, agent := range p.agents {
		observations[agent] = obs
		sets[agent] = actions
	}
	return observations, sets, nil
}

// Step takes one action per live agent
func (p *ParallelEnv) Step(actions map[string]types.ActionID) (*ParallelStep, error) {
	if len(p.agents) == 0 {
		return nil, errors.Wrap(types.ErrIllegalState, "no live agents, reset first")
	}
	for agent := range actions {
		if !p.isLive(agent) {
			return nil, errors.Wrapf(types.ErrInvalidAction, "action for unknown agent %q", agent)
		}
	}
	// single agent simulator: one action, one result
	agent := p.agents[0]
	action, ok := actions[agent]
	if !ok {
		return nil, errors.Wrapf(types.ErrInvalidAction, "missing action for agent %q", agent)
	}
	res, err := p.adapter.Step(action)
	if err != nil {
		return nil, err
	}

	step := &ParallelStep{
		Observations: map[string]types.Observation{agent: res.Observation},
		Rewards:      map[string]float64{agent: res.Reward},
		Terminations: map[string]bool{agent: res.Terminated()},
		Truncations:  map[string]bool{agent: res.Truncated()},
		Infos:        map[string]types.Info{agent: res.Info},
		Actions:      map[string]types.ActionSet{agent: res.Actions},
	}
	if res.Done {
		p.agents = nil
	}
	return step, nil
}

// Close the underlying adapter
func (p *ParallelEnv) Close() error {
	p.agents = nil
	return p.adapter.Close()
}

func (p *ParallelEnv) isLive(agent string) bool {
	for _, a := range p.agents {
		if a == agent {
			return true
		}
	}
	return false
}
