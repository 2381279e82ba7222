package types

import (
	"time"

	"github.com/pkg/errors"
)

// Simulator is the call surface the suite drives
type Simulator interface {
	// Reset starts a new episode
	Reset() (Observation, ActionSet, error)
	// Step takes one action in the running episode
	Step(ActionID) (*StepResult, error)
	// Close releases the simulator
	Close() error
}

type AgentConfig struct {
	Episodes int
	// maximum steps per episode, 0 runs until the simulator reports done
	Horizon   int
	Policy    Policy
	Simulator Simulator
}

// RL Agent configured with the corresponding
// policy and simulator
type Agent struct {
	config    *AgentConfig
	policy    Policy
	simulator Simulator
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:    config,
		policy:    config.Policy,
		simulator: config.Simulator,
	}
}

// Run the agent for the configured number of episodes and return the traces
func (a *Agent) Run() ([]*Trace, error) {
	traces := make([]*Trace, 0, a.config.Episodes)
	for i := 0; i < a.config.Episodes; i++ {
		eCtx := NewEpisodeContext(i, "agent", 0)
		a.RunEpisode(eCtx)
		eCtx.Cancel()
		if eCtx.Err != nil {
			return traces, eCtx.Err
		}
		traces = append(traces, eCtx.Trace)
	}
	return traces, nil
}

// RunEpisode runs a single episode, storing the trace and outcome in the context
func (a *Agent) RunEpisode(eCtx *EpisodeContext) {
	observation, actions, err := a.simulator.Reset()
	if err != nil {
		eCtx.SetError(errors.Wrap(err, "reset"))
		return
	}

	for i := 0; a.config.Horizon <= 0 || i < a.config.Horizon; i++ {
		select {
		case <-eCtx.Context.Done():
			return
		default:
		}
		if actions.Len() == 0 {
			break
		}
		nextAction, ok := a.policy.NextAction(i, observation, actions.Actions)
		if !ok {
			break
		}

		start := time.Now()
		res, err := a.simulator.Step(nextAction)
		eCtx.Report.AddTimeEntry(time.Since(start), "step_time", "agent.RunEpisode")
		if err != nil {
			eCtx.SetError(errors.Wrapf(err, "step %d", i))
			return
		}
		a.policy.Update(i, observation, nextAction, res.Reward, res.Observation)

		eCtx.Trace.Append(i, observation, nextAction, res)
		eCtx.Timesteps += 1
		eCtx.Report.setEpisodeStep(eCtx.Timesteps)
		if res.Info[InfoActionsTruncated] == true {
			eCtx.Report.AddIntEntry(res.Actions.Truncated, "truncated_actions", "agent.RunEpisode")
		}

		observation = res.Observation
		actions = res.Actions
		if res.Done {
			eCtx.End = res.End
			break
		}
	}
	a.policy.UpdateIteration(eCtx.Episode, eCtx.Trace)
}
