// Package suite exposes a simulator in the shape the RL suite drives it:
// reset, step and close, configured from a flat set of options
package suite

import (
	"fmt"
	"io"
	"os"

	"github.com/qwirky-yuzu/custom-sim-example/sim"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

// Adapter is the suite facing facade of a simulator
type Adapter struct {
	sim    *sim.Simulator
	config types.Config
	out    io.Writer
}

var _ types.Simulator = &Adapter{}

// New validates the options once and builds the adapter around fn.
// Invalid options fail with types.ErrConfiguration
func New(fn types.TransitionFunction, opts Options, simOpts ...sim.Option) (*Adapter, error) {
	config, err := ParseOptions(opts)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(fn, config, simOpts...)
}

// NewWithConfig builds the adapter from an explicit configuration
func NewWithConfig(fn types.TransitionFunction, config types.Config, simOpts ...sim.Option) (*Adapter, error) {
	s, err := sim.New(fn, config, simOpts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		sim:    s,
		config: config,
		out:    os.Stdout,
	}, nil
}

// SetOutput sets where human rendering is written, stdout by default
func (a *Adapter) SetOutput(w io.Writer) {
	a.out = w
}

// Config of the adapter
func (a *Adapter) Config() types.Config {
	return a.config
}

// Agents acting in the simulator
func (a *Adapter) Agents() []string {
	return []string{a.config.Agent}
}

// Simulator returns the underlying state machine
func (a *Adapter) Simulator() *sim.Simulator {
	return a.sim
}

// Reset starts a new episode
func (a *Adapter) Reset() (types.Observation, types.ActionSet, error) {
	return a.sim.Reset()
}

// ResetWithSeed reseeds the domain and starts a new episode
func (a *Adapter) ResetWithSeed(seed uint64) (types.Observation, types.ActionSet, error) {
	return a.sim.ResetWithSeed(seed)
}

// Step takes one action in the running episode
func (a *Adapter) Step(action types.ActionID) (*types.StepResult, error) {
	return a.sim.Step(action)
}

// Render draws the current state in the configured render mode. In human
// mode the drawing is also written to the adapter output
func (a *Adapter) Render() (string, error) {
	out, err := a.sim.Render(a.config.RenderMode)
	if err != nil {
		return "", err
	}
	if a.config.RenderMode == types.RenderHuman && a.out != nil {
		fmt.Fprintln(a.out, out)
	}
	return out, nil
}

// Close releases the simulator, safe to call more than once
func (a *Adapter) Close() error {
	return a.sim.Close()
}
