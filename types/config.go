package types

import (
	"github.com/pkg/errors"
)

// RenderMode selects how a simulator state is drawn
type RenderMode string

const (
	// plain text, returned to the caller
	RenderANSI RenderMode = "ansi"
	// coloured text, written to the adapter output
	RenderHuman RenderMode = "human"
)

// DefaultAgent is the name of the single agent acting in the simulator
const DefaultAgent = "HR_1"

// Config of a simulator. Built once at construction and never mutated
type Config struct {
	// upper bound on the number of concurrently legal actions
	MaxActionSpaceSize int
	// timestep at which an episode is forcibly terminated
	EpsEndTimestep int

	RenderMode RenderMode
	Agent      string
	// nil leaves the domain with its own seeding
	Seed *uint64
}

// NewConfig returns a configuration with the default extras filled in
func NewConfig(maxActionSpaceSize, epsEndTimestep int) Config {
	return Config{
		MaxActionSpaceSize: maxActionSpaceSize,
		EpsEndTimestep:     epsEndTimestep,
		RenderMode:         RenderANSI,
		Agent:              DefaultAgent,
	}
}

// WithSeed returns a copy of the configuration with the seed set
func (c Config) WithSeed(seed uint64) Config {
	c.Seed = &seed
	return c
}

// Validate checks the configuration, errors wrap ErrConfiguration
func (c Config) Validate() error {
	if c.MaxActionSpaceSize < 1 {
		return errors.Wrapf(ErrConfiguration, "max_action_space_size must be positive, got %d", c.MaxActionSpaceSize)
	}
	if c.EpsEndTimestep < 1 {
		return errors.Wrapf(ErrConfiguration, "eps_end_timestep must be at least 1, got %d", c.EpsEndTimestep)
	}
	switch c.RenderMode {
	case RenderANSI, RenderHuman:
	default:
		return errors.Wrapf(ErrConfiguration, "unknown render_mode %q", c.RenderMode)
	}
	if c.Agent == "" {
		return errors.Wrap(ErrConfiguration, "agent name must not be empty")
	}
	return nil
}
