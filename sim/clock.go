package sim

import (
	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

// EpisodeClock counts the timesteps of an episode
type EpisodeClock struct {
	end      int
	timestep int
}

// NewEpisodeClock creates a clock expiring at the end timestep
func NewEpisodeClock(end int) *EpisodeClock {
	return &EpisodeClock{end: end}
}

// Timestep of the episode, 0 right after a reset
func (c *EpisodeClock) Timestep() int {
	return c.timestep
}

// End is the timestep at which episodes are forced to terminate
func (c *EpisodeClock) End() int {
	return c.end
}

// Reset the clock for a new episode
func (c *EpisodeClock) Reset() {
	c.timestep = 0
}

// Tick advances the clock by one. Ticking an expired clock means the
// simulator kept stepping a terminated episode and is reported as
// ErrClockOverflow
func (c *EpisodeClock) Tick() (int, error) {
	if c.IsExpired(c.timestep) {
		return c.timestep, errors.Wrapf(types.ErrClockOverflow, "tick at timestep %d with end %d", c.timestep, c.end)
	}
	c.timestep += 1
	return c.timestep, nil
}

// IsExpired reports whether the timestep reached the end of the episode
func (c *EpisodeClock) IsExpired(timestep int) bool {
	return timestep >= c.end
}
