package suite

import (
	"context"

	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/sim"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"golang.org/x/sync/errgroup"
)

// Factory creates the transition function of the i-th environment
type Factory func(i int, config types.Config) (types.TransitionFunction, error)

// VectorEnv runs independent adapters side by side. Every environment owns
// its own simulator, calls fan out one goroutine per environment
type VectorEnv struct {
	envs []*Adapter
}

// NewVector creates n adapters sharing the same options
func NewVector(n int, factory Factory, opts Options, simOpts ...sim.Option) (*VectorEnv, error) {
	if n < 1 {
		return nil, errors.Wrapf(types.ErrConfiguration, "vector of %d environments", n)
	}
	config, err := ParseOptions(opts)
	if err != nil {
		return nil, err
	}
	v := &VectorEnv{envs: make([]*Adapter, 0, n)}
	for i := 0; i < n; i++ {
		envConfig := config
		if config.Seed != nil {
			// distinct streams per environment
			envConfig = config.WithSeed(*config.Seed + uint64(i))
		}
		fn, err := factory(i, envConfig)
		if err != nil {
			v.Close()
			return nil, errors.Wrapf(err, "creating environment %d", i)
		}
		adapter, err := NewWithConfig(fn, envConfig, simOpts...)
		if err != nil {
			v.Close()
			return nil, err
		}
		v.envs = append(v.envs, adapter)
	}
	return v, nil
}

// Len is the number of environments
func (v *VectorEnv) Len() int {
	return len(v.envs)
}

// Env returns the i-th adapter
func (v *VectorEnv) Env(i int) *Adapter {
	return v.envs[i]
}

// Reset every environment
func (v *VectorEnv) Reset(ctx context.Context) ([]types.Observation, []types.ActionSet, error) {
	observations := make([]types.Observation, len(v.envs))
	actions := make([]types.ActionSet, len(v.envs))
	g, ctx := errgroup.WithContext(ctx)
	for i, env := range v.envs {
		i, env := i, env
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			obs, set, err := env.Reset()
			if err != nil {
				return errors.Wrapf(err, "environment %d", i)
			}
			observations[i] = obs
			actions[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return observations, actions, nil
}

// ResetAt resets a single environment, typically one whose episode is done
func (v *VectorEnv) ResetAt(i int) (types.Observation, types.ActionSet, error) {
	if i < 0 || i >= len(v.envs) {
		return nil, types.ActionSet{}, errors.Wrapf(types.ErrInvalidAction, "no environment %d", i)
	}
	return v.envs[i].Reset()
}

// Step every environment with its own action. Each environment keeps its
// own all-or-nothing guarantee, the vector as a whole does not: when one
// environment fails the others may already have stepped
func (v *VectorEnv) Step(ctx context.Context, actions []types.ActionID) ([]*types.StepResult, error) {
	if len(actions) != len(v.envs) {
		return nil, errors.Wrapf(types.ErrInvalidAction, "%d actions for %d environments", len(actions), len(v.envs))
	}
	results := make([]*types.StepResult, len(v.envs))
	g, ctx := errgroup.WithContext(ctx)
	for i, env := range v.envs {
		i, env := i, env
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := env.Step(actions[i])
			if err != nil {
				return errors.Wrapf(err, "environment %d", i)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close every environment, returning the first error
func (v *VectorEnv) Close() error {
	var first error
	for _, env := range v.envs {
		if err := env.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
