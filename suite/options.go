package suite

import (
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"github.com/spf13/cast"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Options recognised by the adapter
const (
	// required, positive integer bounding the action space
	OptMaxActionSpaceSize = "max_action_space_size"
	// required, positive integer bounding the episode length
	OptEpsEndTimestep = "eps_end_timestep"
	// "ansi" (default) or "human"
	OptRenderMode = "render_mode"
	// agent name, defaults to types.DefaultAgent
	OptAgent = "agent"
	// seed of the domain random number generator, unset by default
	OptSeed = "seed"
)

var recognisedOptions = map[string]bool{
	OptMaxActionSpaceSize: true,
	OptEpsEndTimestep:     true,
	OptRenderMode:         true,
	OptAgent:              true,
	OptSeed:               true,
}

// Options as handed over by the suite, for example a decoded YAML or JSON
// document
type Options map[string]interface{}

// LoadOptions reads options from a YAML file
func LoadOptions(path string) (Options, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(types.ErrConfiguration, "reading %s: %s", path, err)
	}
	opts := make(Options)
	if err := yaml.Unmarshal(bs, &opts); err != nil {
		return nil, errors.Wrapf(types.ErrConfiguration, "parsing %s: %s", path, err)
	}
	return opts, nil
}

// Merge returns a copy of the options overridden by other
func (o Options) Merge(other Options) Options {
	out := make(Options, len(o)+len(other))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// ParseOptions validates the options and builds the simulator configuration.
// Unknown keys are rejected
func ParseOptions(opts Options) (types.Config, error) {
	unknown := make([]string, 0)
	for k := range opts {
		if !recognisedOptions[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return types.Config{}, errors.Wrapf(types.ErrConfiguration, "unrecognised options: %s", strings.Join(unknown, ", "))
	}

	maxActions, err := requiredPositiveInt(opts, OptMaxActionSpaceSize)
	if err != nil {
		return types.Config{}, err
	}
	end, err := requiredPositiveInt(opts, OptEpsEndTimestep)
	if err != nil {
		return types.Config{}, err
	}
	config := types.NewConfig(maxActions, end)

	if v, ok := opts[OptRenderMode]; ok {
		mode, err := cast.ToStringE(v)
		if err != nil {
			return types.Config{}, errors.Wrapf(types.ErrConfiguration, "%s: %s", OptRenderMode, err)
		}
		config.RenderMode = types.RenderMode(mode)
	}
	if v, ok := opts[OptAgent]; ok {
		agent, err := cast.ToStringE(v)
		if err != nil {
			return types.Config{}, errors.Wrapf(types.ErrConfiguration, "%s: %s", OptAgent, err)
		}
		config.Agent = agent
	}
	if v, ok := opts[OptSeed]; ok && v != nil {
		if err := checkInteger(OptSeed, v); err != nil {
			return types.Config{}, err
		}
		seed, err := cast.ToUint64E(v)
		if err != nil {
			return types.Config{}, errors.Wrapf(types.ErrConfiguration, "%s: %s", OptSeed, err)
		}
		config = config.WithSeed(seed)
	}

	if err := config.Validate(); err != nil {
		return types.Config{}, err
	}
	return config, nil
}

func requiredPositiveInt(opts Options, key string) (int, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return 0, errors.Wrapf(types.ErrConfiguration, "missing required option %s", key)
	}
	if err := checkInteger(key, v); err != nil {
		return 0, err
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, errors.Wrapf(types.ErrConfiguration, "%s: %s", key, err)
	}
	if n < 1 {
		return 0, errors.Wrapf(types.ErrConfiguration, "%s must be a positive integer, got %d", key, n)
	}
	return n, nil
}

// cast happily turns true into 1 and 2.5 into 2, refuse both
func checkInteger(key string, v interface{}) error {
	switch x := v.(type) {
	case bool:
		return errors.Wrapf(types.ErrConfiguration, "%s must be an integer, got %v", key, x)
	case float64:
		if x != math.Trunc(x) {
			return errors.Wrapf(types.ErrConfiguration, "%s must be an integer, got %v", key, x)
		}
	case float32:
		if float64(x) != math.Trunc(float64(x)) {
			return errors.Wrapf(types.ErrConfiguration, "%s must be an integer, got %v", key, x)
		}
	}
	return nil
}
