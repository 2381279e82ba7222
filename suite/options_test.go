package suite

import (
	"os"
	"path"
	"testing"

	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

func TestParseOptions(t *testing.T) {
	cases := []struct {
		name    string
		opts    Options
		wantErr bool
		check   func(types.Config) bool
	}{
		{"minimal", Options{"max_action_space_size": 10, "eps_end_timestep": 5}, false, func(c types.Config) bool {
			return c.MaxActionSpaceSize == 10 && c.EpsEndTimestep == 5 && c.RenderMode == types.RenderANSI && c.Agent == types.DefaultAgent && c.Seed == nil
		}},
		{"json numbers", Options{"max_action_space_size": 10.0, "eps_end_timestep": float64(3)}, false, func(c types.Config) bool {
			return c.MaxActionSpaceSize == 10 && c.EpsEndTimestep == 3
		}},
		{"strings", Options{"max_action_space_size": "7", "eps_end_timestep": "2"}, false, func(c types.Config) bool {
			return c.MaxActionSpaceSize == 7 && c.EpsEndTimestep == 2
		}},
		{"extras", Options{"max_action_space_size": 1, "eps_end_timestep": 1, "render_mode": "human", "agent": "HR_2", "seed": 9}, false, func(c types.Config) bool {
			return c.RenderMode == types.RenderHuman && c.Agent == "HR_2" && c.Seed != nil && *c.Seed == 9
		}},
		{"missing max", Options{"eps_end_timestep": 5}, true, nil},
		{"missing end", Options{"max_action_space_size": 5}, true, nil},
		{"zero end", Options{"max_action_space_size": 5, "eps_end_timestep": 0}, true, nil},
		{"negative max", Options{"max_action_space_size": -1, "eps_end_timestep": 5}, true, nil},
		{"fractional", Options{"max_action_space_size": 2.5, "eps_end_timestep": 5}, true, nil},
		{"boolean", Options{"max_action_space_size": true, "eps_end_timestep": 5}, true, nil},
		{"garbage", Options{"max_action_space_size": "ten", "eps_end_timestep": 5}, true, nil},
		{"unknown key", Options{"max_action_space_size": 5, "eps_end_timestep": 5, "colour": "red"}, true, nil},
		{"bad render mode", Options{"max_action_space_size": 5, "eps_end_timestep": 5, "render_mode": "rgb_array"}, true, nil},
		{"empty agent", Options{"max_action_space_size": 5, "eps_end_timestep": 5, "agent": ""}, true, nil},
	}
	for _, c := range cases {
		config, err := ParseOptions(c.opts)
		if c.wantErr {
			if !errors.Is(err, types.ErrConfiguration) {
				t.Errorf("%s: expected a configuration error, got %v", c.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
			continue
		}
		if !c.check(config) {
			t.Errorf("%s: unexpected config %+v", c.name, config)
		}
	}
}

func TestLoadOptions(t *testing.T) {
	p := path.Join(t.TempDir(), "sim.yaml")
	content := "max_action_space_size: 100\neps_end_timestep: 25\nrender_mode: ansi\nseed: 4\n"
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	opts, err := LoadOptions(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	config, err := ParseOptions(opts.Merge(Options{"eps_end_timestep": 30}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if config.MaxActionSpaceSize != 100 || config.EpsEndTimestep != 30 || *config.Seed != 4 {
		t.Errorf("unexpected config %+v", config)
	}
	if opts["eps_end_timestep"] != 25 {
		t.Errorf("merge should not modify the receiver")
	}

	if _, err := LoadOptions(path.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("missing file should be a configuration error, got %v", err)
	}
	bad := path.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("max_action_space_size: [1, 2"), 0644)
	if _, err := LoadOptions(bad); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("bad yaml should be a configuration error, got %v", err)
	}
}
