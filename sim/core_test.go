package sim

import (
	"errors"
	"testing"

	"github.com/qwirky-yuzu/custom-sim-example/types"
)

// counter is a domain whose state is an integer increased by action+1
type counter struct {
	candidates int
	doneAt     int // domain done once the value reaches it, 0 never
	emptyAt    int // no legal actions once the value reaches it, 0 never
	closed     int
	seed       uint64
	applyErr   error
}

var _ types.TransitionFunction = &counter{}

func (c *counter) InitialState() (types.DomainState, error) {
	return 0, nil
}

func (c *counter) EnumerateActions(s types.DomainState) []types.ActionID {
	value := s.(int)
	if c.emptyAt > 0 && value >= c.emptyAt {
		return nil
	}
	actions := make([]types.ActionID, 0, c.candidates)
	// reversed on purpose, the shell must sort
	for i := c.candidates - 1; i >= 0; i-- {
		actions = append(actions, types.ActionID(i))
	}
	return actions
}

func (c *counter) Apply(s types.DomainState, a types.ActionID) (*types.Transition, error) {
	if c.applyErr != nil {
		return nil, c.applyErr
	}
	next := s.(int) + int(a) + 1
	return &types.Transition{
		Next:   next,
		Reward: 1,
		Done:   c.doneAt > 0 && next >= c.doneAt,
		Info:   types.Info{"value": next},
	}, nil
}

func (c *counter) Observe(s types.DomainState) types.Observation {
	return s.(int)
}

func (c *counter) Seed(seed uint64) {
	c.seed = seed
}

func (c *counter) Close() error {
	c.closed += 1
	return nil
}

func newSimulator(t *testing.T, domain *counter, maxActions, end int) *Simulator {
	t.Helper()
	s, err := New(domain, types.NewConfig(maxActions, end))
	if err != nil {
		t.Fatalf("creating simulator: %v", err)
	}
	return s
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := map[string]types.Config{
		"zero max actions":  types.NewConfig(0, 10),
		"zero end timestep": types.NewConfig(10, 0),
		"negative end":      types.NewConfig(10, -3),
		"bad render mode":   {MaxActionSpaceSize: 1, EpsEndTimestep: 1, RenderMode: "svg", Agent: "a"},
		"empty agent":       {MaxActionSpaceSize: 1, EpsEndTimestep: 1, RenderMode: types.RenderANSI},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(&counter{candidates: 1}, cfg)
			if !errors.Is(err, types.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
	if _, err := New(nil, types.NewConfig(1, 1)); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("expected configuration error for nil transition function, got %v", err)
	}
}

func TestNewSeedsDomain(t *testing.T) {
	domain := &counter{candidates: 1}
	if _, err := New(domain, types.NewConfig(1, 1).WithSeed(42)); err != nil {
		t.Fatal(err)
	}
	if domain.seed != 42 {
		t.Errorf("expected seed 42, got %d", domain.seed)
	}
}

func TestStepBeforeResetIsIllegal(t *testing.T) {
	s := newSimulator(t, &counter{candidates: 3}, 3, 5)
	if _, err := s.Step(0); !errors.Is(err, types.ErrIllegalState) {
		t.Fatalf("expected illegal state, got %v", err)
	}
	if s.Status() != StatusUninitialized {
		t.Errorf("status changed to %s", s.Status())
	}
}

func TestDoneExactlyAtEndTimestep(t *testing.T) {
	for end := 1; end <= 12; end++ {
		s := newSimulator(t, &counter{candidates: 2}, 2, end)
		if _, _, err := s.Reset(); err != nil {
			t.Fatal(err)
		}
		for i := 1; i <= end; i++ {
			res, err := s.Step(0)
			if err != nil {
				t.Fatalf("end %d step %d: %v", end, i, err)
			}
			if res.Done != (i == end) {
				t.Fatalf("end %d step %d: done = %v", end, i, res.Done)
			}
			if res.Done && !res.Truncated() {
				t.Errorf("end %d: expected timestep end type, got %s", end, res.End)
			}
		}
		if _, err := s.Step(0); !errors.Is(err, types.ErrIllegalState) {
			t.Errorf("end %d: step after done returned %v", end, err)
		}
	}
}

func TestTimestepIncrementsByOne(t *testing.T) {
	s := newSimulator(t, &counter{candidates: 4}, 4, 50)
	for episode := 0; episode < 3; episode++ {
		if _, _, err := s.Reset(); err != nil {
			t.Fatal(err)
		}
		if s.Timestep() != 0 {
			t.Fatalf("timestep after reset is %d", s.Timestep())
		}
		for i := 1; i <= 7; i++ {
			res, err := s.Step(types.ActionID(i % 4))
			if err != nil {
				t.Fatal(err)
			}
			if s.Timestep() != i || res.Info[types.InfoTimestep] != i {
				t.Fatalf("expected timestep %d, got %d (info %v)", i, s.Timestep(), res.Info[types.InfoTimestep])
			}
		}
	}
}

func TestInvalidActionChangesNothing(t *testing.T) {
	s := newSimulator(t, &counter{candidates: 3}, 3, 5)
	if _, _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Step(1); err != nil {
		t.Fatal(err)
	}
	before := s.episode.state
	beforeReturn := s.EpisodeReturn()

	for _, a := range []types.ActionID{-1, 3, 100} {
		if _, err := s.Step(a); !errors.Is(err, types.ErrInvalidAction) {
			t.Fatalf("action %d: expected invalid action, got %v", a, err)
		}
	}
	if s.Timestep() != 1 || s.episode.state != before || s.EpisodeReturn() != beforeReturn || s.Done() {
		t.Errorf("rejected actions mutated the simulator: timestep %d state %v", s.Timestep(), s.episode.state)
	}
	if _, err := s.Step(2); err != nil {
		t.Errorf("valid action after rejections failed: %v", err)
	}
}

func TestActionSpaceBoundedAndTruncated(t *testing.T) {
	s := newSimulator(t, &counter{candidates: 15}, 10, 10)
	_, set, err := s.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 10 || set.Truncated != 5 {
		t.Fatalf("expected 10 actions with 5 dropped, got %d actions %d dropped", set.Len(), set.Truncated)
	}
	for i, a := range set.Actions {
		if a != types.ActionID(i) {
			t.Fatalf("expected the lowest ids to be kept, got %v", set.Actions)
		}
	}
	if s.Actions().Contains(14) {
		t.Errorf("dropped action 14 is still legal")
	}
	if _, err := s.Step(14); !errors.Is(err, types.ErrInvalidAction) {
		t.Errorf("expected dropped action to be rejected, got %v", err)
	}

	res, err := s.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Actions.Len() != 10 || res.Info[types.InfoActionSpaceSize] != 10 {
		t.Errorf("expected 10 next actions, got %d", res.Actions.Len())
	}
	if res.Info[types.InfoActionsTruncated] != true || res.Info[types.InfoTruncatedActions] != 5 {
		t.Errorf("truncation missing from info: %v", res.Info)
	}
}

func TestTenByTenScenario(t *testing.T) {
	s := newSimulator(t, &counter{candidates: 10}, 10, 10)
	_, set, err := s.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if s.Timestep() != 0 || s.Done() || set.Len() > 10 {
		t.Fatalf("bad reset: timestep %d done %v actions %d", s.Timestep(), s.Done(), set.Len())
	}
	var last *types.StepResult
	for i := 0; i < 10; i++ {
		last, err = s.Step(types.ActionID(i))
		if err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
	}
	if !last.Done {
		t.Errorf("10th step is not done")
	}
	if last.Info[types.InfoEpisodeReturn] != 10.0 {
		t.Errorf("expected return 10, got %v", last.Info[types.InfoEpisodeReturn])
	}
	if _, err := s.Step(0); !errors.Is(err, types.ErrIllegalState) {
		t.Errorf("11th step: expected illegal state, got %v", err)
	}
}

func TestDomainDoneBeforeExpiry(t *testing.T) {
	s := newSimulator(t, &counter{candidates: 3, doneAt: 5}, 3, 100)
	if _, _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	res, err := s.Step(2) // 3
	if err != nil || res.Done {
		t.Fatalf("unexpected result %+v %v", res, err)
	}
	res, err = s.Step(2) // 6
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done || !res.Terminated() || res.Info[types.InfoEndType] != "terminal" {
		t.Errorf("expected terminal end, got %+v", res)
	}
	if res.Actions.Len() != 0 {
		t.Errorf("terminated episode exposes actions %v", res.Actions.Actions)
	}
	if s.Status() != StatusTerminated {
		t.Errorf("expected terminated status, got %s", s.Status())
	}
}

func TestResetDiscardsRunningEpisode(t *testing.T) {
	s := newSimulator(t, &counter{candidates: 2}, 2, 10)
	if _, _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if _, err := s.Step(1); err != nil {
			t.Fatal(err)
		}
	}
	obs, _, err := s.Reset()
	if err != nil {
		t.Fatalf("reset mid-episode: %v", err)
	}
	if obs != 0 || s.Timestep() != 0 || s.EpisodeReturn() != 0 || s.Status() != StatusReady {
		t.Errorf("episode not discarded: obs %v timestep %d", obs, s.Timestep())
	}
}

func TestEmptyActionSetIsContractViolation(t *testing.T) {
	s := newSimulator(t, &counter{candidates: 0}, 3, 10)
	if _, _, err := s.Reset(); !errors.Is(err, types.ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
	if s.Status() != StatusUninitialized {
		t.Errorf("failed reset changed status to %s", s.Status())
	}
}

func TestFailedStepKeepsEpisode(t *testing.T) {
	domain := &counter{candidates: 3, emptyAt: 3}
	s := newSimulator(t, domain, 3, 10)
	if _, _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	// value 0 -> 3 has no legal actions
	if _, err := s.Step(2); !errors.Is(err, types.ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
	if s.Timestep() != 0 || s.episode.state != 0 {
		t.Fatalf("failed step mutated the episode: timestep %d state %v", s.Timestep(), s.episode.state)
	}

	domain.applyErr = errors.New("boom")
	if _, err := s.Step(0); err == nil || errors.Is(err, types.ErrInvalidAction) {
		t.Fatalf("expected the domain error, got %v", err)
	}
	if s.Timestep() != 0 {
		t.Fatalf("domain error advanced the clock")
	}

	domain.applyErr = nil
	if _, err := s.Step(0); err != nil {
		t.Errorf("simulator unusable after failed steps: %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	domain := &counter{candidates: 2}
	s := newSimulator(t, domain, 2, 10)
	if _, _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Step(0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Close(); err != nil {
			t.Fatalf("close %d: %v", i+1, err)
		}
	}
	if domain.closed != 1 {
		t.Errorf("expected a single release, got %d", domain.closed)
	}
	if _, err := s.Step(0); !errors.Is(err, types.ErrIllegalState) {
		t.Errorf("step after close: %v", err)
	}
	if _, _, err := s.Reset(); !errors.Is(err, types.ErrIllegalState) {
		t.Errorf("reset after close: %v", err)
	}
}

func TestResetWithSeed(t *testing.T) {
	domain := &counter{candidates: 1}
	s := newSimulator(t, domain, 1, 1)
	if _, _, err := s.ResetWithSeed(7); err != nil {
		t.Fatal(err)
	}
	if domain.seed != 7 {
		t.Errorf("expected seed 7, got %d", domain.seed)
	}
}

func TestRenderSummary(t *testing.T) {
	s := newSimulator(t, &counter{candidates: 2}, 2, 3)
	if _, err := s.Render(types.RenderANSI); !errors.Is(err, types.ErrIllegalState) {
		t.Errorf("render before reset: %v", err)
	}
	if _, _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	out, err := s.Render(types.RenderANSI)
	if err != nil || out == "" {
		t.Errorf("render: %q %v", out, err)
	}
}
