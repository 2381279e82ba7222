package sim

import (
	"errors"
	"testing"

	"github.com/qwirky-yuzu/custom-sim-example/types"
)

func TestClockTicksUntilExpired(t *testing.T) {
	c := NewEpisodeClock(3)
	for want := 1; want <= 3; want++ {
		got, err := c.Tick()
		if err != nil {
			t.Fatalf("tick %d: %v", want, err)
		}
		if got != want {
			t.Fatalf("expected timestep %d, got %d", want, got)
		}
	}
	if !c.IsExpired(c.Timestep()) {
		t.Errorf("clock should be expired at %d", c.Timestep())
	}
	if _, err := c.Tick(); !errors.Is(err, types.ErrClockOverflow) {
		t.Errorf("expected clock overflow, got %v", err)
	}
	if c.Timestep() != 3 {
		t.Errorf("overflowing tick moved the clock to %d", c.Timestep())
	}
	c.Reset()
	if c.Timestep() != 0 || c.IsExpired(0) {
		t.Errorf("reset clock at %d", c.Timestep())
	}
}

func TestActionSpaceCommit(t *testing.T) {
	space := NewActionSpace(&counter{candidates: 4}, 3)
	set, err := space.CurrentActions(0)
	if err != nil {
		t.Fatal(err)
	}
	if space.Contains(0) {
		t.Errorf("uncommitted snapshot is used for membership")
	}
	space.Commit(set)
	if !space.Contains(2) || space.Contains(3) {
		t.Errorf("unexpected membership for %v", space.Snapshot().Actions)
	}
	space.Clear()
	if space.Contains(0) {
		t.Errorf("cleared snapshot still has actions")
	}
}
