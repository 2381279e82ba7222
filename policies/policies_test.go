package policies

import (
	"encoding/json"
	"os"
	"path"
	"testing"

	"github.com/qwirky-yuzu/custom-sim-example/types"
)

func TestQTableSetOverwrites(t *testing.T) {
	q := NewQTable()
	if v := q.Get("s", "a", 3); v != 3 {
		t.Fatalf("expected default 3, got %f", v)
	}
	q.Set("s", "a", 5)
	q.Set("s", "a", 7)
	if v := q.Get("s", "a", 0); v != 7 {
		t.Errorf("expected 7, got %f", v)
	}
	if _, v := q.Max("unknown", -1); v != -1 {
		t.Errorf("unknown state should give the default")
	}
	if q.HasState("unknown") {
		t.Errorf("max should not create states")
	}
}

func TestQTableMaxAmongTies(t *testing.T) {
	q := NewQTable()
	a, v := q.MaxAmong("s", []string{"2", "1", "3"}, 1)
	if a != "2" || v != 1 {
		t.Errorf("ties should go to the first action, got %s %f", a, v)
	}
	q.Set("s", "3", 4)
	if a, _ := q.MaxAmong("s", []string{"2", "1", "3"}, 1); a != "3" {
		t.Errorf("expected 3, got %s", a)
	}
	if a, _ := q.Max("s", 0); a != "3" {
		t.Errorf("expected 3, got %s", a)
	}
}

func TestQTableRecord(t *testing.T) {
	q := NewQTable()
	q.Set("s", "0", 0.5)
	p := path.Join(t.TempDir(), "q.json")
	if err := q.Record(p); err != nil {
		t.Fatalf("record: %v", err)
	}
	bs, _ := os.ReadFile(p)
	out := make(map[string]map[string]float64)
	if err := json.Unmarshal(bs, &out); err != nil || out["s"]["0"] != 0.5 {
		t.Errorf("unexpected record %s", string(bs))
	}
}

func TestBonusPolicyPrefersUnvisited(t *testing.T) {
	b := NewSeededBonusPolicyGreedy(0.5, 0.9, 0, true, 1)
	trace := types.NewTrace()
	trace.Append(0, "s", 0, &types.StepResult{Observation: "t"})
	for i := 0; i < 5; i++ {
		b.UpdateIteration(i, trace)
	}
	a, ok := b.NextAction(0, "s", []types.ActionID{0, 1})
	if !ok || a != 1 {
		t.Errorf("expected the unvisited action 1, got %d", a)
	}
	if _, ok := b.NextAction(0, "s", nil); ok {
		t.Errorf("no actions should give no choice")
	}
	b.Reset()
	if b.qTable.HasState("s") {
		t.Errorf("reset should clear the table")
	}
}

func TestBonusSoftMaxPicksLegal(t *testing.T) {
	b := NewBonusPolicySoftMax(0.3, 0.9, 0.01)
	legal := []types.ActionID{4, 9}
	for i := 0; i < 20; i++ {
		a, ok := b.NextAction(i, "s", legal)
		if !ok || (a != 4 && a != 9) {
			t.Fatalf("illegal choice %d", a)
		}
	}
}

func TestQLearningLearnsReward(t *testing.T) {
	q := NewSeededQLearningPolicy(0.5, 0.9, 0, 3)
	for i := 0; i < 10; i++ {
		q.Update(i, "s", 1, 1, "end")
		q.Update(i, "s", 0, 0, "end")
	}
	if q.Value("s", 1) <= q.Value("s", 0) {
		t.Fatalf("rewarded action should be worth more")
	}
	a, ok := q.NextAction(0, "s", []types.ActionID{0, 1})
	if !ok || a != 1 {
		t.Errorf("expected greedy action 1, got %d", a)
	}
}
