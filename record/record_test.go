package record

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

func sampleTrace(steps int) *types.Trace {
	trace := types.NewTrace()
	for i := 0; i < steps; i++ {
		trace.Append(i, i, types.ActionID(i%2), &types.StepResult{Observation: i + 1, Reward: 0.5, Done: i == steps-1})
	}
	return trace
}

func TestFileRecorder(t *testing.T) {
	r := NewFileRecorder(t.TempDir())
	for ep := 0; ep < 3; ep++ {
		if err := r.Record("grid", 1, ep, sampleTrace(ep+1)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	f, err := os.Open(r.Path("grid", 1))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	entries := make([]Entry, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		e := Entry{}
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	last := entries[2]
	if last.Episode != 2 || len(last.Steps) != 3 || last.Return != 1.5 || !last.Steps[2].Done {
		t.Errorf("unexpected entry %+v", last)
	}
}

// Needs a reachable server, set REDIS_ADDR to run
func TestRedisRecorder(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	r := NewRedisRecorder(addr, "test-"+uuid.NewString())
	defer r.Close()
	ctx := context.Background()
	if err := r.Ping(ctx); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	defer r.Clear(ctx, "rlhr", 0)

	for ep := 0; ep < 2; ep++ {
		if err := r.Record("rlhr", 0, ep, sampleTrace(2)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	n, err := r.Len(ctx, "rlhr", 0)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 episodes, got %d (%v)", n, err)
	}
	entries, err := r.Episodes(ctx, "rlhr", 0)
	if err != nil || entries[1].Episode != 1 {
		t.Errorf("unexpected entries %+v (%v)", entries, err)
	}
}
