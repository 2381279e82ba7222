package suite

import (
	"sync"

	"github.com/qwirky-yuzu/custom-sim-example/types"
)

// Synchronized serialises every call to an adapter so it can be shared
// between goroutines
type Synchronized struct {
	lock    *sync.Mutex
	adapter *Adapter
}

var _ types.Simulator = &Synchronized{}

// NewSynchronized guards the adapter with a mutex
func NewSynchronized(adapter *Adapter) *Synchronized {
	return &Synchronized{
		lock:    new(sync.Mutex),
		adapter: adapter,
	}
}

func (s *Synchronized) Reset() (types.Observation, types.ActionSet, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.adapter.Reset()
}

func (s *Synchronized) ResetWithSeed(seed uint64) (types.Observation, types.ActionSet, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.adapter.ResetWithSeed(seed)
}

func (s *Synchronized) Step(action types.ActionID) (*types.StepResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.adapter.Step(action)
}

func (s *Synchronized) Render() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.adapter.Render()
}

func (s *Synchronized) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.adapter.Close()
}

// Config is immutable and needs no locking
func (s *Synchronized) Config() types.Config {
	return s.adapter.Config()
}
