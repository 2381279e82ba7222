package policies

import (
	"time"

	"github.com/qwirky-yuzu/custom-sim-example/types"
	"golang.org/x/exp/rand"
)

// BonusPolicyGreedy explores by rewarding rarely visited state action pairs
// with a 1/visits bonus, ignoring the simulator reward
type BonusPolicyGreedy struct {
	qTable   *QTable
	alpha    float64
	discount float64
	visits   *QTable
	epsilon  float64
	rand     *rand.Rand

	max bool
}

var _ types.Policy = &BonusPolicyGreedy{}

func NewBonusPolicyGreedy(alpha, discount, epsilon float64, max bool) *BonusPolicyGreedy {
	return NewSeededBonusPolicyGreedy(alpha, discount, epsilon, max, uint64(time.Now().UnixNano()))
}

func NewSeededBonusPolicyGreedy(alpha, discount, epsilon float64, max bool, seed uint64) *BonusPolicyGreedy {
	return &BonusPolicyGreedy{
		qTable:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		visits:   NewQTable(),
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(seed)),
		max:      max,
	}
}

func (b *BonusPolicyGreedy) Record(path string) {
	b.qTable.Record(path)
}

func (b *BonusPolicyGreedy) Reset() {
	b.qTable = NewQTable()
	b.visits = NewQTable()
}

func (b *BonusPolicyGreedy) NextAction(step int, observation types.Observation, actions []types.ActionID) (types.ActionID, bool) {
	if len(actions) == 0 {
		return 0, false
	}
	if b.rand.Float64() < b.epsilon {
		i := b.rand.Intn(len(actions))
		return actions[i], true
	}

	availableActions := make([]string, len(actions))
	for i, a := range actions {
		availableActions[i] = types.ActionKey(a)
	}
	maxAction, _ := b.qTable.MaxAmong(types.ObservationKey(observation), availableActions, 1)
	for i, key := range availableActions {
		if key == maxAction {
			return actions[i], true
		}
	}
	return 0, false
}

// Update is a no-op, values are learned backwards at the end of the episode
func (b *BonusPolicyGreedy) Update(_ int, _ types.Observation, _ types.ActionID, _ float64, _ types.Observation) {
}

func (b *BonusPolicyGreedy) updateInternal(observation types.Observation, action types.ActionID, nextObservation types.Observation, last bool) {
	stateKey := types.ObservationKey(observation)
	actionKey := types.ActionKey(action)
	t := b.visits.Get(stateKey, actionKey, 0) + 1
	b.visits.Set(stateKey, actionKey, t)

	nextStateVal := 0.0
	// the value of the state after the last step is never learned
	if !last {
		_, nextStateVal = b.qTable.Max(types.ObservationKey(nextObservation), 1)
	}
	curVal := b.qTable.Get(stateKey, actionKey, 1)

	newVal := 0.0
	if b.max {
		newVal = (1-b.alpha)*curVal + b.alpha*max(1/t, b.discount*nextStateVal)
	} else {
		newVal = (1-b.alpha)*curVal + b.alpha*(1/t+b.discount*nextStateVal)
	}
	b.qTable.Set(stateKey, actionKey, newVal)
}

func (b *BonusPolicyGreedy) UpdateIteration(_ int, trace *types.Trace) {
	lastIndex := trace.Len() - 1
	for i := lastIndex; i > -1; i-- {
		s, ok := trace.Get(i)
		if ok {
			b.updateInternal(s.Observation, s.Action, s.NextObservation, i == lastIndex)
		}
	}
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
