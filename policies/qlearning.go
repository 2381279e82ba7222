package policies

import (
	"time"

	"github.com/qwirky-yuzu/custom-sim-example/types"
	"golang.org/x/exp/rand"
)

// QLearningPolicy is epsilon greedy tabular Q learning on the simulator reward
type QLearningPolicy struct {
	qTable  *QTable
	alpha   float64
	gamma   float64
	epsilon float64
	rand    *rand.Rand
}

var _ types.Policy = &QLearningPolicy{}

func NewQLearningPolicy(alpha, gamma, epsilon float64) *QLearningPolicy {
	return NewSeededQLearningPolicy(alpha, gamma, epsilon, uint64(time.Now().UnixNano()))
}

func NewSeededQLearningPolicy(alpha, gamma, epsilon float64, seed uint64) *QLearningPolicy {
	return &QLearningPolicy{
		qTable:  NewQTable(),
		alpha:   alpha,
		gamma:   gamma,
		epsilon: epsilon,
		rand:    rand.New(rand.NewSource(seed)),
	}
}

func (q *QLearningPolicy) Record(path string) {
	q.qTable.Record(path)
}

func (q *QLearningPolicy) Reset() {
	q.qTable = NewQTable()
}

// Value learned for the pair, 0 when unseen
func (q *QLearningPolicy) Value(observation types.Observation, action types.ActionID) float64 {
	return q.qTable.Get(types.ObservationKey(observation), types.ActionKey(action), 0)
}

func (q *QLearningPolicy) NextAction(_ int, observation types.Observation, actions []types.ActionID) (types.ActionID, bool) {
	if len(actions) == 0 {
		return 0, false
	}
	if q.rand.Float64() < q.epsilon {
		return actions[q.rand.Intn(len(actions))], true
	}
	keys := make([]string, len(actions))
	for i, a := range actions {
		keys[i] = types.ActionKey(a)
	}
	best, _ := q.qTable.MaxAmong(types.ObservationKey(observation), keys, 0)
	for i, k := range keys {
		if k == best {
			return actions[i], true
		}
	}
	return 0, false
}

func (q *QLearningPolicy) Update(_ int, observation types.Observation, action types.ActionID, reward float64, nextObservation types.Observation) {
	stateKey := types.ObservationKey(observation)
	actionKey := types.ActionKey(action)
	_, nextVal := q.qTable.Max(types.ObservationKey(nextObservation), 0)
	curVal := q.qTable.Get(stateKey, actionKey, 0)
	q.qTable.Set(stateKey, actionKey, (1-q.alpha)*curVal+q.alpha*(reward+q.gamma*nextVal))
}

func (q *QLearningPolicy) UpdateIteration(_ int, _ *types.Trace) {}
