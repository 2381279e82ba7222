package types

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

type Policy interface {
	UpdateIteration(int, *Trace)
	NextAction(int, Observation, []ActionID) (ActionID, bool)
	Update(int, Observation, ActionID, float64, Observation)
	Reset()
}

// ActionKey is the key of an action in tabular policies
func ActionKey(a ActionID) string {
	return strconv.Itoa(int(a))
}

// SoftMaxNegPolicy samples actions from a softmax over a Q table learned
// with a constant negative reward, pushing towards rarely taken actions
type SoftMaxNegPolicy struct {
	QTable map[string]map[string]float64
	alpha  float64
	gamma  float64
	rand   rand.Source
}

func NewSoftMaxNegPolicy(alpha, gamma float64) *SoftMaxNegPolicy {
	return &SoftMaxNegPolicy{
		QTable: make(map[string]map[string]float64),
		alpha:  alpha,
		gamma:  gamma,
		rand:   rand.NewSource(uint64(time.Now().UnixNano())),
	}
}

var _ Policy = &SoftMaxNegPolicy{}

func (s *SoftMaxNegPolicy) Reset() {
	s.QTable = make(map[string]map[string]float64)
}

func (s *SoftMaxNegPolicy) UpdateIteration(_ int, _ *Trace) {

}

func (s *SoftMaxNegPolicy) NextAction(step int, observation Observation, actions []ActionID) (ActionID, bool) {
	if len(actions) == 0 {
		return 0, false
	}
	stateHash := ObservationKey(observation)

	if _, ok := s.QTable[stateHash]; !ok {
		s.QTable[stateHash] = make(map[string]float64)
	}

	for _, a := range actions {
		aName := ActionKey(a)
		if _, ok := s.QTable[stateHash][aName]; !ok {
			s.QTable[stateHash][aName] = 0
		}
	}

	sum := float64(0)
	weights := make([]float64, len(actions))
	vals := make([]float64, len(actions))

	for i, action := range actions {
		val := s.QTable[stateHash][ActionKey(action)]
		exp := math.Exp(val)
		vals[i] = exp
		sum += exp
	}

	for i, v := range vals {
		weights[i] = v / sum
	}
	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return 0, false
	}
	return actions[i], true
}

func (s *SoftMaxNegPolicy) Update(step int, observation Observation, action ActionID, _ float64, nextObservation Observation) {
	stateHash := ObservationKey(observation)
	nextStateHash := ObservationKey(nextObservation)
	actionKey := ActionKey(action)
	if _, ok := s.QTable[stateHash]; !ok {
		return
	}
	if _, ok := s.QTable[stateHash][actionKey]; !ok {
		return
	}
	curVal := s.QTable[stateHash][actionKey]
	max := float64(0)
	if _, ok := s.QTable[nextStateHash]; ok {
		for _, val := range s.QTable[nextStateHash] {
			if val > max {
				max = val
			}
		}
	}
	nextVal := (1-s.alpha)*curVal + s.alpha*(-1+s.gamma*max)
	s.QTable[stateHash][actionKey] = nextVal
}

// RandomPolicy picks uniformly among the legal actions
type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

func NewRandomPolicy() *RandomPolicy {
	return NewSeededRandomPolicy(uint64(time.Now().UnixNano()))
}

func NewSeededRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomPolicy) Reset() {

}

func (r *RandomPolicy) UpdateIteration(_ int, _ *Trace) {

}

func (r *RandomPolicy) NextAction(step int, _ Observation, actions []ActionID) (ActionID, bool) {
	if len(actions) == 0 {
		return 0, false
	}
	i := r.rand.Intn(len(actions))
	return actions[i], true
}

func (r *RandomPolicy) Update(_ int, _ Observation, _ ActionID, _ float64, _ Observation) {}
