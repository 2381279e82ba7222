package policies

import (
	"math"
	"time"

	"github.com/qwirky-yuzu/custom-sim-example/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// BonusPolicySoftMax samples from a softmax over the bonus values instead of acting greedily
type BonusPolicySoftMax struct {
	*BonusPolicyGreedy
	temperature float64
	rand        rand.Source
}

var _ types.Policy = &BonusPolicySoftMax{}

func NewBonusPolicySoftMax(alpha, discount, temperature float64) *BonusPolicySoftMax {
	seed := uint64(time.Now().UnixNano())
	return &BonusPolicySoftMax{
		BonusPolicyGreedy: NewSeededBonusPolicyGreedy(alpha, discount, 0, true, seed),
		temperature:       temperature,
		rand:              rand.NewSource(seed + 1),
	}
}

func (b *BonusPolicySoftMax) NextAction(step int, observation types.Observation, actions []types.ActionID) (types.ActionID, bool) {
	if len(actions) == 0 {
		return 0, false
	}
	stateKey := types.ObservationKey(observation)

	vals := make([]float64, len(actions))
	maxVal := math.Inf(-1)
	for i, action := range actions {
		vals[i] = b.qTable.Get(stateKey, types.ActionKey(action), 1) / b.temperature
		if vals[i] > maxVal {
			maxVal = vals[i]
		}
	}
	// shifted by the max to keep the exponentials finite
	sum := float64(0)
	for i, val := range vals {
		exp := math.Exp(val - maxVal)
		vals[i] = exp
		sum += exp
	}
	weights := make([]float64, len(actions))
	for i, v := range vals {
		weights[i] = v / sum
	}
	i, ok := sampleuv.NewWeighted(weights, b.rand).Take()
	if !ok {
		return 0, false
	}
	return actions[i], true
}
