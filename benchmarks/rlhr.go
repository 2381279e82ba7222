package benchmarks

import (
	"time"

	"github.com/qwirky-yuzu/custom-sim-example/policies"
	"github.com/qwirky-yuzu/custom-sim-example/rlhr"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"github.com/spf13/cobra"
)

func RLHRCommand() *cobra.Command {
	var staff int
	var positions int

	cmd := &cobra.Command{
		Use:   "rlhr",
		Short: "Compares policies moving staff into open positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			experiments := []experimentEntry{
				{"Random", types.NewRandomPolicy()},
				{"QLearning", policies.NewQLearningPolicy(0.1, 0.95, 0.1)},
				{"Exploration-Greedy", policies.NewBonusPolicyGreedy(0.1, 0.99, 0.02, true)},
				{"Exploration-SoftMax", policies.NewBonusPolicySoftMax(0.1, 0.99, 0.5)},
			}
			// every experiment sees the same roster unless --seed is given
			rosterSeed := uint64(time.Now().UnixNano())
			newEnv := func(i int, config types.Config) (types.TransitionFunction, error) {
				if config.Seed == nil {
					config = config.WithSeed(rosterSeed)
				}
				return rlhr.Factory(staff, positions)(i, config)
			}
			return runExperiments(cmd, newEnv, experiments, standardAnalyses())
		},
	}
	cmd.Flags().IntVar(&staff, "staff", 15, "Number of staff in the roster")
	cmd.Flags().IntVar(&positions, "positions", 5, "Number of open positions")
	return cmd
}
