package benchmarks

import (
	"path"

	"github.com/qwirky-yuzu/custom-sim-example/grid"
	"github.com/qwirky-yuzu/custom-sim-example/policies"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"github.com/spf13/cobra"
)

func gridDoors(height, width, grids int) []grid.Door {
	doors := make([]grid.Door, 0)
	// a shortcut from the middle of every grid but the last
	for k := 0; k < grids-1; k++ {
		doors = append(doors, grid.Door{
			From: grid.Position{I: height / 2, J: width / 2, K: k},
			To:   grid.Position{I: 0, J: 0, K: k + 1},
		})
	}
	return doors
}

func GridCommand() *cobra.Command {
	var height int
	var width int
	var grids int

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Compares exploration policies on a stack of grids",
		RunE: func(cmd *cobra.Command, args []string) error {
			doors := gridDoors(height, width, grids)
			newGrid := func(_ int, _ types.Config) (types.TransitionFunction, error) {
				return grid.NewGridEnvironment(height, width, grids, doors...), nil
			}
			experiments := []experimentEntry{
				{"Random", types.NewRandomPolicy()},
				{"NegReward", types.NewSoftMaxNegPolicy(0.3, 0.7)},
				{"Exploration-Policy", policies.NewBonusPolicyGreedy(0.1, 0.99, 0.02, true)},
			}
			analyses := append(standardAnalyses(), analysisEntry{
				"visits", grid.NewGridAnalyzer, grid.HeatMapComparator(path.Join(saveFile, "heatmaps")),
			})
			return runExperiments(cmd, newGrid, experiments, analyses)
		},
	}
	cmd.Flags().IntVar(&height, "height", 20, "Height of each grid")
	cmd.Flags().IntVar(&width, "width", 20, "Width of each grid")
	cmd.Flags().IntVar(&grids, "grids", 3, "Number of grids")
	return cmd
}
