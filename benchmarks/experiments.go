package benchmarks

import (
	"context"
	"os"
	"os/signal"
	"path"

	"github.com/qwirky-yuzu/custom-sim-example/suite"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"github.com/qwirky-yuzu/custom-sim-example/util"
	"github.com/spf13/cobra"
)

type experimentEntry struct {
	name   string
	policy types.Policy
}

type analysisEntry struct {
	name       string
	analyzer   types.AnalyzerFactory
	comparator types.Comparator
}

// standardAnalyses shared by every experiment command
func standardAnalyses() []analysisEntry {
	plots := path.Join(saveFile, "plots")
	return []analysisEntry{
		{"reward", types.RewardAnalyzer, types.CombineComparators(types.RewardPlotter(plots), types.SummaryComparator(logger, "reward"))},
		{"length", types.LengthAnalyzer, types.CombineComparators(types.LengthPlotter(plots), types.SummaryComparator(logger, "length"))},
		{"truncation", types.TruncationAnalyzer, types.SummaryComparator(logger, "truncated actions")},
		{"coverage", func() types.Analyzer { return types.NewCoverageAnalyzer() }, types.CoveragePlotter(plots)},
	}
}

// runExperiments builds one simulator per experiment with newFn and runs the comparison
func runExperiments(cmd *cobra.Command, newFn suite.Factory, experiments []experimentEntry, analyses []analysisEntry) error {
	opts, err := simulatorOptions(cmd)
	if err != nil {
		return err
	}
	config, err := suite.ParseOptions(opts)
	if err != nil {
		return err
	}
	if err := util.RemoveContents(saveFile); err != nil {
		return err
	}
	recorder, closeRecorder, err := newRecorder()
	if err != nil {
		return err
	}
	defer closeRecorder()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	stopProfiling := startProfiling()
	defer stopProfiling()

	built := make([]*types.Experiment, 0, len(experiments))
	for i, e := range experiments {
		fn, err := newFn(i, config)
		if err != nil {
			return err
		}
		adapter, err := newAdapter(e.name, fn, opts)
		if err != nil {
			return err
		}
		built = append(built, types.NewExperiment(e.name, e.policy, adapter))
	}
	logger.Info("running experiments", "experiments", len(built), "episodes", episodes, "runs", runs,
		"max_action_space_size", config.MaxActionSpaceSize, "eps_end_timestep", config.EpsEndTimestep)

	if parallel > 0 {
		c, err := types.NewParallelComparison(comparisonConfig(recorder), parallel)
		if err != nil {
			return err
		}
		defer c.Close()
		for _, e := range built {
			c.AddExperiment(e)
		}
		for _, a := range analyses {
			c.AddAnalysis(a.name, a.analyzer, a.comparator)
		}
		return c.Run(ctx)
	}

	c, err := types.NewComparison(comparisonConfig(recorder))
	if err != nil {
		return err
	}
	defer c.Close()
	for _, e := range built {
		c.AddExperiment(e)
	}
	for _, a := range analyses {
		c.AddAnalysis(a.name, a.analyzer(), a.comparator)
	}
	return c.Run(ctx)
}
