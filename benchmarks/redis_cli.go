package benchmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/qwirky-yuzu/custom-sim-example/record"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"github.com/spf13/cobra"
)

// RedisCommand summarises the traces recorded in redis with --record redis
func RedisCommand() *cobra.Command {
	var experiment string
	var run int
	var clear bool

	cmd := &cobra.Command{
		Use:   "redis-cli",
		Short: "Summarises the traces recorded in redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := record.NewRedisRecorder(redisAddr, "traces")
			defer r.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := r.Ping(ctx); err != nil {
				return err
			}
			entries, err := r.Episodes(ctx, experiment, run)
			if err != nil {
				return err
			}
			returns := make(types.EpisodeValues, len(entries))
			for i, e := range entries {
				returns[i] = e.Return
			}
			s := types.Summarize(returns)
			fmt.Printf("%s run %d: %d episodes, mean return %.3f (std %.3f, min %.3f, max %.3f)\n",
				experiment, run, s.Episodes, s.Mean, s.StdDev, s.Min, s.Max)
			if clear {
				return r.Clear(ctx, experiment, run)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&experiment, "experiment", "Random", "Experiment name")
	cmd.Flags().IntVar(&run, "run", 0, "Run index")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete the traces after the summary")
	return cmd
}
