package benchmarks

import (
	"context"
	"os"
	"os/signal"

	"github.com/qwirky-yuzu/custom-sim-example/grid"
	"github.com/qwirky-yuzu/custom-sim-example/rlhr"
	"github.com/qwirky-yuzu/custom-sim-example/server"
	"github.com/qwirky-yuzu/custom-sim-example/suite"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"github.com/spf13/cobra"
)

func ServeCommand() *cobra.Command {
	var addr string
	var staff int
	var positions int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the simulators over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			factories := map[string]suite.Factory{
				"rlhr": rlhr.Factory(staff, positions),
				"grid": func(_ int, _ types.Config) (types.TransitionFunction, error) {
					return grid.NewGridEnvironment(10, 10, 2, gridDoors(10, 10, 2)...), nil
				},
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			s := server.New(addr, factories, server.WithLogger(logger))
			s.Start(ctx)
			logger.Info("serving simulators", "addr", addr)
			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().IntVar(&staff, "staff", 15, "Number of staff in the rlhr roster")
	cmd.Flags().IntVar(&positions, "positions", 5, "Number of rlhr open positions")
	return cmd
}
