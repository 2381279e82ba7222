package benchmarks

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/record"
	"github.com/qwirky-yuzu/custom-sim-example/sim"
	"github.com/qwirky-yuzu/custom-sim-example/suite"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"github.com/spf13/cobra"
)

var (
	episodes int
	horizon  int
	saveFile string
	runs     int
	timeout  time.Duration
	parallel int

	maxActionSpaceSize int
	epsEndTimestep     int
	renderMode         string
	seed               uint64
	configFile         string

	logLevel  string
	recordTo  string
	redisAddr string

	cpuprofile string
	memprofile string

	logger = log.New(os.Stderr)
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "custom-sim",
		Short:         "Runs policies against the example simulators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}
	flags := rootCommand.PersistentFlags()
	flags.IntVarP(&episodes, "episodes", "e", 1000, "Number of episodes to run")
	flags.IntVar(&horizon, "horizon", 0, "Maximum steps of each episode, 0 runs until the simulator ends it")
	flags.StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	flags.IntVar(&runs, "runs", 1, "Number of experiment runs")
	flags.DurationVar(&timeout, "timeout", 0, "Timeout of each episode, 0 disables it")
	flags.IntVar(&parallel, "parallel", 0, "Run up to this many experiments concurrently, 0 runs them one after the other")

	flags.IntVar(&maxActionSpaceSize, "max-action-space-size", 10, "Maximum number of legal actions per step")
	flags.IntVar(&epsEndTimestep, "eps-end-timestep", 50, "Timestep at which every episode ends")
	flags.StringVar(&renderMode, "render-mode", string(types.RenderANSI), "Render mode, ansi or human")
	flags.Uint64Var(&seed, "seed", 0, "Seed of the simulators, unset keeps them random")
	flags.StringVarP(&configFile, "config", "c", "", "YAML file with the simulator options, flags override it")

	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error), defaults to $SIM_LOG_LEVEL")
	flags.StringVar(&recordTo, "record", "none", "Where to record the traces: none, file or redis")
	flags.StringVar(&redisAddr, "redis-addr", "127.0.0.1:6379", "Redis address, defaults to $REDIS_ADDR")

	flags.StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile to this file in the save folder")
	flags.StringVar(&memprofile, "memprofile", "", "Write a memory profile to this file in the save folder")

	// adding the subcommands here
	rootCommand.AddCommand(RLHRCommand())
	rootCommand.AddCommand(GridCommand())
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(RedisCommand())
	return rootCommand
}

// loads .env and the environment defaults, then configures the logger
func setup(cmd *cobra.Command) error {
	// a missing .env is fine
	_ = godotenv.Load()
	flags := cmd.Flags()
	if v := os.Getenv("SIM_LOG_LEVEL"); v != "" && !flags.Changed("log-level") {
		logLevel = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" && !flags.Changed("redis-addr") {
		redisAddr = v
	}
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return errors.Wrapf(types.ErrConfiguration, "log level %q", logLevel)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	return nil
}

// simulatorOptions builds the suite options: the config file first, then
// every flag given on the command line
func simulatorOptions(cmd *cobra.Command) (suite.Options, error) {
	opts := suite.Options{
		suite.OptMaxActionSpaceSize: maxActionSpaceSize,
		suite.OptEpsEndTimestep:     epsEndTimestep,
		suite.OptRenderMode:         renderMode,
	}
	if configFile != "" {
		fileOpts, err := suite.LoadOptions(configFile)
		if err != nil {
			return nil, err
		}
		flags := cmd.Flags()
		overrides := suite.Options{}
		if flags.Changed("max-action-space-size") {
			overrides[suite.OptMaxActionSpaceSize] = maxActionSpaceSize
		}
		if flags.Changed("eps-end-timestep") {
			overrides[suite.OptEpsEndTimestep] = epsEndTimestep
		}
		if flags.Changed("render-mode") {
			overrides[suite.OptRenderMode] = renderMode
		}
		opts = opts.Merge(fileOpts).Merge(overrides)
	}
	if cmd.Flags().Changed("seed") {
		opts[suite.OptSeed] = seed
	}
	if _, err := suite.ParseOptions(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// newAdapter builds an adapter logging through the command logger
func newAdapter(name string, fn types.TransitionFunction, opts suite.Options) (*suite.Adapter, error) {
	return suite.New(fn, opts, sim.WithLogger(logger.With("experiment", name)))
}

// newRecorder returns the trace recorder selected by --record and its closer
func newRecorder() (types.TraceRecorder, func(), error) {
	switch recordTo {
	case "", "none":
		return nil, func() {}, nil
	case "file":
		return record.NewFileRecorder(saveFile), func() {}, nil
	case "redis":
		r := record.NewRedisRecorder(redisAddr, "traces")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, nil, errors.Wrapf(err, "connecting to redis at %s", redisAddr)
		}
		return r, func() { r.Close() }, nil
	}
	return nil, nil, errors.Wrapf(types.ErrConfiguration, "unknown recorder %q", recordTo)
}

// comparisonConfig shared by the experiment commands
func comparisonConfig(recorder types.TraceRecorder) *types.ComparisonConfig {
	return &types.ComparisonConfig{
		Runs:         runs,
		Episodes:     episodes,
		Horizon:      horizon,
		RecordPath:   saveFile,
		Timeout:      timeout,
		Recorder:     recorder,
		RecordTimes:  false,
		RecordPolicy: true,
		ReportConfig: types.RepConfigStandard(),
		Logger:       logger,
		Output:       os.Stdout,
	}
}
