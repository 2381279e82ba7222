package types

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/util"
)

// TraceRecorder stores the traces of the experiments
type TraceRecorder interface {
	Record(experiment string, run, episode int, trace *Trace) error
}

type experimentRunConfig struct {
	// execution configuration
	CurrentRun int
	Episodes   int
	Horizon    int
	Analyzers  []Analyzer
	Timeout    time.Duration
	Context    context.Context

	// thresholds to abort the experiment
	ConsecutiveTimeoutsAbort int
	ConsecutiveErrorsAbort   int

	Recorder     TraceRecorder
	RecordTimes  bool
	RecordPolicy bool

	// reports configuration
	ReportsPrintConfig *ReportsPrintConfig
	ReportSavePath     string

	Logger *log.Logger
	Output io.Writer // status line, nil disables it

	//misc
	LongestExpNameLen int
}

// ExperimentStats summarises a run of an experiment
type ExperimentStats struct {
	Episodes      int
	Valid         int
	TimedOut      int
	WithError     int
	Terminal      int // ended by the domain
	TimestepEnded int // ended by eps_end_timestep
	Timesteps     int
}

// Experiment runs one policy against one simulator
type Experiment struct {
	Name      string
	policy    Policy
	simulator Simulator
	stats     ExperimentStats
}

// NewExperiment creates a new experiment instance. The experiment owns the
// simulator, it is closed by Close
func NewExperiment(name string, policy Policy, simulator Simulator) *Experiment {
	return &Experiment{
		Name:      name,
		policy:    policy,
		simulator: simulator,
	}
}

// Stats of the last run
func (e *Experiment) Stats() ExperimentStats {
	return e.stats
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, episode int, trace *Trace) {
	if rConfig.Recorder == nil {
		return
	}
	if err := rConfig.Recorder.Record(e.Name, rConfig.CurrentRun, episode, trace); err != nil {
		rConfig.Logger.Warn("recording trace failed", "experiment", e.Name, "episode", episode, "err", err)
	}
}

func (e *Experiment) printStatus(rConfig *experimentRunConfig) {
	if rConfig.Output == nil {
		return
	}
	s := e.stats
	EPPadding := len(strconv.Itoa(rConfig.Episodes))
	fmt.Fprintf(rConfig.Output, "\rExp:%*s, Eps:%*d/%d, Valid:%*d, TOut:%*d, Err:%*d || Terminal:%*d, Timestep:%*d, TSteps:%d",
		rConfig.LongestExpNameLen, e.Name, EPPadding, s.Episodes, rConfig.Episodes, EPPadding, s.Valid, EPPadding, s.TimedOut,
		EPPadding, s.WithError, EPPadding, s.Terminal, EPPadding, s.TimestepEnded, s.Timesteps)
}

// Run the experiment for the configured number of episodes
func (e *Experiment) Run(rConfig *experimentRunConfig) {
	e.stats = ExperimentStats{}
	select {
	case <-rConfig.Context.Done():
		return
	default:
	}

	consecutiveTimeouts := 0
	consecutiveErrors := 0
	episodeTimes := make([]time.Duration, 0)

	agent := NewAgent(&AgentConfig{
		Episodes:  rConfig.Episodes,
		Horizon:   rConfig.Horizon,
		Policy:    e.policy,
		Simulator: e.simulator,
	})

	e.printStatus(rConfig)
	for episode := 0; episode < rConfig.Episodes; episode++ {
		select {
		case <-rConfig.Context.Done():
			return
		default:
		}

		eCtx := newEpisodeContext(rConfig.Context, episode, e.Name, rConfig.Timeout, rConfig.ReportsPrintConfig, rConfig.ReportSavePath)
		e.runEpisode(eCtx, agent)
		episodeTimes = append(episodeTimes, eCtx.RunDuration)

		startingTimesteps := e.stats.Timesteps
		e.stats.Episodes += 1
		e.stats.Timesteps += eCtx.Timesteps

		if eCtx.TimedOut {
			e.stats.TimedOut += 1
			consecutiveTimeouts += 1
		} else {
			consecutiveTimeouts = 0
		}

		if eCtx.Err != nil {
			e.stats.WithError += 1
			consecutiveErrors += 1
			rConfig.Logger.Debug("episode failed", "experiment", e.Name, "episode", episode, "err", eCtx.Err)
		} else {
			consecutiveErrors = 0
		}

		e.recordTrace(rConfig, episode, eCtx.Trace)

		// analyze the trace, even if the episode timed out or ended with an error
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, e.stats.Episodes, startingTimesteps, e.Name, eCtx.Trace)
		}

		if !eCtx.TimedOut && eCtx.Err == nil {
			e.stats.Valid += 1
			switch eCtx.End {
			case EndTerminal:
				e.stats.Terminal += 1
			case EndTimestep:
				e.stats.TimestepEnded += 1
			}
		}

		if len(episodeTimes) == 10 {
			if rConfig.RecordTimes {
				e.printEpTimesMs(episodeTimes, rConfig.ReportSavePath)
			}
			episodeTimes = make([]time.Duration, 0)
		}

		if rConfig.ConsecutiveTimeoutsAbort > 0 && consecutiveTimeouts >= rConfig.ConsecutiveTimeoutsAbort {
			rConfig.Logger.Error("aborting experiment", "experiment", e.Name, "consecutive_timeouts", consecutiveTimeouts)
			break
		}
		if rConfig.ConsecutiveErrorsAbort > 0 && consecutiveErrors >= rConfig.ConsecutiveErrorsAbort {
			rConfig.Logger.Error("aborting experiment", "experiment", e.Name, "consecutive_errors", consecutiveErrors, "err", eCtx.Err)
			break
		}
		e.printStatus(rConfig)
	}

	if rConfig.RecordPolicy {
		if recordable, ok := e.policy.(interface{ Record(string) }); ok {
			recordable.Record(path.Join(rConfig.ReportSavePath, "policies", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".json"))
		}
	}
	if rConfig.Output != nil {
		fmt.Fprintln(rConfig.Output, "")
	}
}

// runs the episode on its own goroutine so that a stuck simulator is
// abandoned once the episode context expires
func (e *Experiment) runEpisode(eCtx *EpisodeContext, agent *Agent) {
	defer eCtx.Cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				eCtx.SetError(errors.Errorf("panic: %v", r))
			}
		}()
		start := time.Now()
		agent.RunEpisode(eCtx)
		eCtx.RunDuration = time.Since(start)
		eCtx.Report.AddTimeEntry(eCtx.RunDuration, "return_time", "experiment.runEpisode")
	}()

	select {
	case <-eCtx.Context.Done():
		if deadline, ok := eCtx.Context.Deadline(); ok && !time.Now().Before(deadline) {
			eCtx.SetTimedOut()
		}
		<-done
	case <-done:
	}

	if eCtx.Err != nil || eCtx.TimedOut || eCtx.ToPrintReport || rand.Float32() < eCtx.reportPrintConfig.Sampling {
		eCtx.RecordReport()
	}
}

func (e *Experiment) printEpTimesMs(epTimes []time.Duration, basePath string) {
	tMilliseconds := ""
	for _, tm := range epTimes {
		tMilliseconds = fmt.Sprintf("%s%7d, ", tMilliseconds, tm.Milliseconds())
	}
	filePath := path.Join(basePath, "epTimes", e.Name+"_ms.txt")
	util.AppendToFile(filePath, tMilliseconds)
}

// Reset the policy between runs
func (e *Experiment) Reset() {
	e.policy.Reset()
}

// Close the simulator of the experiment
func (e *Experiment) Close() error {
	return e.simulator.Close()
}

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// run, episode, starting timestep, experiment, trace
	Analyze(int, int, int, string, *Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
// run, total episodes, experiment names, datasets
type Comparator func(int, int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(int, int, []string, []DataSet) {}
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int // number of runs
	Episodes int // number of episodes
	Horizon  int // maximum steps per episode, 0 until done

	RecordPath   string              // path to store the results
	ReportConfig *ReportsPrintConfig // configuration for the reports
	Timeout      time.Duration       // timeout for each episode

	// thresholds to abort the experiment
	ConsecutiveTimeoutsAbort int
	ConsecutiveErrorsAbort   int

	Recorder     TraceRecorder
	RecordTimes  bool
	RecordPolicy bool

	Logger *log.Logger
	Output io.Writer
}

// Comparison contains the different experiments to compare
// The traces obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance and prepares the record folders
func NewComparison(config *ComparisonConfig) (*Comparison, error) {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.ReportConfig == nil {
		config.ReportConfig = RepConfigOff()
	}
	if config.RecordPath != "" {
		for _, s := range []string{"epReports", "epTimes", "policies"} {
			if err := os.MkdirAll(path.Join(config.RecordPath, s), 0777); err != nil {
				return nil, errors.Wrap(err, "creating record folders")
			}
		}
	}
	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}, nil
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig
	if cfg.RecordPath == "" {
		return nil
	}
	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	out["record_traces"] = cfg.Recorder != nil
	out["record_times"] = cfg.RecordTimes
	out["record_policy"] = cfg.RecordPolicy
	out["report_config"] = cfg.ReportConfig
	if cfg.Timeout != 0 {
		out["timeout"] = cfg.Timeout.String()
	}
	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments
	analyzers := make([]string, 0)
	for name := range c.analyzers {
		analyzers = append(analyzers, name)
	}
	out["analyzers"] = analyzers

	bs, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(cfg.RecordPath, "comparison_config.json"), bs, 0644)
}

// Run the comparison
func (c *Comparison) Run(ctx context.Context) error {
	if err := c.recordConfig(); err != nil {
		return errors.Wrap(err, "recording comparison config")
	}

	longestNameLen := 0
	for _, e := range c.Experiments {
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	for run := 0; run < c.cConfig.Runs; run++ {
		c.cConfig.Logger.Info("starting run", "run", run+1, "of", c.cConfig.Runs)
		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			rCfg := c.prepareRunConfig(ctx, run, longestNameLen)
			e.Run(rCfg)
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
			e.Reset()
		}
		for name, comp := range c.comparators {
			comp(run, c.cConfig.Episodes, names, datasets[name])
		}
	}
	return nil
}

// Close every experiment simulator
func (c *Comparison) Close() error {
	var first error
	for _, e := range c.Experiments {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// prepare the run configuration for the experiment
func (c *Comparison) prepareRunConfig(ctx context.Context, run int, longestExpNameLen int) *experimentRunConfig {
	rCfg := &experimentRunConfig{
		CurrentRun:               run,
		Episodes:                 c.cConfig.Episodes,
		Horizon:                  c.cConfig.Horizon,
		Analyzers:                make([]Analyzer, 0),
		Recorder:                 c.cConfig.Recorder,
		RecordTimes:              c.cConfig.RecordTimes && c.cConfig.RecordPath != "",
		RecordPolicy:             c.cConfig.RecordPolicy && c.cConfig.RecordPath != "",
		ReportsPrintConfig:       c.cConfig.ReportConfig,
		ReportSavePath:           c.cConfig.RecordPath,
		Timeout:                  c.cConfig.Timeout,
		Context:                  ctx,
		ConsecutiveErrorsAbort:   c.cConfig.ConsecutiveErrorsAbort,
		ConsecutiveTimeoutsAbort: c.cConfig.ConsecutiveTimeoutsAbort,
		Logger:                   c.cConfig.Logger,
		Output:                   c.cConfig.Output,

		LongestExpNameLen: longestExpNameLen,
	}

	if rCfg.ConsecutiveErrorsAbort == 0 {
		rCfg.ConsecutiveErrorsAbort = 10
	}
	if rCfg.ConsecutiveTimeoutsAbort == 0 {
		rCfg.ConsecutiveTimeoutsAbort = 10
	}

	for _, a := range c.analyzers {
		rCfg.Analyzers = append(rCfg.Analyzers, a)
	}
	return rCfg
}
