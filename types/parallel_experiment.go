package types

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"golang.org/x/sync/errgroup"
)

// AnalyzerFactory creates a fresh analyzer, parallel experiments cannot share one
type AnalyzerFactory func() Analyzer

// ParallelComparison runs the experiments of each run concurrently. Every
// experiment must own its simulator
type ParallelComparison struct {
	Experiments []*Experiment
	analyzers   map[string]AnalyzerFactory
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
	parallelism int
}

// NewParallelComparison runs at most parallelism experiments at a time, 0 runs them all at once
func NewParallelComparison(config *ComparisonConfig, parallelism int) (*ParallelComparison, error) {
	base, err := NewComparison(config)
	if err != nil {
		return nil, err
	}
	return &ParallelComparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]AnalyzerFactory),
		comparators: make(map[string]Comparator),
		cConfig:     base.cConfig,
		parallelism: parallelism,
	}, nil
}

func (c *ParallelComparison) AddAnalysis(name string, analyzer AnalyzerFactory, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

func (c *ParallelComparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run the comparison
func (c *ParallelComparison) Run(ctx context.Context) error {
	longestNameLen := 0
	for _, e := range c.Experiments {
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	for run := 0; run < c.cConfig.Runs; run++ {
		c.cConfig.Logger.Info("starting parallel run", "run", run+1, "of", c.cConfig.Runs, "experiments", len(c.Experiments))

		outputs := make([]*ParallelOutput, len(c.Experiments))
		for i := range outputs {
			outputs[i] = NewParallelOutput()
		}
		var printer *TerminalPrinter
		if c.cConfig.Output != nil && len(outputs) > 0 {
			printer = NewTerminalPrinter(ctx, c.cConfig.Output, outputs, time.Second)
			printer.Start()
		}

		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}
		names := make([]string, len(c.Experiments))

		g, gCtx := errgroup.WithContext(ctx)
		if c.parallelism > 0 {
			g.SetLimit(c.parallelism)
		}
		var lock sync.Mutex
		for i, e := range c.Experiments {
			i, e := i, e
			names[i] = e.Name
			g.Go(func() error {
				analyzers := make(map[string]Analyzer)
				rCfg := c.prepareRunConfig(gCtx, run, longestNameLen)
				for name, factory := range c.analyzers {
					a := factory()
					analyzers[name] = a
					rCfg.Analyzers = append(rCfg.Analyzers, a)
				}
				rCfg.Output = outputs[i]

				e.Run(rCfg)
				e.Reset()

				lock.Lock()
				for name, a := range analyzers {
					datasets[name][i] = a.DataSet()
				}
				lock.Unlock()
				return gCtx.Err()
			})
		}
		err := g.Wait()
		if printer != nil {
			printer.Stop()
		}
		if err != nil {
			return err
		}

		for name, comp := range c.comparators {
			comp(run, c.cConfig.Episodes, names, datasets[name])
		}
	}
	return nil
}

func (c *ParallelComparison) Close() error {
	var first error
	for _, e := range c.Experiments {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *ParallelComparison) prepareRunConfig(ctx context.Context, run int, longestExpNameLen int) *experimentRunConfig {
	base := &Comparison{analyzers: map[string]Analyzer{}, cConfig: c.cConfig}
	return base.prepareRunConfig(ctx, run, longestExpNameLen)
}

// TERMINAL PRINTER

// TerminalPrinter redraws the status line of every parallel experiment
type TerminalPrinter struct {
	parallelOutputs []*ParallelOutput
	ctx             context.Context
	cancel          context.CancelFunc
	frequency       time.Duration
	done            chan struct{}

	writer  *uilive.Writer
	writers []io.Writer
}

func NewTerminalPrinter(ctx context.Context, out io.Writer, parallelOutputs []*ParallelOutput, frequency time.Duration) *TerminalPrinter {
	printerCtx, cancel := context.WithCancel(ctx)
	size := len(parallelOutputs)
	writer := uilive.New()
	writer.Out = out
	writers := make([]io.Writer, size)
	writers[0] = writer
	for i := 1; i < size; i++ {
		writers[i] = writer.Newline()
	}

	return &TerminalPrinter{
		parallelOutputs: parallelOutputs,
		ctx:             printerCtx,
		cancel:          cancel,
		frequency:       frequency,
		done:            make(chan struct{}),

		writer:  writer,
		writers: writers,
	}
}

func (p *TerminalPrinter) Start() {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-p.ctx.Done():
				p.print()
				return
			case <-time.After(p.frequency):
				p.print()
			}
		}
	}()
}

// Stop prints a last time and waits for the printer to exit
func (p *TerminalPrinter) Stop() {
	p.cancel()
	<-p.done
}

func (p *TerminalPrinter) print() {
	for i, output := range p.parallelOutputs {
		fmt.Fprint(p.writers[i], output.Get()+"\n")
	}
	p.writer.Flush()
}

// PARALLEL OUTPUT

// ParallelOutput keeps the last status line written by an experiment
type ParallelOutput struct {
	mu        sync.Mutex
	printable string
}

var _ io.Writer = &ParallelOutput{}

func NewParallelOutput() *ParallelOutput {
	return &ParallelOutput{
		printable: "Pending",
	}
}

// Write keeps the last non empty line of p
func (p *ParallelOutput) Write(b []byte) (int, error) {
	lines := strings.FieldsFunc(string(b), func(r rune) bool { return r == '\r' || r == '\n' })
	if len(lines) > 0 {
		p.Set(lines[len(lines)-1])
	}
	return len(b), nil
}

// Set the output string (blocking)
func (p *ParallelOutput) Set(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printable = s
}

// Get the output string (blocking)
func (p *ParallelOutput) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printable
}
