package types

import (
	"os"
	"path"
	"strconv"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// EpisodeValues is the dataset of analyzers producing one value per episode
type EpisodeValues []float64

// perEpisodeAnalyzer collects one value per analyzed episode
type perEpisodeAnalyzer struct {
	values EpisodeValues
	value  func(*Trace) float64
}

var _ Analyzer = &perEpisodeAnalyzer{}

func (p *perEpisodeAnalyzer) Analyze(_ int, _ int, _ int, _ string, t *Trace) {
	p.values = append(p.values, p.value(t))
}

func (p *perEpisodeAnalyzer) DataSet() DataSet {
	out := make(EpisodeValues, len(p.values))
	copy(out, p.values)
	return out
}

func (p *perEpisodeAnalyzer) Reset() {
	p.values = make(EpisodeValues, 0)
}

// RewardAnalyzer records the return of every episode
func RewardAnalyzer() Analyzer {
	return &perEpisodeAnalyzer{
		values: make(EpisodeValues, 0),
		value:  func(t *Trace) float64 { return t.Return() },
	}
}

// LengthAnalyzer records the number of accepted steps of every episode
func LengthAnalyzer() Analyzer {
	return &perEpisodeAnalyzer{
		values: make(EpisodeValues, 0),
		value:  func(t *Trace) float64 { return float64(t.Len()) },
	}
}

// TruncationAnalyzer records the largest number of actions dropped in a
// single step of every episode
func TruncationAnalyzer() Analyzer {
	return &perEpisodeAnalyzer{
		values: make(EpisodeValues, 0),
		value: func(t *Trace) float64 {
			max := 0
			for _, s := range t.Steps {
				if s.Truncated > max {
					max = s.Truncated
				}
			}
			return float64(max)
		},
	}
}

// CoverageAnalyzer counts the distinct observations seen so far, after each episode
type CoverageAnalyzer struct {
	seen   map[string]bool
	counts EpisodeValues
}

var _ Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{
		seen:   make(map[string]bool),
		counts: make(EpisodeValues, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_ int, _ int, _ int, _ string, t *Trace) {
	for _, s := range t.Steps {
		c.seen[ObservationKey(s.Observation)] = true
		c.seen[ObservationKey(s.NextObservation)] = true
	}
	c.counts = append(c.counts, float64(len(c.seen)))
}

func (c *CoverageAnalyzer) DataSet() DataSet {
	out := make(EpisodeValues, len(c.counts))
	copy(out, c.counts)
	return out
}

func (c *CoverageAnalyzer) Reset() {
	c.seen = make(map[string]bool)
	c.counts = make(EpisodeValues, 0)
}

// LinePlotter plots the per episode values of every experiment as a line
func LinePlotter(plotPath, name, yLabel string) Comparator {
	return func(run int, _ int, names []string, ds []DataSet) {
		if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
			return
		}
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = yLabel
		for i := 0; i < len(names); i++ {
			values, ok := ds[i].(EpisodeValues)
			if !ok {
				continue
			}
			points := make(plotter.XYs, len(values))
			for j, v := range values {
				points[j] = plotter.XY{
					X: float64(j),
					Y: v,
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_"+name+".png"))
	}
}

// RewardPlotter plots the episode returns
func RewardPlotter(plotPath string) Comparator {
	return LinePlotter(plotPath, "reward", "Episode return")
}

// LengthPlotter plots the episode lengths
func LengthPlotter(plotPath string) Comparator {
	return LinePlotter(plotPath, "length", "Episode length")
}

// CoveragePlotter plots the distinct observations
func CoveragePlotter(plotPath string) Comparator {
	return LinePlotter(plotPath, "coverage", "Observations covered")
}

// Summary of per episode values
type Summary struct {
	Episodes int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
}

// Summarize the values, the zero summary for no values
func Summarize(values EpisodeValues) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{
		Episodes: len(values),
		Min:      values[0],
		Max:      values[0],
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		s.StdDev = 0
	}
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

// SummaryComparator logs the summary of every experiment
func SummaryComparator(logger *log.Logger, name string) Comparator {
	return func(run int, _ int, names []string, ds []DataSet) {
		for i := 0; i < len(names); i++ {
			values, ok := ds[i].(EpisodeValues)
			if !ok {
				continue
			}
			s := Summarize(values)
			logger.Info(name, "run", run, "experiment", names[i], "episodes", s.Episodes,
				"mean", s.Mean, "std", s.StdDev, "min", s.Min, "max", s.Max)
		}
	}
}

// CombineComparators runs every comparator on the same datasets
func CombineComparators(comparators ...Comparator) Comparator {
	return func(run int, episodes int, names []string, ds []DataSet) {
		for _, c := range comparators {
			c(run, episodes, names, ds)
		}
	}
}
