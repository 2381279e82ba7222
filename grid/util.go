package grid

import (
	"encoding/json"
	"os"
	"path"
	"strconv"

	"github.com/qwirky-yuzu/custom-sim-example/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// GridDataSet counts the visits of every (i, j) cell, all grids merged
type GridDataSet struct {
	Visits map[int]map[int]int
	Height int
	Width  int
}

var _ plotter.GridXYZ = &GridDataSet{}

func NewGridDataSet() *GridDataSet {
	return &GridDataSet{
		Visits: make(map[int]map[int]int),
	}
}

func (g *GridDataSet) Dims() (int, int) {
	return g.Width, g.Height
}

func (g *GridDataSet) Z(j, i int) float64 {
	return float64(g.Visits[i][j])
}

func (g *GridDataSet) X(j int) float64 {
	return float64(j)
}

func (g *GridDataSet) Y(i int) float64 {
	return float64(i)
}

func (g *GridDataSet) Min() float64 {
	return 0.0
}

func (g *GridDataSet) Max() float64 {
	max := 0
	for _, vals := range g.Visits {
		for _, count := range vals {
			if count > max {
				max = count
			}
		}
	}
	return float64(max)
}

func (g *GridDataSet) visit(p Position) {
	if _, ok := g.Visits[p.I]; !ok {
		g.Visits[p.I] = make(map[int]int)
	}
	g.Visits[p.I][p.J] += 1
	if p.I+1 > g.Height {
		g.Height = p.I + 1
	}
	if p.J+1 > g.Width {
		g.Width = p.J + 1
	}
}

func (g *GridDataSet) copy() *GridDataSet {
	out := NewGridDataSet()
	out.Height = g.Height
	out.Width = g.Width
	for i, vals := range g.Visits {
		out.Visits[i] = make(map[int]int, len(vals))
		for j, v := range vals {
			out.Visits[i][j] = v
		}
	}
	return out
}

func MergeGridDatasets(dataSets []types.DataSet) types.DataSet {
	merged := NewGridDataSet()
	for _, d := range dataSets {
		dGrid, ok := d.(*GridDataSet)
		if !ok {
			continue
		}
		if dGrid.Height > merged.Height {
			merged.Height = dGrid.Height
		}
		if dGrid.Width > merged.Width {
			merged.Width = dGrid.Width
		}
		for i, vals := range dGrid.Visits {
			if _, ok := merged.Visits[i]; !ok {
				merged.Visits[i] = make(map[int]int)
			}
			for j, visits := range vals {
				merged.Visits[i][j] += visits
			}
		}
	}
	return merged
}

// GridAnalyzer accumulates the visited positions of every episode
type GridAnalyzer struct {
	dataSet *GridDataSet
}

var _ types.Analyzer = &GridAnalyzer{}

func NewGridAnalyzer() types.Analyzer {
	return &GridAnalyzer{dataSet: NewGridDataSet()}
}

func (g *GridAnalyzer) Analyze(_ int, _ int, _ int, _ string, trace *types.Trace) {
	for _, s := range trace.Steps {
		if p, ok := s.Observation.(Position); ok {
			g.dataSet.visit(p)
		}
	}
}

func (g *GridAnalyzer) DataSet() types.DataSet {
	return g.dataSet.copy()
}

func (g *GridAnalyzer) Reset() {
	g.dataSet = NewGridDataSet()
}

// HeatMapComparator saves the visits of every experiment as JSON and as a heat map
func HeatMapComparator(figPath string) types.Comparator {
	return func(run int, _ int, names []string, ds []types.DataSet) {
		if err := os.MkdirAll(figPath, os.ModePerm); err != nil {
			return
		}
		for i := 0; i < len(names); i++ {
			dataSet, ok := ds[i].(*GridDataSet)
			if !ok || dataSet.Width == 0 || dataSet.Height == 0 {
				continue
			}
			prefix := path.Join(figPath, strconv.Itoa(run)+"_"+names[i])

			bs, _ := json.Marshal(dataSet)
			os.WriteFile(prefix+"_visits.json", bs, 0644)

			p := plot.New()
			p.Title.Text = names[i]
			p.Add(plotter.NewHeatMap(dataSet, palette.Heat(20, 1)))
			p.Save(4*vg.Inch, 4*vg.Inch, prefix+"_heatmap.png")
		}
	}
}
