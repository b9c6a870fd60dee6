package telemetry

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type series struct {
	name  string
	value func(StageStats) float64
}

var populationSeries = []series{
	{"total", func(s StageStats) float64 { return float64(s.Population) }},
	{"RGB", func(s StageStats) float64 { return float64(s.RGBCount) }},
	{"HSL", func(s StageStats) float64 { return float64(s.HSLCount) }},
	{"HSV", func(s StageStats) float64 { return float64(s.HSVCount) }},
	{"CMYK", func(s StageStats) float64 { return float64(s.CMYKCount) }},
}

// PlotPopulation draws population size per color model over stages and
// saves it as a PNG at outPath.
func PlotPopulation(history []StageStats, outPath string) error {
	p := plot.New()
	p.Title.Text = "Population by color model"
	p.X.Label.Text = "Stage"
	p.Y.Label.Text = "Pixels"

	for i, s := range populationSeries {
		pts := make(plotter.XYs, len(history))
		for j, st := range history {
			pts[j].X = float64(st.Stage)
			pts[j].Y = s.value(st)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", s.name, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return fmt.Errorf("saving population chart: %w", err)
	}
	return nil
}
