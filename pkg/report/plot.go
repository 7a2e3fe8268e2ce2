package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/mini-spice/pkg/analysis"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// WritePlot draws every node voltage against time. The image format follows
// the extension of path (.png, .svg, .pdf).
func WritePlot(path string, points []analysis.TimePoint, numNodes int) error {
	p := plot.New()
	p.Title.Text = "Transient Analysis"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Voltage (V)"
	p.Add(plotter.NewGrid())

	for n := 1; n < numNodes; n++ {
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i].X = pt.Time
			if n < len(pt.NodeVoltages) {
				xys[i].Y = pt.NodeVoltages[n]
			}
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("node %d: %w", n, err)
		}
		line.Color = plotutil.Color(n - 1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Node%d", n), line)
	}

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}
