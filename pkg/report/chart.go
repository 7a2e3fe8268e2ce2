package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/edp1096/mini-spice/pkg/analysis"
)

// WriteChart renders the node voltages as an interactive HTML line chart.
func WriteChart(w io.Writer, points []analysis.TimePoint, numNodes int) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Transient Analysis",
			Subtitle: "Node voltages over time",
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "V",
			Scale: true,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:        "s",
			SplitNumber: 20,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)

	times := make([]string, len(points))
	for i, p := range points {
		times[i] = fmt.Sprintf("%.6e", p.Time)
	}
	line.SetXAxis(times)

	for n := 1; n < numNodes; n++ {
		data := make([]opts.LineData, len(points))
		for i, p := range points {
			if n < len(p.NodeVoltages) {
				data[i] = opts.LineData{Value: p.NodeVoltages[n]}
			}
		}
		line.AddSeries(fmt.Sprintf("Node%d", n), data)
	}

	return line.Render(w)
}

func ExportChart(path string, points []analysis.TimePoint, numNodes int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteChart(f, points, numNodes); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
