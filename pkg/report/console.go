package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/edp1096/mini-spice/pkg/analysis"
	"github.com/edp1096/mini-spice/pkg/circuit"
)

// DefaultRows is how many leading and trailing points PrintTransient shows.
const DefaultRows = 5

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, headingStyle.Render(title))
	fmt.Fprintln(w, labelStyle.Render(strings.Repeat("=", len(title))))
}

func nodeHeader(w io.Writer, first string, ckt *circuit.Circuit, numNodes int) {
	fmt.Fprintf(w, "%12s", first)
	for n := 1; n < numNodes; n++ {
		fmt.Fprintf(w, "%12s", "V("+ckt.NodeName(n)+")")
	}
	fmt.Fprintln(w)
}

func PrintTransient(w io.Writer, tr *analysis.Transient) {
	PrintTransientRows(w, tr, DefaultRows)
}

// PrintTransientRows prints every point when there are at most 2*rows of
// them, otherwise the first and last rows separated by "...".
func PrintTransientRows(w io.Writer, tr *analysis.Transient, rows int) {
	points := tr.Points()

	heading(w, "Transient Analysis Results")
	fmt.Fprintf(w, "Total time points: %d\n", len(points))
	if len(points) == 0 {
		return
	}
	nodeHeader(w, "Time", tr.Circuit, tr.NumNodes())

	row := func(p analysis.TimePoint) {
		fmt.Fprintf(w, "%12.3e", p.Time)
		for n := 1; n < len(p.NodeVoltages); n++ {
			fmt.Fprintf(w, "%12.6f", p.NodeVoltages[n])
		}
		fmt.Fprintln(w)
	}

	if rows <= 0 || len(points) <= 2*rows {
		for _, p := range points {
			row(p)
		}
		return
	}

	for _, p := range points[:rows] {
		row(p)
	}
	fmt.Fprintf(w, "%12s\n", "...")
	for _, p := range points[len(points)-rows:] {
		row(p)
	}
}

func PrintOperatingPoint(w io.Writer, op *analysis.OperatingPoint) {
	ckt := op.Circuit

	heading(w, "DC Operating Point")
	if op.Stale() {
		fmt.Fprintln(w, "(stale: last solve failed)")
	}

	fmt.Fprintln(w, "Node voltages:")
	for n := 1; n < op.NumNodes(); n++ {
		fmt.Fprintf(w, "  %-12s %12.6f V\n", "V("+ckt.NodeName(n)+")", op.NodeVoltage(n))
	}

	sources := ckt.VoltageSources()
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "Source currents:")
	for _, v := range sources {
		fmt.Fprintf(w, "  %-12s %12.6e A\n", "I("+v.GetName()+")", op.SourceCurrent(v.GetName()))
	}
}

func PrintSweep(w io.Writer, sw *analysis.DCSweep) {
	heading(w, "DC Sweep: "+sw.SourceName())
	nodeHeader(w, sw.SourceName(), sw.Circuit, sw.NumNodes())

	for i, val := range sw.Values() {
		fmt.Fprintf(w, "%12.4g", val)
		for _, v := range sw.Solutions()[i][1:] {
			fmt.Fprintf(w, "%12.6f", v)
		}
		fmt.Fprintln(w)
	}
}
