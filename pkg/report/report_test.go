package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edp1096/mini-spice/pkg/analysis"
	"github.com/edp1096/mini-spice/pkg/netlist"
)

func runRC(t *testing.T, stop float64) *analysis.Transient {
	t.Helper()
	nl, err := netlist.ParseString("V1 in 0 5\nR1 in out 1k\nC1 out 0 1u\n", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tr := analysis.NewTransient(0, stop, 1e-6, true)
	if err := tr.Setup(nl.Circuit); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := tr.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return tr
}

func TestCSVRoundTrip(t *testing.T) {
	tr := runRC(t, 50e-6)
	path := filepath.Join(t.TempDir(), DefaultCSVName)

	if err := ExportCSV(path, tr.Points(), tr.NumNodes()); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	header, rows, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != len(tr.Points()) {
		t.Fatalf("rows = %d, want %d", len(rows), len(tr.Points()))
	}
	if got, want := len(header)-1, tr.NumNodes()-1; got != want {
		t.Fatalf("node columns = %d, want %d", got, want)
	}
	if strings.Join(header, ",") != "Time,Node1,Node2" {
		t.Fatalf("header = %v", header)
	}
}

func TestWriteCSVFormat(t *testing.T) {
	points := []analysis.TimePoint{{Time: 1e-6, NodeVoltages: []float64{0, 5, 0.25}}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, points, 3); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := "Time,Node1,Node2\n1.000000e-06,5.000000,0.250000\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}
}

func TestPrintTransientHeadTail(t *testing.T) {
	tr := runRC(t, 20e-6)

	var buf bytes.Buffer
	PrintTransient(&buf, tr)
	out := buf.String()

	if !strings.Contains(out, "Total time points: 21") {
		t.Fatalf("missing point count:\n%s", out)
	}
	if !strings.Contains(out, "V(out)") || !strings.Contains(out, "...") {
		t.Fatalf("missing header or ellipsis:\n%s", out)
	}

	dataRows := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "e-") || strings.Contains(line, "e+") {
			dataRows++
		}
	}
	if dataRows != 2*DefaultRows {
		t.Fatalf("data rows = %d, want %d\n%s", dataRows, 2*DefaultRows, out)
	}

	buf.Reset()
	PrintTransientRows(&buf, tr, 20)
	if strings.Contains(buf.String(), "...") {
		t.Fatalf("all rows fit, no ellipsis expected")
	}
}

func TestPrintOperatingPoint(t *testing.T) {
	nl, _ := netlist.ParseString("V1 in 0 10\nR1 in out 10k\nR2 out 0 10k\n", nil)
	op, err := analysis.NewOperatingPoint(nl.Circuit)
	if err != nil {
		t.Fatalf("NewOperatingPoint: %v", err)
	}
	if err := op.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	var buf bytes.Buffer
	PrintOperatingPoint(&buf, op)
	out := buf.String()
	for _, want := range []string{"V(in)", "10.000000", "V(out)", "5.000000", "I(V1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPrintSweep(t *testing.T) {
	nl, _ := netlist.ParseString("V1 in 0 0\nR1 in out 1k\nR2 out 0 1k\n", nil)
	sw := analysis.NewDCSweep("V1", 0, 2, 1)
	if err := sw.Setup(nl.Circuit); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := sw.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var buf bytes.Buffer
	PrintSweep(&buf, sw)
	if !strings.Contains(buf.String(), "1.000000") || !strings.Contains(buf.String(), "DC Sweep: V1") {
		t.Fatalf("sweep output:\n%s", buf.String())
	}
}

func TestWriteChart(t *testing.T) {
	tr := runRC(t, 10e-6)

	var buf bytes.Buffer
	if err := WriteChart(&buf, tr.Points(), tr.NumNodes()); err != nil {
		t.Fatalf("WriteChart: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<html") || !strings.Contains(out, "Node2") {
		t.Fatalf("chart html lacks series")
	}
}

func TestWritePlot(t *testing.T) {
	tr := runRC(t, 10e-6)
	path := filepath.Join(t.TempDir(), "tran.png")

	if err := WritePlot(path, tr.Points(), tr.NumNodes()); err != nil {
		t.Fatalf("WritePlot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("plot not written: %v", err)
	}
}
