package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/edp1096/mini-spice/pkg/analysis"
)

// DefaultCSVName is the export file used when none is given.
const DefaultCSVName = "transient_results.csv"

func csvHeader(numNodes int) []string {
	header := make([]string, 0, numNodes)
	header = append(header, "Time")
	for n := 1; n < numNodes; n++ {
		header = append(header, fmt.Sprintf("Node%d", n))
	}
	return header
}

// WriteCSV writes one row per point: time in scientific notation, then the
// voltage of nodes 1..numNodes-1 in fixed point.
func WriteCSV(w io.Writer, points []analysis.TimePoint, numNodes int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader(numNodes)); err != nil {
		return err
	}

	record := make([]string, numNodes)
	for _, p := range points {
		record[0] = fmt.Sprintf("%.6e", p.Time)
		for n := 1; n < numNodes; n++ {
			v := 0.0
			if n < len(p.NodeVoltages) {
				v = p.NodeVoltages[n]
			}
			record[n] = fmt.Sprintf("%.6f", v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ExportCSV(path string, points []analysis.TimePoint, numNodes int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(f, points, numNodes); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV loads an exported file back as its header and numeric rows.
func ReadCSV(path string) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("reading %s: empty file", path)
	}

	rows := make([][]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := make([]float64, len(rec))
		for j, field := range rec {
			if row[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, nil, fmt.Errorf("%s row %d column %d: %w", path, i+2, j+1, err)
			}
		}
		rows = append(rows, row)
	}
	return records[0], rows, nil
}
