package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/edp1096/mini-spice/internal/config"
	"github.com/edp1096/mini-spice/internal/logging"
	"github.com/edp1096/mini-spice/pkg/analysis"
	"github.com/edp1096/mini-spice/pkg/netlist"
	"github.com/edp1096/mini-spice/pkg/report"
)

type options struct {
	configPath   string
	solver       string
	csvPath      string
	plotPath     string
	chartPath    string
	verbose      bool
	logLevel     string
	validateOnly bool
}

func parseFlags() options {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: spice [options] <netlist_file>\n\n")
		fmt.Fprintf(os.Stderr, "spice runs the analyses requested in a SPICE netlist (.op, .dc, .tran)\n")
		fmt.Fprintf(os.Stderr, "and prints the results. Transient waveforms can be exported as CSV,\n")
		fmt.Fprintf(os.Stderr, "a PNG/SVG plot or an HTML chart.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  spice rc.cir                       # run and export transient_results.csv\n")
		fmt.Fprintf(os.Stderr, "  spice -s sparse -p rc.png rc.cir    # sparse solver, plot the waveforms\n")
		fmt.Fprintf(os.Stderr, "  spice --validate-only rc.cir        # parse and report problems only\n")
	}

	var o options
	pflag.StringVarP(&o.configPath, "config", "c", "", "Config file (default: search ./spice.yaml, ./.spice.yaml, ~/.config/mini-spice/config.yaml)")
	pflag.StringVarP(&o.solver, "solver", "s", "", "Matrix solver: dense or sparse")
	pflag.StringVarP(&o.csvPath, "csv", "o", "", "Write transient results to this CSV file")
	pflag.StringVarP(&o.plotPath, "plot", "p", "", "Write a transient plot (.png, .svg, .pdf)")
	pflag.StringVar(&o.chartPath, "chart", "", "Write an interactive HTML chart of the transient results")
	pflag.BoolVarP(&o.verbose, "verbose", "v", false, "Verbose logging (same as --log-level debug)")
	pflag.StringVar(&o.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	pflag.BoolVar(&o.validateOnly, "validate-only", false, "Parse the netlist and report problems without simulating")
	help := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	return o
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cfg *config.Config, o options) {
	if o.solver != "" {
		cfg.Solver = o.solver
	}
	if o.csvPath != "" {
		cfg.CSV = o.csvPath
	}
	if o.plotPath != "" {
		cfg.Plot = o.plotPath
	}
	if o.chartPath != "" {
		cfg.Chart = o.chartPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
}

func main() {
	o := parseFlags()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		logrus.Fatalf("loading config: %v", err)
	}
	applyFlags(cfg, o)
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		logrus.Fatal(err)
	}

	nl, err := netlist.ParseFile(pflag.Arg(0), log)
	if err != nil {
		log.Fatalf("parsing netlist: %v", err)
	}

	if o.validateOnly {
		os.Exit(validate(nl))
	}

	runner := analysis.NewRunner(log, analysis.WithSolver(cfg.Backend()))
	failed := false
	for _, res := range runner.Run(nl) {
		if err := printResult(res, cfg, log); err != nil {
			log.Error(err)
		}
		if res.Err != nil {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func validate(nl *netlist.Netlist) int {
	fmt.Printf("%s: %d elements, %d nodes, %d analyses\n",
		nl.Title, nl.Circuit.Len(), nl.Circuit.Nodes.Count(), len(nl.Commands))
	for _, w := range nl.Warnings {
		fmt.Println("  warning:", w)
	}
	if len(nl.Warnings) > 0 {
		return 1
	}
	return 0
}

func printResult(res analysis.Result, cfg *config.Config, log logrus.FieldLogger) error {
	switch an := res.Analysis.(type) {
	case *analysis.OperatingPoint:
		if res.Err == nil {
			report.PrintOperatingPoint(os.Stdout, an)
		}

	case *analysis.DCSweep:
		report.PrintSweep(os.Stdout, an)

	case *analysis.Transient:
		var stepErr *analysis.StepError
		if res.Err != nil && !errors.As(res.Err, &stepErr) {
			return nil
		}
		report.PrintTransientRows(os.Stdout, an, cfg.PrintRows)
		if stepErr != nil {
			fmt.Printf("stopped at t=%g: %v\n", an.FailedAt(), stepErr.Err)
		}
		return exportTransient(an, cfg, log)

	case *analysis.ACAnalysis:
		if errors.Is(res.Err, analysis.ErrNotImplemented) {
			fmt.Println("AC analysis is not implemented")
		}
	}
	return nil
}

func exportTransient(tr *analysis.Transient, cfg *config.Config, log logrus.FieldLogger) error {
	points, numNodes := tr.Points(), tr.NumNodes()
	if len(points) == 0 {
		return nil
	}

	exports := []struct {
		name  string
		write func(string) error
	}{
		{cfg.CSV, func(p string) error { return report.ExportCSV(p, points, numNodes) }},
		{cfg.Plot, func(p string) error { return report.WritePlot(p, points, numNodes) }},
		{cfg.Chart, func(p string) error { return report.ExportChart(p, points, numNodes) }},
	}

	for _, e := range exports {
		if e.name == "" {
			continue
		}
		path := cfg.OutputPath(e.name)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := e.write(path); err != nil {
			return fmt.Errorf("exporting %s: %w", path, err)
		}
		log.WithField("path", path).Info("results exported")
		fmt.Printf("Results exported to %s\n", path)
	}
	return nil
}
