package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/edp1096/mini-spice/internal/logging"
	"github.com/edp1096/mini-spice/pkg/netlist"
)

// Result pairs a command with the analysis that ran it. Analysis is set even
// when Err is, so partial transient results can still be reported.
type Result struct {
	Command  netlist.Command
	Analysis Analysis
	Err      error
}

// Runner executes the commands of a parsed netlist in order against the
// complete circuit. Each command gets a fresh analysis.
type Runner struct {
	opts []Option
	log  logrus.FieldLogger
}

func NewRunner(log logrus.FieldLogger, opts ...Option) *Runner {
	log = logging.OrDiscard(log)
	return &Runner{
		opts: append([]Option{WithLogger(log)}, opts...),
		log:  log,
	}
}

// New builds the analysis a command asks for.
func (r *Runner) New(cmd netlist.Command) Analysis {
	switch cmd.Type {
	case netlist.AnalysisTRAN:
		return NewTransient(cmd.Tran.TStart, cmd.Tran.TStop, cmd.Tran.TStep, cmd.Tran.UIC, r.opts...)
	case netlist.AnalysisDC:
		return NewDCSweep(cmd.DC.Source, cmd.DC.Start, cmd.DC.Stop, cmd.DC.Increment, r.opts...)
	case netlist.AnalysisAC:
		return NewAC(cmd.AC.FStart, cmd.AC.FStop, cmd.AC.Points, cmd.AC.Sweep, r.opts...)
	default:
		return NewOP(r.opts...)
	}
}

// Run executes every command. A netlist without commands gets an operating
// point. A failing command does not stop the ones after it.
func (r *Runner) Run(nl *netlist.Netlist) []Result {
	commands := nl.Commands
	if len(commands) == 0 {
		r.log.Info("no analysis requested, running operating point")
		commands = []netlist.Command{{Type: netlist.AnalysisOP}}
	}

	results := make([]Result, 0, len(commands))
	for _, cmd := range commands {
		an := r.New(cmd)
		log := r.log.WithFields(logrus.Fields{"analysis": cmd.Type, "line": cmd.Line})

		err := an.Setup(nl.Circuit)
		if err == nil {
			log.Debug("running")
			err = an.Execute()
		}
		if err != nil {
			log.WithError(err).Error("analysis failed")
		}

		results = append(results, Result{Command: cmd, Analysis: an, Err: err})
	}
	return results
}
