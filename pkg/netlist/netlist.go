package netlist

import (
	"errors"
	"fmt"

	"github.com/edp1096/mini-spice/pkg/circuit"
	"github.com/edp1096/mini-spice/pkg/device"
	"github.com/edp1096/mini-spice/pkg/util"
)

var (
	ErrOpen           = errors.New("cannot open netlist")
	ErrTooFewFields   = errors.New("too few fields")
	ErrUnknownElement = errors.New("unknown element type")
	ErrBadSource      = errors.New("invalid source specification")
	ErrBadModel       = errors.New("invalid model card")
	ErrBadCommand     = errors.New("invalid command")
)

// LineError is a problem confined to one logical netlist line. The line is
// skipped and parsing goes on.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error { return e.Err }

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisTRAN
	AnalysisAC
	AnalysisDC
)

func (a AnalysisType) String() string {
	switch a {
	case AnalysisOP:
		return ".op"
	case AnalysisTRAN:
		return ".tran"
	case AnalysisAC:
		return ".ac"
	case AnalysisDC:
		return ".dc"
	}
	return "unknown"
}

type TranParam struct {
	TStep  float64 // timestep
	TStop  float64 // stop time
	TStart float64 // start time
	UIC    bool    // Use Initial Conditions
}

type ACParam struct {
	Sweep  string  // DEC, OCT, LIN
	Points int     // points per interval
	FStart float64 // start frequency
	FStop  float64 // stop frequency
}

type DCParam struct {
	Source    string
	Start     float64
	Stop      float64
	Increment float64
}

// Command is one analysis request, in netlist order.
type Command struct {
	Type AnalysisType
	Line int
	Tran TranParam
	AC   ACParam
	DC   DCParam
}

type Netlist struct {
	Title    string
	Circuit  *circuit.Circuit
	Commands []Command
	Models   map[string]device.ModelParam
	Warnings []error
}

// ParseValue reads an engineering-notation value; unparseable text is 0.
func ParseValue(s string) float64 { return util.ParseValue(s) }
