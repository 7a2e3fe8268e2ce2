package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/edp1096/mini-spice/pkg/circuit"
	"github.com/edp1096/mini-spice/pkg/device"
)

type OPState int

const (
	OPConstructed OPState = iota
	OPSolved
	OPFailed
)

func (s OPState) String() string {
	switch s {
	case OPConstructed:
		return "constructed"
	case OPSolved:
		return "solved"
	case OPFailed:
		return "failed"
	}
	return "unknown"
}

// OperatingPoint is the single-pass DC solution. Nonlinear elements are
// stamped at their fixed DC linearization.
type OperatingPoint struct {
	BaseAnalysis
	state OPState
	x     []float64 // 1-based, last successful solve
}

func NewOP(opts ...Option) *OperatingPoint {
	return &OperatingPoint{BaseAnalysis: newBaseAnalysis(opts...)}
}

// NewOperatingPoint builds an operating point ready to Solve on ckt.
func NewOperatingPoint(ckt *circuit.Circuit, opts ...Option) (*OperatingPoint, error) {
	op := NewOP(opts...)
	if err := op.Setup(ckt); err != nil {
		return nil, err
	}
	return op, nil
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	if err := op.BaseAnalysis.Setup(ckt); err != nil {
		return err
	}
	op.state = OPConstructed
	op.x = nil
	return nil
}

func (op *OperatingPoint) Execute() error { return op.Solve() }

// Solve assembles and solves the DC system. On failure the previous
// solution, if any, stays readable and Stale reports true.
func (op *OperatingPoint) Solve() error {
	if op.Circuit == nil {
		return ErrNoCircuit
	}

	x, err := op.assembleAndSolve(op.status(device.OperatingPointAnalysis))
	if err != nil {
		op.state = OPFailed
		op.log.WithError(err).Warn("operating point failed")
		return err
	}

	op.x = x
	op.state = OPSolved
	op.results = make(map[string][]float64)
	op.storeResult("OP", 0, x)

	op.log.WithFields(logrus.Fields{"nodes": op.numNodes, "size": op.MatrixSize()}).Info("operating point solved")
	return nil
}

func (op *OperatingPoint) State() OPState { return op.state }

// Stale reports whether the readable solution predates a failed solve.
func (op *OperatingPoint) Stale() bool { return op.state == OPFailed && op.x != nil }

// NodeVoltage is 0 for ground, unknown nodes and before any successful solve.
func (op *OperatingPoint) NodeVoltage(node int) float64 {
	if node <= 0 || node >= op.numNodes || op.x == nil {
		return 0
	}
	return op.x[node]
}

// SourceCurrent is the branch current of the named voltage source, positive
// flowing into its positive terminal from the circuit. Names match regardless
// of case; unknown names give 0.
func (op *OperatingPoint) SourceCurrent(name string) float64 {
	row, ok := op.branches[name]
	if !ok && op.Circuit != nil {
		if dev, found := op.Circuit.ByName(name); found {
			row, ok = op.branches[dev.GetName()]
		}
	}
	if !ok || op.x == nil {
		return 0
	}
	return op.x[row]
}

// Solution returns the unknown vector, 0-based: node n at n-1, branch
// currents after the nodes. Nil before any successful solve.
func (op *OperatingPoint) Solution() []float64 {
	if op.x == nil {
		return nil
	}
	out := make([]float64, len(op.x)-1)
	copy(out, op.x[1:])
	return out
}

// NodeVoltages indexes voltages by node id, ground included.
func (op *OperatingPoint) NodeVoltages() []float64 {
	if op.x == nil {
		return make([]float64, op.numNodes)
	}
	return op.voltages(op.x)
}
