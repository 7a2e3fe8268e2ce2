package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/mini-spice/internal/consts"
	"github.com/edp1096/mini-spice/internal/logging"
	"github.com/edp1096/mini-spice/pkg/circuit"
	"github.com/edp1096/mini-spice/pkg/device"
	"github.com/edp1096/mini-spice/pkg/matrix"
)

var (
	ErrNotImplemented = errors.New("analysis not implemented")
	ErrUnknownSource  = errors.New("unknown source")
	ErrNoCircuit      = errors.New("no circuit to analyze")
	ErrInvalidParams  = errors.New("invalid analysis parameters")
)

// StepError reports the time point at which transient stepping stopped.
// Points computed before it are kept.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d at t=%g: %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

type Option func(*BaseAnalysis)

// WithSolver selects the matrix backend; dense is the default.
func WithSolver(backend matrix.Backend) Option {
	return func(a *BaseAnalysis) { a.solver = backend }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(a *BaseAnalysis) { a.log = logging.OrDiscard(log) }
}

// WithTemp sets the device temperature in kelvin.
func WithTemp(kelvin float64) Option {
	return func(a *BaseAnalysis) { a.temp = kelvin }
}

// BaseAnalysis owns the MNA system of one analysis run.
type BaseAnalysis struct {
	Circuit *circuit.Circuit

	solver matrix.Backend
	log    logrus.FieldLogger
	temp   float64
	gmin   float64

	numNodes int
	branches map[string]int
	mat      matrix.System

	results map[string][]float64 // key: variable name, value: result per point
}

func newBaseAnalysis(opts ...Option) BaseAnalysis {
	a := BaseAnalysis{
		solver:  matrix.Dense,
		log:     logging.Discard(),
		temp:    consts.TNOM,
		gmin:    1e-12,
		results: make(map[string][]float64),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Setup assigns branch rows and allocates a system sized for ckt.
func (a *BaseAnalysis) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return ErrNoCircuit
	}

	size := ckt.MatrixSize()
	if size <= 0 {
		return fmt.Errorf("%w: circuit has no unknowns", ErrNoCircuit)
	}

	mat, err := matrix.New(a.solver, size)
	if err != nil {
		return err
	}

	a.Destroy()
	a.Circuit = ckt
	a.numNodes = ckt.NumNodes()
	a.branches = ckt.Branches()
	a.mat = mat
	a.results = make(map[string][]float64)

	a.log.WithFields(logrus.Fields{
		"nodes":  a.numNodes,
		"size":   size,
		"solver": a.solver,
	}).Debug("matrix allocated")
	return nil
}

func (a *BaseAnalysis) GetResults() map[string][]float64 { return a.results }

func (a *BaseAnalysis) MatrixSize() int {
	if a.mat == nil {
		return 0
	}
	return a.mat.Size()
}

func (a *BaseAnalysis) NumNodes() int { return a.numNodes }

func (a *BaseAnalysis) Destroy() {
	if a.mat != nil {
		a.mat.Destroy()
		a.mat = nil
	}
}

func (a *BaseAnalysis) status(mode device.AnalysisMode) *device.CircuitStatus {
	return &device.CircuitStatus{
		Mode:     mode,
		Temp:     a.temp,
		Gmin:     a.gmin,
		Branches: a.branches,
	}
}

// assembleAndSolve restamps every element and solves. On success the
// returned 1-based vector is a copy the caller owns.
func (a *BaseAnalysis) assembleAndSolve(status *device.CircuitStatus) ([]float64, error) {
	a.mat.Clear()
	a.Circuit.Stamp(a.mat, status)

	if logging.Enabled(a.log, logrus.TraceLevel) {
		a.log.WithField("mode", status.Mode).Trace("\n" + matrix.Format(a.mat))
	}

	if err := a.mat.Solve(); err != nil {
		return nil, err
	}

	x := make([]float64, len(a.mat.Solution()))
	copy(x, a.mat.Solution())
	return x, nil
}

func (a *BaseAnalysis) nodeKey(node int) string {
	return fmt.Sprintf("V(%s)", strings.ToLower(a.Circuit.NodeName(node)))
}

// storeResult appends the named node voltages and source currents of the
// 1-based solution x, headed by key=value (TIME, SWEEP1).
func (a *BaseAnalysis) storeResult(key string, value float64, x []float64) {
	a.results[key] = append(a.results[key], value)
	for n := 1; n < a.numNodes; n++ {
		name := a.nodeKey(n)
		a.results[name] = append(a.results[name], x[n])
	}
	for src, row := range a.branches {
		name := fmt.Sprintf("I(%s)", strings.ToLower(src))
		a.results[name] = append(a.results[name], x[row])
	}
}

// voltages extracts node voltages indexed by node id, ground included.
func (a *BaseAnalysis) voltages(x []float64) []float64 {
	v := make([]float64, a.numNodes)
	copy(v[1:], x[1:a.numNodes])
	return v
}

func (a *BaseAnalysis) branchCurrents(x []float64) map[string]float64 {
	currents := make(map[string]float64, len(a.branches))
	for src, row := range a.branches {
		currents[src] = x[row]
	}
	return currents
}
