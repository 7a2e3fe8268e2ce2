package analysis

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/mini-spice/pkg/circuit"
	"github.com/edp1096/mini-spice/pkg/device"
)

type TranState int

const (
	TranConstructed TranState = iota
	TranICEstablished
	TranStepping
	TranDone
	TranFailed
)

func (s TranState) String() string {
	switch s {
	case TranConstructed:
		return "constructed"
	case TranICEstablished:
		return "ic-established"
	case TranStepping:
		return "stepping"
	case TranDone:
		return "done"
	case TranFailed:
		return "failed"
	}
	return "unknown"
}

// TimePoint is one recorded solution. NodeVoltages is indexed by node id
// with [0] = 0; BranchCurrents holds voltage-source and inductor currents.
type TimePoint struct {
	Time           float64
	NodeVoltages   []float64
	BranchCurrents map[string]float64
}

// Transient integrates with Backward Euler at a fixed step. Nonlinear
// elements are linearized once per step around the previous point.
type Transient struct {
	BaseAnalysis
	tStart float64
	tStop  float64
	tStep  float64
	uic    bool

	state    TranState
	failedAt float64

	x                []float64
	xPrev            []float64
	inductorCurrents map[string]float64
	points           []TimePoint
}

func NewTransient(tStart, tStop, tStep float64, uic bool, opts ...Option) *Transient {
	return &Transient{
		BaseAnalysis: newBaseAnalysis(opts...),
		tStart:       tStart,
		tStop:        tStop,
		tStep:        tStep,
		uic:          uic,
	}
}

func (tr *Transient) Setup(ckt *circuit.Circuit) error {
	if tr.tStep <= 0 || tr.tStop < tr.tStart {
		return fmt.Errorf("%w: step=%g start=%g stop=%g", ErrInvalidParams, tr.tStep, tr.tStart, tr.tStop)
	}
	if err := tr.BaseAnalysis.Setup(ckt); err != nil {
		return err
	}

	tr.state = TranConstructed
	tr.points = nil
	tr.x, tr.xPrev = nil, nil
	tr.inductorCurrents = make(map[string]float64)
	for _, l := range ckt.Inductors() {
		tr.inductorCurrents[l.GetName()] = 0
	}
	return nil
}

func (tr *Transient) Execute() error { return tr.Solve() }

// Solve establishes initial conditions and steps from start to stop. A
// singular step ends the run with a *StepError; the points recorded so far
// remain available.
func (tr *Transient) Solve() error {
	if tr.Circuit == nil {
		return ErrNoCircuit
	}

	if err := tr.initialConditions(); err != nil {
		tr.state = TranFailed
		tr.failedAt = tr.tStart
		return fmt.Errorf("initial conditions: %w", err)
	}
	tr.state = TranICEstablished
	tr.record(tr.tStart, tr.xPrev)

	tr.state = TranStepping
	// Times are computed from the step count so they do not drift; the
	// tolerance absorbs rounding in start + k*step near stop.
	eps := tr.tStep * 1e-9
	for k := 1; tr.tStart+float64(k-1)*tr.tStep < tr.tStop-eps; k++ {
		t := tr.tStart + float64(k)*tr.tStep

		if err := tr.step(t); err != nil {
			tr.state = TranFailed
			tr.failedAt = t
			tr.log.WithFields(logrus.Fields{"step": k, "time": t}).WithError(err).Warn("transient stopped")
			return &StepError{Step: k, Time: t, Err: err}
		}

		if k%1000 == 0 {
			tr.log.WithFields(logrus.Fields{"step": k, "time": t}).Debug("transient progress")
		}
	}

	tr.state = TranDone
	tr.log.WithFields(logrus.Fields{"points": len(tr.points), "stop": tr.tStop}).Info("transient finished")
	return nil
}

// initialConditions solves the circuit with only resistors and independent
// sources, or starts from zero with uic.
func (tr *Transient) initialConditions() error {
	if tr.uic {
		tr.xPrev = make([]float64, tr.MatrixSize()+1)
		return nil
	}

	status := tr.status(device.InitialConditionAnalysis)
	status.Time = tr.tStart
	x, err := tr.assembleAndSolve(status)
	if err != nil {
		return err
	}
	tr.xPrev = x
	return nil
}

func (tr *Transient) step(t float64) error {
	status := tr.status(device.TransientAnalysis)
	status.Time = t
	status.TimeStep = tr.tStep
	status.Prev = tr.xPrev
	status.InductorCurrents = tr.inductorCurrents

	x, err := tr.assembleAndSolve(status)
	if err != nil {
		return err
	}

	tr.updateInductorCurrents(x)
	tr.x = x
	tr.record(t, x)
	tr.xPrev = x
	return nil
}

func (tr *Transient) updateInductorCurrents(x []float64) {
	next := make(map[string]float64, len(tr.inductorCurrents))
	for _, l := range tr.Circuit.Inductors() {
		v := nodeValue(x, l.Node(0)) - nodeValue(x, l.Node(1))
		next[l.GetName()] = l.NextCurrent(tr.inductorCurrents[l.GetName()], v, tr.tStep)
	}
	tr.inductorCurrents = next
}

func nodeValue(x []float64, node int) float64 {
	if node <= 0 || node >= len(x) {
		return 0
	}
	return x[node]
}

func (tr *Transient) record(t float64, x []float64) {
	currents := tr.branchCurrents(x)
	for name, i := range tr.inductorCurrents {
		currents[name] = i
	}

	tr.points = append(tr.points, TimePoint{
		Time:           t,
		NodeVoltages:   tr.voltages(x),
		BranchCurrents: currents,
	})
	tr.storeResult("TIME", t, x)
}

func (tr *Transient) State() TranState { return tr.state }

// FailedAt is the time of the failing step when State is TranFailed.
func (tr *Transient) FailedAt() float64 { return tr.failedAt }

func (tr *Transient) Points() []TimePoint { return tr.points }

func (tr *Transient) Times() []float64 {
	times := make([]float64, len(tr.points))
	for i, p := range tr.points {
		times[i] = p.Time
	}
	return times
}

// NodeVoltageHistory is the voltage of node at every recorded point.
func (tr *Transient) NodeVoltageHistory(node int) []float64 {
	history := make([]float64, len(tr.points))
	if node <= 0 || node >= tr.numNodes {
		return history
	}
	for i, p := range tr.points {
		history[i] = p.NodeVoltages[node]
	}
	return history
}

// InductorCurrent is the present current of the named inductor.
func (tr *Transient) InductorCurrent(name string) float64 {
	return tr.inductorCurrents[name]
}
