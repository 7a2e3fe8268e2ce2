package device

import "github.com/edp1096/mini-spice/pkg/matrix"

type Inductor struct {
	BaseDevice
}

func NewInductor(name string, value float64) *Inductor {
	return &Inductor{BaseDevice: newBase(name, value, "n+", "n-")}
}

func (l *Inductor) Kind() Kind { return KindInductor }

func (l *Inductor) SpiceLine() string { return l.line(l.ValueString()) }

// Geq is the Backward Euler companion conductance dt/L.
func (l *Inductor) Geq(dt float64) float64 {
	if l.Value == 0 {
		return shortConductance
	}
	return dt / l.Value
}

// NextCurrent advances the branch current (n+ to n-) by one step given the
// voltage across the inductor at the new time point.
func (l *Inductor) NextCurrent(prev, voltage, dt float64) float64 {
	return prev + l.Geq(dt)*voltage
}

func (l *Inductor) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	n1, n2 := l.Node(0), l.Node(1)

	switch status.Mode {
	case OperatingPointAnalysis:
		stampConductance(m, n1, n2, shortConductance)

	case TransientAnalysis:
		stampConductance(m, n1, n2, l.Geq(status.TimeStep))
		injectCurrent(m, n2, n1, status.InductorCurrents[l.Name])
	}
}
