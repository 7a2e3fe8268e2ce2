package device

import "github.com/edp1096/mini-spice/pkg/matrix"

// shortConductance stands in for zero ohms and for an inductor at DC.
const shortConductance = 1e6

type Resistor struct {
	BaseDevice
}

func NewResistor(name string, value float64) *Resistor {
	return &Resistor{BaseDevice: newBase(name, value, "n+", "n-")}
}

func (r *Resistor) Kind() Kind { return KindResistor }

func (r *Resistor) Conductance() float64 {
	if r.Value == 0 {
		return shortConductance
	}
	return 1.0 / r.Value
}

func (r *Resistor) SpiceLine() string { return r.line(r.ValueString()) }

// Stamp is the same in every mode.
func (r *Resistor) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	stampConductance(m, r.Node(0), r.Node(1), r.Conductance())
}
