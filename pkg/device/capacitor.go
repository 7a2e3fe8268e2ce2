package device

import (
	"github.com/edp1096/mini-spice/pkg/matrix"
	"github.com/edp1096/mini-spice/pkg/util"
)

type Capacitor struct {
	BaseDevice
}

func NewCapacitor(name string, value float64) *Capacitor {
	return &Capacitor{BaseDevice: newBase(name, value, "n+", "n-")}
}

func (c *Capacitor) Kind() Kind { return KindCapacitor }

func (c *Capacitor) SpiceLine() string { return c.line(c.ValueString()) }

// Stamp leaves the capacitor open outside transient analysis. In transient it
// is the Backward Euler companion: Geq = C/dt in parallel with Geq*V(t-dt).
func (c *Capacitor) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	if status.Mode != TransientAnalysis {
		return
	}

	n1, n2 := c.Node(0), c.Node(1)
	geq := c.Value * util.BackwardEuler(status.TimeStep)
	ceq := geq * (status.PrevVoltage(n1) - status.PrevVoltage(n2))

	stampConductance(m, n1, n2, geq)
	injectCurrent(m, n1, n2, ceq)
}
