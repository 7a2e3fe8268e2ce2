package device

import (
	"math"

	"github.com/edp1096/mini-spice/pkg/matrix"
	"github.com/edp1096/mini-spice/pkg/util"
)

const (
	CUTOFF     = 0 // Cutoff region
	LINEAR     = 1 // Linear/Triode region
	SATURATION = 2 // Saturation region
)

// DC bias the output conductance is evaluated at.
const mosfetDCBias = 2.0

// Mosfet is a level 1 (Shichman-Hodges) device. The bulk pin is carried for
// netlist compatibility; there is no body effect.
type Mosfet struct {
	BaseDevice
	Model string
	PMOS  bool

	L      float64 // Channel length (m)
	W      float64 // Channel width (m)
	VTO    float64 // Threshold voltage magnitude
	KP     float64 // Transconductance parameter (A/V²)
	LAMBDA float64 // Channel length modulation (1/V)
}

func NewMosfet(name, model string, pmos bool) *Mosfet {
	if model == "" {
		model = "NMOS"
		if pmos {
			model = "PMOS"
		}
	}
	m := &Mosfet{
		BaseDevice: newBase(name, 0, "drain", "gate", "source", "bulk"),
		Model:      model,
		PMOS:       pmos,
	}
	m.setDefaultParameters()
	return m
}

func (m *Mosfet) setDefaultParameters() {
	m.L = 10e-6
	m.W = 10e-6
	m.VTO = 0.7
	m.KP = 2e-5
	m.LAMBDA = 0.01
}

func (m *Mosfet) Kind() Kind {
	if m.PMOS {
		return KindPMOS
	}
	return KindNMOS
}

func (m *Mosfet) ModelName() string { return m.Model }

func (m *Mosfet) ValueString() string { return m.Model }

func (m *Mosfet) SetValueString(s string) { m.Model = s }

func (m *Mosfet) SpiceLine() string {
	return m.line(m.Model, "W="+util.FormatValue(m.W), "L="+util.FormatValue(m.L))
}

func (m *Mosfet) SetModelParameters(params map[string]float64) {
	paramsSet := map[string]*float64{
		"l":      &m.L,
		"w":      &m.W,
		"vto":    &m.VTO,
		"kp":     &m.KP,
		"lambda": &m.LAMBDA,
	}

	for key, param := range paramsSet {
		if value, ok := params[key]; ok {
			*param = value
		}
	}
	// PMOS cards usually carry a negative VTO.
	m.VTO = math.Abs(m.VTO)
}

func (m *Mosfet) beta() float64 { return m.KP * m.W / m.L }

// level1 evaluates the NMOS law for vgs, vds >= 0 conventions.
func (m *Mosfet) level1(vgs, vds float64) (id, gm, gds float64, region int) {
	vov := vgs - m.VTO
	if vov <= 0 {
		return 0, 0, 0, CUTOFF
	}

	beta := m.beta()
	clm := 1.0 + m.LAMBDA*vds

	if vds < vov {
		id = beta * (vov*vds - 0.5*vds*vds) * clm
		gm = beta * vds * clm
		gds = beta*(vov-vds)*clm + beta*m.LAMBDA*(vov*vds-0.5*vds*vds)
		return id, gm, gds, LINEAR
	}

	id = 0.5 * beta * vov * vov * clm
	gm = beta * vov * clm
	gds = 0.5 * beta * vov * vov * m.LAMBDA
	return id, gm, gds, SATURATION
}

// Evaluate returns the drain current (into the drain terminal) and the
// small-signal conductances at the terminal voltages vgs, vds.
// PMOS runs the NMOS law on negated voltages and negates the current.
func (m *Mosfet) Evaluate(vgs, vds float64) (id, gm, gds float64, region int) {
	if m.PMOS {
		id, gm, gds, region = m.level1(-vgs, -vds)
		return -id, gm, gds, region
	}
	return m.level1(vgs, vds)
}

func (m *Mosfet) DrainCurrent(vgs, vds float64) float64 {
	id, _, _, _ := m.Evaluate(vgs, vds)
	return id
}

func (m *Mosfet) Transconductance(vgs, vds float64) float64 {
	_, gm, _, _ := m.Evaluate(vgs, vds)
	return gm
}

func (m *Mosfet) OutputConductance(vgs, vds float64) float64 {
	_, _, gds, _ := m.Evaluate(vgs, vds)
	return gds
}

func (m *Mosfet) Region(vgs, vds float64) int {
	_, _, _, region := m.Evaluate(vgs, vds)
	return region
}

// Stamp at DC places only gds, taken at |Vgs| = |Vds| = 2 V, between drain and
// source. Transient stamps the full linearization around the previous point.
func (m *Mosfet) Stamp(mat matrix.DeviceMatrix, status *CircuitStatus) {
	nd, ng, ns := m.Node(0), m.Node(1), m.Node(2)

	switch status.Mode {
	case OperatingPointAnalysis:
		bias := mosfetDCBias
		if m.PMOS {
			bias = -bias
		}
		stampConductance(mat, nd, ns, m.OutputConductance(bias, bias))

	case TransientAnalysis:
		vgs := status.PrevVoltage(ng) - status.PrevVoltage(ns)
		vds := status.PrevVoltage(nd) - status.PrevVoltage(ns)
		id, gm, gds, _ := m.Evaluate(vgs, vds)
		gds = math.Max(gds, status.Gmin)
		ieq := id - gm*vgs - gds*vds

		stampConductance(mat, nd, ns, gds)
		stampTransconductance(mat, nd, ns, ng, ns, gm)
		injectCurrent(mat, ns, nd, ieq)
	}
}
