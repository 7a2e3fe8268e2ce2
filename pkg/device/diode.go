package device

import (
	"math"

	"github.com/edp1096/mini-spice/internal/consts"
	"github.com/edp1096/mini-spice/pkg/matrix"
)

const (
	// Fixed operating point used for the DC stamp.
	diodeDCDrop        = 0.7
	diodeDCConductance = 1e-3

	diodeMinConductance = 1e-12
	maxExpArg           = 40.0
)

type Diode struct {
	BaseDevice
	Model string

	Is float64 // Saturation current
	N  float64 // Emission coefficient
}

func NewDiode(name, model string) *Diode {
	if model == "" {
		model = "D"
	}
	return &Diode{
		BaseDevice: newBase(name, 0, "anode", "cathode"),
		Model:      model,
		Is:         1e-14,
		N:          1.0,
	}
}

func (d *Diode) Kind() Kind { return KindDiode }

func (d *Diode) ModelName() string { return d.Model }

func (d *Diode) ValueString() string { return d.Model }

func (d *Diode) SetValueString(s string) { d.Model = s }

func (d *Diode) SpiceLine() string { return d.line(d.Model) }

func (d *Diode) SetModelParameters(params map[string]float64) {
	if is, ok := params["is"]; ok {
		d.Is = is
	}
	if n, ok := params["n"]; ok && n > 0 {
		d.N = n
	}
}

func (d *Diode) nvt(temp float64) float64 {
	return d.N * consts.ThermalVoltage(temp)
}

// Current is the exponential law, clamped to -Is below -5 n*Vt.
func (d *Diode) Current(vd, temp float64) float64 {
	nvt := d.nvt(temp)
	if vd < -5.0*nvt {
		return -d.Is
	}
	return d.Is * (math.Exp(math.Min(vd/nvt, maxExpArg)) - 1.0)
}

// Conductance is dI/dV with a floor in deep reverse bias.
func (d *Diode) Conductance(vd, temp float64) float64 {
	nvt := d.nvt(temp)
	g := d.Is / nvt * math.Exp(math.Min(vd/nvt, maxExpArg))
	return math.Max(g, diodeMinConductance)
}

// Stamp uses a fixed 0.7 V / 1 mS model at DC and, in transient, the
// tangent at the previous time point's voltage.
func (d *Diode) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	na, nk := d.Node(0), d.Node(1)

	switch status.Mode {
	case OperatingPointAnalysis:
		stampConductance(m, na, nk, diodeDCConductance)
		injectCurrent(m, na, nk, diodeDCDrop*diodeDCConductance)

	case TransientAnalysis:
		vd := status.PrevVoltage(na) - status.PrevVoltage(nk)
		gd := d.Conductance(vd, status.Temp)
		ieq := d.Current(vd, status.Temp) - gd*vd

		stampConductance(m, na, nk, gd)
		injectCurrent(m, nk, na, ieq)
	}
}
