package device

import (
	"math"

	"github.com/edp1096/mini-spice/internal/consts"
	"github.com/edp1096/mini-spice/pkg/matrix"
)

// Forward-active bias used for the DC stamp.
const (
	bjtDCVbe = 0.65
	bjtDCVbc = -5.0
)

// Bjt is the Ebers-Moll transport model without resistances or charge.
type Bjt struct {
	BaseDevice
	Model string
	PNP   bool

	IS float64 // Transport saturation current
	BF float64 // Ideal forward beta
	BR float64 // Ideal reverse beta
	NF float64 // Forward emission coefficient
}

func NewBjt(name, model string, pnp bool) *Bjt {
	if model == "" {
		model = "NPN"
		if pnp {
			model = "PNP"
		}
	}
	return &Bjt{
		BaseDevice: newBase(name, 0, "collector", "base", "emitter"),
		Model:      model,
		PNP:        pnp,
		IS:         1e-16,
		BF:         100.0,
		BR:         1.0,
		NF:         1.0,
	}
}

func (q *Bjt) Kind() Kind { return KindBJT }

func (q *Bjt) ModelName() string { return q.Model }

func (q *Bjt) ValueString() string { return q.Model }

func (q *Bjt) SetValueString(s string) { q.Model = s }

func (q *Bjt) SpiceLine() string { return q.line(q.Model) }

func (q *Bjt) SetModelParameters(params map[string]float64) {
	paramsSet := map[string]*float64{
		"is": &q.IS,
		"bf": &q.BF,
		"br": &q.BR,
		"nf": &q.NF,
	}
	for key, param := range paramsSet {
		if value, ok := params[key]; ok {
			*param = value
		}
	}
}

// bjtOp holds terminal currents into the collector and base and their partial
// derivatives with respect to Vbe and Vbc.
type bjtOp struct {
	ic, ib         float64
	dicVbe, dicVbc float64
	dibVbe, dibVbc float64
}

func (q *Bjt) evaluateNPN(vbe, vbc, temp float64) bjtOp {
	vt := q.NF * consts.ThermalVoltage(temp)
	ef := math.Exp(math.Min(vbe/vt, maxExpArg))
	er := math.Exp(math.Min(vbc/vt, maxExpArg))
	gf := q.IS / vt * ef
	gr := q.IS / vt * er

	return bjtOp{
		ic:     q.IS*(ef-er) - q.IS/q.BR*(er-1),
		ib:     q.IS/q.BF*(ef-1) + q.IS/q.BR*(er-1),
		dicVbe: gf,
		dicVbc: -gr - gr/q.BR,
		dibVbe: gf / q.BF,
		dibVbc: gr / q.BR,
	}
}

// Evaluate returns the collector and base currents (into the terminals) at
// the given junction voltages. PNP mirrors the NPN law.
func (q *Bjt) Evaluate(vbe, vbc, temp float64) (ic, ib float64) {
	op := q.evaluate(vbe, vbc, temp)
	return op.ic, op.ib
}

func (q *Bjt) evaluate(vbe, vbc, temp float64) bjtOp {
	if !q.PNP {
		return q.evaluateNPN(vbe, vbc, temp)
	}
	op := q.evaluateNPN(-vbe, -vbc, temp)
	op.ic, op.ib = -op.ic, -op.ib
	return op
}

func (q *Bjt) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	nc, nb, ne := q.Node(0), q.Node(1), q.Node(2)

	var vbe, vbc float64
	switch status.Mode {
	case OperatingPointAnalysis:
		vbe, vbc = bjtDCVbe, bjtDCVbc
		if q.PNP {
			vbe, vbc = -vbe, -vbc
		}
	case TransientAnalysis:
		vb := status.PrevVoltage(nb)
		vbe = vb - status.PrevVoltage(ne)
		vbc = vb - status.PrevVoltage(nc)
	default:
		return
	}

	op := q.evaluate(vbe, vbc, status.Temp)
	gmin := math.Max(status.Gmin, diodeMinConductance)

	// Collector current: dIc/dVbe*(Vb-Ve) + dIc/dVbc*(Vb-Vc) + ieq, leaving
	// the collector node into the device and returning through the emitter.
	ieqC := op.ic - op.dicVbe*vbe - op.dicVbc*vbc
	stampTransconductance(m, nc, ne, nb, ne, op.dicVbe)
	stampTransconductance(m, nc, ne, nb, nc, op.dicVbc)
	injectCurrent(m, ne, nc, ieqC)

	ieqB := op.ib - op.dibVbe*vbe - op.dibVbc*vbc
	stampTransconductance(m, nb, ne, nb, ne, op.dibVbe)
	stampTransconductance(m, nb, ne, nb, nc, op.dibVbc)
	injectCurrent(m, ne, nb, ieqB)

	stampConductance(m, nb, ne, gmin)
	stampConductance(m, nb, nc, gmin)
}
