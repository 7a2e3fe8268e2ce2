package device

import (
	"github.com/edp1096/mini-spice/pkg/matrix"
	"github.com/edp1096/mini-spice/pkg/util"
)

const (
	DefaultOpAmpGain = 1e5
	DefaultOpAmpRout = 75.0
)

// OpAmp is a single-pole-free Norton model: the output node sees Rout to
// ground in parallel with a current gain/Rout*(V(in+)-V(in-)). Value is the
// open-loop gain.
type OpAmp struct {
	BaseDevice
	Rout float64
}

func NewOpAmp(name string, gain float64) *OpAmp {
	if gain == 0 {
		gain = DefaultOpAmpGain
	}
	return &OpAmp{
		BaseDevice: newBase(name, gain, "in+", "in-", "out"),
		Rout:       DefaultOpAmpRout,
	}
}

func (o *OpAmp) Kind() Kind { return KindOpAmp }

func (o *OpAmp) SpiceLine() string { return o.line(util.FormatValue(o.Value)) }

func (o *OpAmp) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	if status.Mode == InitialConditionAnalysis || status.Mode == ACAnalysis {
		return
	}

	np, nn, no := o.Node(0), o.Node(1), o.Node(2)
	gout := 1.0 / o.Rout

	stampConductance(m, no, 0, gout)
	// Current gm*(Vp-Vn) is pushed into the output node from ground.
	stampTransconductance(m, 0, no, np, nn, o.Value*gout)
}
