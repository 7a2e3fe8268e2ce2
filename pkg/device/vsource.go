package device

import (
	"fmt"
	"math"
	"strings"

	"github.com/edp1096/mini-spice/pkg/matrix"
	"github.com/edp1096/mini-spice/pkg/util"
)

// Waveform is the time dependence shared by independent sources.
type Waveform struct {
	Type SourceType
	// DC, common params
	DC float64
	// SIN params
	Amplitude float64
	Freq      float64
	Phase     float64 // degrees
	// PULSE params
	V1     float64
	V2     float64
	Delay  float64
	Rise   float64
	Fall   float64
	PWidth float64
	Period float64
	// PWL params
	Times  []float64
	Values []float64
}

func (w *Waveform) At(t float64) float64 {
	switch w.Type {
	case SIN:
		phaseRad := w.Phase * math.Pi / 180.0
		return w.DC + w.Amplitude*math.Sin(2.0*math.Pi*w.Freq*t+phaseRad)
	case PULSE:
		return w.pulse(t)
	case PWL:
		return w.pwl(t)
	default:
		return w.DC
	}
}

func (w *Waveform) pulse(t float64) float64 {
	if t < w.Delay {
		return w.V1
	}

	t -= w.Delay
	if w.Period > 0 {
		t = math.Mod(t, w.Period)
	}

	if t < w.Rise {
		return w.V1 + (w.V2-w.V1)*t/w.Rise
	}
	if t < w.Rise+w.PWidth {
		return w.V2
	}

	fallStart := w.Rise + w.PWidth
	if t < fallStart+w.Fall {
		return w.V2 - (w.V2-w.V1)*(t-fallStart)/w.Fall
	}

	return w.V1
}

func (w *Waveform) pwl(t float64) float64 {
	if len(w.Times) == 0 {
		return w.DC
	}
	if t <= w.Times[0] {
		return w.Values[0]
	}

	lastIdx := len(w.Times) - 1
	if t >= w.Times[lastIdx] {
		return w.Values[lastIdx]
	}

	for i := 1; i < len(w.Times); i++ {
		if t <= w.Times[i] {
			t1, t2 := w.Times[i-1], w.Times[i]
			v1, v2 := w.Values[i-1], w.Values[i]
			return v1 + (v2-v1)*(t-t1)/(t2-t1)
		}
	}

	return w.Values[lastIdx]
}

// String renders the waveform in netlist syntax.
func (w *Waveform) String() string {
	f := util.FormatValue
	switch w.Type {
	case SIN:
		return fmt.Sprintf("SIN(%s %s %s %s)", f(w.DC), f(w.Amplitude), f(w.Freq), f(w.Phase))
	case PULSE:
		return fmt.Sprintf("PULSE(%s %s %s %s %s %s %s)",
			f(w.V1), f(w.V2), f(w.Delay), f(w.Rise), f(w.Fall), f(w.PWidth), f(w.Period))
	case PWL:
		points := make([]string, 0, 2*len(w.Times))
		for i := range w.Times {
			points = append(points, f(w.Times[i]), f(w.Values[i]))
		}
		return "PWL(" + strings.Join(points, " ") + ")"
	default:
		return "DC " + f(w.DC)
	}
}

type VoltageSource struct {
	BaseDevice
	Wave Waveform
}

func NewDCVoltageSource(name string, value float64) *VoltageSource {
	return NewVoltageSource(name, Waveform{Type: DC, DC: value})
}

func NewVoltageSource(name string, wave Waveform) *VoltageSource {
	return &VoltageSource{
		BaseDevice: newBase(name, wave.At(0), "positive", "negative"),
		Wave:       wave,
	}
}

func (v *VoltageSource) Kind() Kind { return KindVoltageSource }

func (v *VoltageSource) GetVoltage(t float64) float64 { return v.Wave.At(t) }

// SetValue turns the source into a DC source of the given value.
func (v *VoltageSource) SetValue(value float64) {
	v.Value = value
	v.Wave = Waveform{Type: DC, DC: value}
}

func (v *VoltageSource) SetValueString(s string) { v.SetValue(util.ParseValue(s)) }

func (v *VoltageSource) SpiceLine() string { return v.line(v.Wave.String()) }

// Stamp enforces V(n+) - V(n-) = v(t) through the source's branch row; the
// branch current is positive flowing into n+ from the circuit.
func (v *VoltageSource) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	if status.Mode == ACAnalysis {
		return
	}

	n1, n2 := v.Node(0), v.Node(1)
	bIdx := status.BranchRow(v.Name)
	if bIdx <= 0 {
		return
	}

	if n1 > 0 {
		m.AddElement(bIdx, n1, 1)
		m.AddElement(n1, bIdx, 1)
	}
	if n2 > 0 {
		m.AddElement(bIdx, n2, -1)
		m.AddElement(n2, bIdx, -1)
	}

	m.AddRHS(bIdx, v.GetVoltage(status.Time))
}
