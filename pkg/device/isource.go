package device

import (
	"github.com/edp1096/mini-spice/pkg/matrix"
	"github.com/edp1096/mini-spice/pkg/util"
)

// CurrentSource delivers its current into the n+ node and draws it from n-.
type CurrentSource struct {
	BaseDevice
	Wave Waveform
}

func NewDCCurrentSource(name string, value float64) *CurrentSource {
	return NewCurrentSource(name, Waveform{Type: DC, DC: value})
}

func NewCurrentSource(name string, wave Waveform) *CurrentSource {
	return &CurrentSource{
		BaseDevice: newBase(name, wave.At(0), "positive", "negative"),
		Wave:       wave,
	}
}

func (i *CurrentSource) Kind() Kind { return KindCurrentSource }

func (i *CurrentSource) GetCurrent(t float64) float64 { return i.Wave.At(t) }

func (i *CurrentSource) SetValue(value float64) {
	i.Value = value
	i.Wave = Waveform{Type: DC, DC: value}
}

func (i *CurrentSource) SetValueString(s string) { i.SetValue(util.ParseValue(s)) }

func (i *CurrentSource) SpiceLine() string { return i.line(i.Wave.String()) }

func (i *CurrentSource) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	if status.Mode == ACAnalysis {
		return
	}
	injectCurrent(m, i.Node(0), i.Node(1), i.GetCurrent(status.Time))
}
