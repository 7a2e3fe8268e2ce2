package device

import "github.com/edp1096/mini-spice/pkg/matrix"

// Ground is the schematic ground symbol. It ties its pin to node 0 and never
// appears in a netlist.
type Ground struct {
	BaseDevice
}

func NewGround(name string) *Ground {
	return &Ground{BaseDevice: newBase(name, 0, "gnd")}
}

func (g *Ground) Kind() Kind { return KindGround }

func (g *Ground) ValueString() string { return "" }

func (g *Ground) SetValueString(string) {}

func (g *Ground) SpiceLine() string { return "" }

func (g *Ground) Stamp(matrix.DeviceMatrix, *CircuitStatus) {}
