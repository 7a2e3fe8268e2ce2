package device

import (
	"strconv"
	"strings"

	"github.com/edp1096/mini-spice/pkg/matrix"
	"github.com/edp1096/mini-spice/pkg/util"
)

type Kind int

const (
	KindResistor Kind = iota
	KindCapacitor
	KindInductor
	KindVoltageSource
	KindCurrentSource
	KindGround
	KindDiode
	KindNMOS
	KindPMOS
	KindOpAmp
	KindBJT
)

var kindNames = [...]string{
	KindResistor:      "resistor",
	KindCapacitor:     "capacitor",
	KindInductor:      "inductor",
	KindVoltageSource: "vsource",
	KindCurrentSource: "isource",
	KindGround:        "ground",
	KindDiode:         "diode",
	KindNMOS:          "nmosfet",
	KindPMOS:          "pmosfet",
	KindOpAmp:         "opamp",
	KindBJT:           "bjt",
}

var kindPrefixes = [...]string{
	KindResistor:      "R",
	KindCapacitor:     "C",
	KindInductor:      "L",
	KindVoltageSource: "V",
	KindCurrentSource: "I",
	KindGround:        "GND",
	KindDiode:         "D",
	KindNMOS:          "M",
	KindPMOS:          "M",
	KindOpAmp:         "U",
	KindBJT:           "Q",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Prefix is the conventional first letter(s) of an element name of this kind.
func (k Kind) Prefix() string {
	if k < 0 || int(k) >= len(kindPrefixes) {
		return "X"
	}
	return kindPrefixes[k]
}

// Unconnected marks a pin that is not bound to any node.
const Unconnected = -1

type Pin struct {
	Role string
	Node int
}

// Device is the closed set of circuit elements. Only types in this package
// implement it; analyses dispatch with type switches or through Stamp.
type Device interface {
	GetName() string
	Kind() Kind
	PinCount() int
	PinName(i int) string
	Node(i int) int
	SetNode(i, node int)
	GetNodes() []int
	SetNodes(nodes []int)
	IsFullyConnected() bool
	UnconnectedPinCount() int
	GetValue() float64
	ValueString() string
	SetValueString(s string)
	SpiceLine() string
	Stamp(m matrix.DeviceMatrix, status *CircuitStatus)

	base() *BaseDevice
}

type BaseDevice struct {
	Name  string
	Pins  []Pin
	Value float64
}

func newBase(name string, value float64, roles ...string) BaseDevice {
	pins := make([]Pin, len(roles))
	for i, role := range roles {
		pins[i] = Pin{Role: role, Node: Unconnected}
	}
	return BaseDevice{Name: name, Pins: pins, Value: value}
}

func (d *BaseDevice) base() *BaseDevice { return d }

func (d *BaseDevice) GetName() string { return d.Name }

func (d *BaseDevice) PinCount() int { return len(d.Pins) }

func (d *BaseDevice) PinName(i int) string {
	if i < 0 || i >= len(d.Pins) {
		return "unknown"
	}
	return d.Pins[i].Role
}

func (d *BaseDevice) Node(i int) int {
	if i < 0 || i >= len(d.Pins) {
		return Unconnected
	}
	return d.Pins[i].Node
}

func (d *BaseDevice) SetNode(i, node int) {
	if i < 0 || i >= len(d.Pins) {
		return
	}
	d.Pins[i].Node = node
}

func (d *BaseDevice) GetNodes() []int {
	nodes := make([]int, len(d.Pins))
	for i, p := range d.Pins {
		nodes[i] = p.Node
	}
	return nodes
}

// SetNodes binds pins in order; extra nodes are ignored.
func (d *BaseDevice) SetNodes(nodes []int) {
	for i := range d.Pins {
		if i < len(nodes) {
			d.Pins[i].Node = nodes[i]
		}
	}
}

func (d *BaseDevice) IsFullyConnected() bool { return d.UnconnectedPinCount() == 0 }

func (d *BaseDevice) UnconnectedPinCount() int {
	count := 0
	for _, p := range d.Pins {
		if p.Node == Unconnected {
			count++
		}
	}
	return count
}

func (d *BaseDevice) GetValue() float64 { return d.Value }

func (d *BaseDevice) ValueString() string { return util.FormatValue(d.Value) }

func (d *BaseDevice) SetValueString(s string) { d.Value = util.ParseValue(s) }

// line joins the name, the node ids and the trailing parameters.
func (d *BaseDevice) line(params ...string) string {
	fields := make([]string, 0, 1+len(d.Pins)+len(params))
	fields = append(fields, d.Name)
	for _, p := range d.Pins {
		fields = append(fields, strconv.Itoa(p.Node))
	}
	fields = append(fields, params...)
	return strings.Join(fields, " ")
}

type ModelParam struct {
	Type   string
	Name   string
	Params map[string]float64
}

// ModelUser is implemented by devices that read .model cards.
type ModelUser interface {
	Device
	ModelName() string
	SetModelParameters(params map[string]float64)
}

type SourceType int

const (
	DC SourceType = iota
	SIN
	PULSE
	PWL
)

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	InitialConditionAnalysis
	TransientAnalysis
	ACAnalysis
)

func (m AnalysisMode) String() string {
	switch m {
	case OperatingPointAnalysis:
		return "op"
	case InitialConditionAnalysis:
		return "ic"
	case TransientAnalysis:
		return "tran"
	case ACAnalysis:
		return "ac"
	}
	return "unknown"
}

// CircuitStatus carries everything a stamp needs besides the device itself.
// Solution vectors are 1-based like the matrix rows.
type CircuitStatus struct {
	Time     float64
	TimeStep float64
	Gmin     float64
	Mode     AnalysisMode
	Temp     float64

	// Branches maps voltage-source names to their branch row.
	Branches map[string]int
	// Prev is the previous time point solution, used by companion models.
	Prev []float64
	// InductorCurrents holds i(t-dt) per inductor name.
	InductorCurrents map[string]float64
}

func (s *CircuitStatus) PrevVoltage(node int) float64 {
	if node <= 0 || node >= len(s.Prev) {
		return 0
	}
	return s.Prev[node]
}

func (s *CircuitStatus) BranchRow(name string) int {
	return s.Branches[name]
}
