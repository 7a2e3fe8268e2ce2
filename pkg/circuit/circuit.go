package circuit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/edp1096/mini-spice/pkg/device"
	"github.com/edp1096/mini-spice/pkg/matrix"
)

var ErrDuplicateName = errors.New("duplicate element name")

// Handle addresses an element inside its Circuit.
type Handle int

// Circuit owns the elements of a netlist in insertion order together with
// the node table their pins were resolved against.
type Circuit struct {
	name    string
	Nodes   *NodeTable
	devices []device.Device
	byName  map[string]Handle
	Models  map[string]device.ModelParam
}

func New(name string) *Circuit {
	return &Circuit{
		name:    name,
		Nodes:   NewNodeTable(),
		devices: make([]device.Device, 0),
		byName:  make(map[string]Handle),
		Models:  make(map[string]device.ModelParam),
	}
}

func (c *Circuit) Name() string { return c.name }

func (c *Circuit) SetName(name string) { c.name = name }

// Add appends dev. Names are unique regardless of case.
func (c *Circuit) Add(dev device.Device) (Handle, error) {
	key := strings.ToUpper(dev.GetName())
	if _, exists := c.byName[key]; exists {
		return -1, fmt.Errorf("%s: %w", dev.GetName(), ErrDuplicateName)
	}

	h := Handle(len(c.devices))
	c.devices = append(c.devices, dev)
	c.byName[key] = h
	return h, nil
}

func (c *Circuit) Get(h Handle) device.Device {
	if h < 0 || int(h) >= len(c.devices) {
		return nil
	}
	return c.devices[h]
}

func (c *Circuit) ByName(name string) (device.Device, bool) {
	h, ok := c.byName[strings.ToUpper(name)]
	if !ok {
		return nil, false
	}
	return c.devices[h], true
}

func (c *Circuit) GetDevices() []device.Device { return c.devices }

func (c *Circuit) Len() int { return len(c.devices) }

// NumNodes counts ground plus every node known to the table or referenced by
// a pin, so circuits built directly from node ids are sized correctly.
func (c *Circuit) NumNodes() int {
	n := c.Nodes.Count()
	for _, dev := range c.devices {
		for _, node := range dev.GetNodes() {
			if node+1 > n {
				n = node + 1
			}
		}
	}
	return n
}

// NodeName is the netlist spelling of node id, or the id itself when the
// node was never named.
func (c *Circuit) NodeName(id int) string {
	if name := c.Nodes.Name(id); name != "" {
		return name
	}
	return strconv.Itoa(id)
}

func (c *Circuit) VoltageSources() []*device.VoltageSource {
	var sources []*device.VoltageSource
	for _, dev := range c.devices {
		if v, ok := dev.(*device.VoltageSource); ok {
			sources = append(sources, v)
		}
	}
	return sources
}

func (c *Circuit) Inductors() []*device.Inductor {
	var inductors []*device.Inductor
	for _, dev := range c.devices {
		if l, ok := dev.(*device.Inductor); ok {
			inductors = append(inductors, l)
		}
	}
	return inductors
}

// Branches assigns each voltage source the matrix row after the node rows,
// in first-seen order.
func (c *Circuit) Branches() map[string]int {
	branchStart := c.NumNodes()
	branches := make(map[string]int)
	for k, v := range c.VoltageSources() {
		branches[v.GetName()] = branchStart + k
	}
	return branches
}

// MatrixSize is the number of unknowns: non-ground nodes plus one branch
// current per voltage source.
func (c *Circuit) MatrixSize() int {
	return c.NumNodes() - 1 + len(c.VoltageSources())
}

func (c *Circuit) Stamp(m matrix.DeviceMatrix, status *device.CircuitStatus) {
	for _, dev := range c.devices {
		dev.Stamp(m, status)
	}
}

func (c *Circuit) SetModels(models map[string]device.ModelParam) {
	c.Models = models
}

var builtinModels = map[string]bool{"d": true, "nmos": true, "pmos": true, "npn": true, "pnp": true}

// ApplyModels copies .model parameters onto the elements naming them. A
// model's type also fixes MOSFET and BJT polarity. The names of referenced
// models that are neither defined nor built in are returned.
func (c *Circuit) ApplyModels() []string {
	var missing []string
	for _, dev := range c.devices {
		mu, ok := dev.(device.ModelUser)
		if !ok {
			continue
		}

		key := strings.ToLower(mu.ModelName())
		model, exists := c.Models[key]
		if !exists {
			if !builtinModels[key] {
				missing = append(missing, mu.ModelName())
			}
			continue
		}

		switch d := dev.(type) {
		case *device.Mosfet:
			switch model.Type {
			case "PMOS":
				d.PMOS = true
			case "NMOS":
				d.PMOS = false
			}
		case *device.Bjt:
			switch model.Type {
			case "PNP":
				d.PNP = true
			case "NPN":
				d.PNP = false
			}
		}
		mu.SetModelParameters(model.Params)
	}
	return missing
}
