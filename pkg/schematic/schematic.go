// Package schematic keeps the topology of a circuit being drawn: parts are
// placed, pins are wired together and the result is written out as netlist
// text the parser understands.
package schematic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/mini-spice/internal/logging"
	"github.com/edp1096/mini-spice/pkg/circuit"
	"github.com/edp1096/mini-spice/pkg/device"
)

var (
	ErrInvalidComponent = errors.New("invalid component")
	ErrInvalidPin       = errors.New("invalid pin")
	ErrAlreadyConnected = errors.New("pins already share a node")
)

// Wire records one connection made through Connect or ConnectToGround.
type Wire struct {
	From, To       circuit.Handle
	FromPin, ToPin int
	Node           int
}

type Manager struct {
	ckt      *circuit.Circuit
	wires    []Wire
	counters map[string]int
	nextNode int
	log      logrus.FieldLogger
}

func NewManager(log logrus.FieldLogger) *Manager {
	m := &Manager{log: logging.OrDiscard(log)}
	m.Clear()
	return m
}

// Clear drops every part and wire and restarts naming from 1.
func (m *Manager) Clear() {
	m.ckt = circuit.New("schematic")
	m.wires = nil
	m.counters = make(map[string]int)
	m.nextNode = 1
}

// Add places a part of the given kind named after its prefix and a running
// counter (R1, R2, C1, GND1, ...). MOSFETs of both polarities share "M".
func (m *Manager) Add(kind device.Kind) (circuit.Handle, error) {
	prefix := kind.Prefix()
	m.counters[prefix]++
	name := fmt.Sprintf("%s%d", prefix, m.counters[prefix])

	dev := device.New(kind, name)
	if dev == nil {
		m.counters[prefix]--
		return -1, fmt.Errorf("%w: kind %d", ErrInvalidComponent, kind)
	}

	h, err := m.ckt.Add(dev)
	if err != nil {
		return -1, err
	}
	m.log.WithFields(logrus.Fields{"name": name, "kind": kind, "pins": dev.PinCount()}).Debug("component added")
	return h, nil
}

func (m *Manager) Get(h circuit.Handle) device.Device { return m.ckt.Get(h) }

func (m *Manager) Components() []device.Device { return m.ckt.GetDevices() }

func (m *Manager) Wires() []Wire { return m.wires }

func (m *Manager) pin(h circuit.Handle, pin int) (device.Device, error) {
	dev := m.ckt.Get(h)
	if dev == nil {
		return nil, fmt.Errorf("%w: handle %d", ErrInvalidComponent, h)
	}
	if pin < 0 || pin >= dev.PinCount() {
		return nil, fmt.Errorf("%w: %d for %s (has %d pins)", ErrInvalidPin, pin, dev.GetName(), dev.PinCount())
	}
	return dev, nil
}

// Connect wires pin1 of h1 to pin2 of h2. Two unbound pins get a fresh node,
// one bound pin lends its node to the other, and two different nodes are
// merged into the first, or into ground when either of them is ground. A
// ground symbol on either side grounds the other.
func (m *Manager) Connect(h1 circuit.Handle, pin1 int, h2 circuit.Handle, pin2 int) error {
	if h1 == h2 {
		return fmt.Errorf("%w: cannot connect a component to itself", ErrInvalidComponent)
	}
	d1, err := m.pin(h1, pin1)
	if err != nil {
		return err
	}
	d2, err := m.pin(h2, pin2)
	if err != nil {
		return err
	}

	if d1.Kind() == device.KindGround {
		return m.ConnectToGround(h2, pin2, h1, pin1)
	}
	if d2.Kind() == device.KindGround {
		return m.ConnectToGround(h1, pin1, h2, pin2)
	}

	n1, n2 := d1.Node(pin1), d2.Node(pin2)
	var node int
	switch {
	case n1 == device.Unconnected && n2 == device.Unconnected:
		node = m.nextNode
		m.nextNode++
	case n2 == device.Unconnected:
		node = n1
	case n1 == device.Unconnected:
		node = n2
	case n1 == n2:
		return fmt.Errorf("%w: node %d", ErrAlreadyConnected, n1)
	case n2 == 0:
		node = 0
		m.rebind(n1, 0)
	default:
		node = n1
		m.rebind(n2, n1)
	}

	d1.SetNode(pin1, node)
	d2.SetNode(pin2, node)
	m.wires = append(m.wires, Wire{From: h1, FromPin: pin1, To: h2, ToPin: pin2, Node: node})

	m.log.WithFields(logrus.Fields{
		"from": d1.GetName() + "." + d1.PinName(pin1),
		"to":   d2.GetName() + "." + d2.PinName(pin2),
		"node": node,
	}).Debug("connected")
	return nil
}

// ConnectToGround ties pin of h to node 0 through the ground symbol g. A pin
// already on a node takes that whole node to ground with it.
func (m *Manager) ConnectToGround(h circuit.Handle, pin int, g circuit.Handle, gpin int) error {
	dev, err := m.pin(h, pin)
	if err != nil {
		return err
	}
	gnd, err := m.pin(g, gpin)
	if err != nil {
		return err
	}

	switch current := dev.Node(pin); current {
	case 0:
		return fmt.Errorf("%w: %s.%s is already grounded", ErrAlreadyConnected, dev.GetName(), dev.PinName(pin))
	case device.Unconnected:
		dev.SetNode(pin, 0)
	default:
		m.rebind(current, 0)
	}

	gnd.SetNode(gpin, 0)
	m.wires = append(m.wires, Wire{From: h, FromPin: pin, To: g, ToPin: gpin, Node: 0})

	m.log.WithField("pin", dev.GetName()+"."+dev.PinName(pin)).Debug("connected to ground")
	return nil
}

// rebind moves every pin and wire on node from onto node to.
func (m *Manager) rebind(from, to int) {
	if from == to {
		return
	}
	for _, dev := range m.ckt.GetDevices() {
		for i := 0; i < dev.PinCount(); i++ {
			if dev.Node(i) == from {
				dev.SetNode(i, to)
			}
		}
	}
	for i := range m.wires {
		if m.wires[i].Node == from {
			m.wires[i].Node = to
		}
	}
	m.log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("nodes merged")
}

// UsedNodes lists the distinct node ids bound to any pin, ground included.
func (m *Manager) UsedNodes() []int {
	seen := map[int]bool{0: true}
	nodes := []int{0}
	for _, dev := range m.ckt.GetDevices() {
		for _, n := range dev.GetNodes() {
			if n != device.Unconnected && !seen[n] {
				seen[n] = true
				nodes = append(nodes, n)
			}
		}
	}
	return nodes
}

func (m *Manager) HasGroundReference() bool {
	for _, dev := range m.ckt.GetDevices() {
		for _, n := range dev.GetNodes() {
			if n == 0 {
				return true
			}
		}
	}
	return false
}

// GenerateNetlist writes one element line per fully connected part, a
// comment for each part that is not, the given command lines and ".end".
func (m *Manager) GenerateNetlist(commands ...string) string {
	var sb strings.Builder
	sb.WriteString("* Generated SPICE Netlist\n")

	for _, dev := range m.ckt.GetDevices() {
		if dev.Kind() == device.KindGround {
			continue
		}
		if !dev.IsFullyConnected() {
			fmt.Fprintf(&sb, "* %s not fully connected (%d unconnected pins)\n", dev.GetName(), dev.UnconnectedPinCount())
			continue
		}
		if line := strings.TrimSpace(dev.SpiceLine()); line != "" {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	for _, cmd := range commands {
		sb.WriteString(cmd)
		sb.WriteByte('\n')
	}
	sb.WriteString(".end\n")
	return sb.String()
}

// Validate returns advisory messages; an empty result means the schematic
// can be simulated.
func (m *Manager) Validate() []string {
	devices := m.ckt.GetDevices()
	if len(devices) == 0 {
		return []string{"No components in circuit"}
	}

	var problems []string
	if !m.HasGroundReference() {
		problems = append(problems, "Circuit has no ground reference! Add a ground symbol and connect it to your circuit.")
	}

	hasSource := false
	for _, dev := range devices {
		if dev.Kind() == device.KindGround {
			continue
		}
		if n := dev.UnconnectedPinCount(); n > 0 {
			problems = append(problems, fmt.Sprintf("%s has %d unconnected pins", dev.GetName(), n))
		}
		if dev.Kind() == device.KindVoltageSource && dev.IsFullyConnected() {
			hasSource = true
		}
	}
	if !hasSource {
		problems = append(problems, "No connected voltage source found")
	}
	return problems
}
