package netlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/mini-spice/internal/logging"
	"github.com/edp1096/mini-spice/pkg/circuit"
	"github.com/edp1096/mini-spice/pkg/device"
	"github.com/edp1096/mini-spice/pkg/util"
)

// Minimum token count, name included, per element prefix.
var minFields = map[byte]int{
	'r': 4, 'c': 4, 'l': 4, 'v': 4, 'i': 4,
	'd': 3,
	'm': 6,
	'u': 4,
	'q': 4,
}

type logicalLine struct {
	num  int
	text string
}

type parser struct {
	log logrus.FieldLogger
	nl  *Netlist
}

// ParseFile reads the netlist at path. Failing to open it is fatal and wraps
// ErrOpen; problems on individual lines end up in Netlist.Warnings.
func ParseFile(path string, log logrus.FieldLogger) (*Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	nl, err := Parse(f, log)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if nl.Title == "" {
		nl.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	nl.Circuit.SetName(nl.Title)
	return nl, nil
}

func ParseString(input string, log logrus.FieldLogger) (*Netlist, error) {
	return Parse(strings.NewReader(input), log)
}

// Parse reads the whole netlist before anything is evaluated: elements land
// in the circuit, analysis requests in Commands, and .model cards are applied
// once every element is known.
func Parse(r io.Reader, log logrus.FieldLogger) (*Netlist, error) {
	lines, err := readLogicalLines(r)
	if err != nil {
		return nil, err
	}

	p := &parser{
		log: logging.OrDiscard(log),
		nl: &Netlist{
			Circuit: circuit.New(""),
			Models:  make(map[string]device.ModelParam),
		},
	}

	for _, line := range lines {
		if isEnd(line.text) {
			break
		}
		if err := p.parseLine(line); err != nil {
			p.warn(line, err)
		}
	}

	ckt := p.nl.Circuit
	ckt.SetName(p.nl.Title)
	ckt.SetModels(p.nl.Models)
	for _, name := range ckt.ApplyModels() {
		p.log.WithField("model", name).Warn("undefined model, using defaults")
	}

	p.log.WithFields(logrus.Fields{
		"elements": ckt.Len(),
		"nodes":    ckt.Nodes.Count(),
		"commands": len(p.nl.Commands),
	}).Debug("netlist parsed")

	return p.nl, nil
}

// readLogicalLines drops comments and blank lines and folds "+" continuations
// into the line they continue.
func readLogicalLines(r io.Reader) ([]logicalLine, error) {
	var lines []logicalLine

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	num := 0
	for scanner.Scan() {
		num++
		text := scanner.Text()
		if idx := strings.IndexByte(text, ';'); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)

		if text == "" || strings.HasPrefix(text, "*") {
			continue
		}

		if strings.HasPrefix(text, "+") {
			rest := strings.TrimSpace(text[1:])
			if len(lines) > 0 && rest != "" {
				lines[len(lines)-1].text += " " + rest
			}
			continue
		}

		lines = append(lines, logicalLine{num: num, text: text})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func isEnd(text string) bool {
	fields := strings.Fields(text)
	return strings.EqualFold(fields[0], ".end")
}

func (p *parser) warn(line logicalLine, err error) {
	lineErr := &LineError{Line: line.num, Text: line.text, Err: err}
	p.nl.Warnings = append(p.nl.Warnings, lineErr)
	p.log.WithFields(logrus.Fields{"line": line.num, "text": line.text}).Warn(err)
}

func (p *parser) parseLine(line logicalLine) error {
	fields := strings.Fields(line.text)
	if strings.HasPrefix(fields[0], ".") {
		return p.parseDotCommand(line, fields)
	}

	dev, err := p.parseElement(fields)
	if err != nil {
		return err
	}

	if _, err := p.nl.Circuit.Add(dev); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{"name": dev.GetName(), "nodes": dev.GetNodes()}).Trace(dev.Kind())
	return nil
}

// resolveNodes maps node names to ids. Call only after the token count has
// been checked so a rejected line never consumes an id.
func (p *parser) resolveNodes(names []string) []int {
	nodes := make([]int, len(names))
	for i, name := range names {
		nodes[i] = p.nl.Circuit.Nodes.Resolve(name)
	}
	return nodes
}

func (p *parser) parseElement(fields []string) (device.Device, error) {
	name := fields[0]
	prefix := strings.ToLower(name)[0]

	need, known := minFields[prefix]
	if !known {
		return nil, fmt.Errorf("%w %q", ErrUnknownElement, name[:1])
	}
	if len(fields) < need {
		return nil, fmt.Errorf("%w: %s needs %d, got %d", ErrTooFewFields, name, need, len(fields))
	}

	var dev device.Device
	var pins int

	switch prefix {
	case 'r':
		dev, pins = device.NewResistor(name, util.ParseValue(fields[3])), 2
	case 'c':
		dev, pins = device.NewCapacitor(name, util.ParseValue(fields[3])), 2
	case 'l':
		dev, pins = device.NewInductor(name, util.ParseValue(fields[3])), 2

	case 'v', 'i':
		wave, err := parseWaveform(fields[3:])
		if err != nil {
			return nil, err
		}
		pins = 2
		if prefix == 'v' {
			dev = device.NewVoltageSource(name, wave)
		} else {
			dev = device.NewCurrentSource(name, wave)
		}

	case 'd':
		model := ""
		if len(fields) > 3 {
			model = fields[3]
		}
		dev, pins = device.NewDiode(name, model), 2

	case 'm':
		model := fields[5]
		lower := strings.ToLower(model)
		pmos := strings.Contains(lower, "pmos") || strings.Contains(lower, "pfet")
		mos := device.NewMosfet(name, model, pmos)
		parseInstanceParams(fields[6:], map[string]*float64{"l": &mos.L, "w": &mos.W})
		dev, pins = mos, 4

	case 'u':
		gain := 0.0
		if len(fields) > 4 {
			gain = util.ParseValue(fields[4])
		}
		dev, pins = device.NewOpAmp(name, gain), 3

	case 'q':
		model := ""
		if len(fields) > 4 {
			model = fields[4]
		}
		pnp := strings.Contains(strings.ToLower(model), "pnp")
		dev, pins = device.NewBjt(name, model, pnp), 3
	}

	dev.SetNodes(p.resolveNodes(fields[1 : 1+pins]))
	return dev, nil
}

// parseInstanceParams reads key=value pairs such as "W=20u L=1u".
func parseInstanceParams(tokens []string, targets map[string]*float64) {
	for _, tok := range tokens {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		if target, exists := targets[strings.ToLower(key)]; exists {
			*target = util.ParseValue(value)
		}
	}
}

func (p *parser) parseDotCommand(line logicalLine, fields []string) error {
	cmd := Command{Line: line.num}

	switch strings.ToLower(fields[0]) {
	case ".title":
		p.nl.Title = strings.TrimSpace(strings.TrimPrefix(line.text, fields[0]))
		return nil

	case ".model":
		return p.parseModel(line.text)

	case ".op":
		cmd.Type = AnalysisOP

	case ".dc":
		switch {
		case len(fields) == 1:
			cmd.Type = AnalysisOP
		case len(fields) >= 5:
			cmd.Type = AnalysisDC
			cmd.DC = DCParam{
				Source:    fields[1],
				Start:     util.ParseValue(fields[2]),
				Stop:      util.ParseValue(fields[3]),
				Increment: util.ParseValue(fields[4]),
			}
			if cmd.DC.Increment == 0 {
				return fmt.Errorf("%w: .dc increment must be non-zero", ErrBadCommand)
			}
		default:
			return fmt.Errorf("%w: .dc needs source, start, stop and increment", ErrBadCommand)
		}

	case ".tran":
		if len(fields) < 3 {
			return fmt.Errorf("%w: .tran needs step and stop", ErrBadCommand)
		}
		cmd.Type = AnalysisTRAN
		cmd.Tran.TStep = util.ParseValue(fields[1])
		cmd.Tran.TStop = util.ParseValue(fields[2])
		for i, f := range fields[3:] {
			switch {
			case strings.EqualFold(f, "uic"):
				cmd.Tran.UIC = true
			case i == 0:
				cmd.Tran.TStart = util.ParseValue(f)
			}
		}
		if cmd.Tran.TStep <= 0 {
			return fmt.Errorf("%w: .tran step must be positive", ErrBadCommand)
		}

	case ".ac":
		if len(fields) < 5 {
			return fmt.Errorf("%w: .ac needs sweep type, points, fstart and fstop", ErrBadCommand)
		}
		points, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("%w: .ac points: %w", ErrBadCommand, err)
		}
		cmd.Type = AnalysisAC
		cmd.AC = ACParam{
			Sweep:  strings.ToUpper(fields[1]),
			Points: points,
			FStart: util.ParseValue(fields[3]),
			FStop:  util.ParseValue(fields[4]),
		}

	default:
		p.log.WithFields(logrus.Fields{"line": line.num, "command": fields[0]}).Warn("unknown command ignored")
		return nil
	}

	p.nl.Commands = append(p.nl.Commands, cmd)
	return nil
}

var modelSpacer = strings.NewReplacer("(", " ", ")", " ", ",", " ")

// parseModel reads ".model NAME TYPE(key=value ...)" with or without the
// parentheses and spaces around "=".
func (p *parser) parseModel(text string) error {
	fields := strings.Fields(modelSpacer.Replace(text))
	if len(fields) < 3 {
		return fmt.Errorf("%w: need name and type", ErrBadModel)
	}

	name := fields[1]
	modelType := strings.ToUpper(fields[2])
	switch modelType {
	case "D", "NMOS", "PMOS", "NPN", "PNP":
	default:
		return fmt.Errorf("%w: unsupported type %s", ErrBadModel, modelType)
	}

	rest := strings.Join(fields[3:], " ")
	rest = strings.ReplaceAll(rest, " =", "=")
	rest = strings.ReplaceAll(rest, "= ", "=")

	params := make(map[string]float64)
	for _, pair := range strings.Fields(rest) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		params[strings.ToLower(key)] = util.ParseValue(value)
	}

	p.nl.Models[strings.ToLower(name)] = device.ModelParam{
		Type:   modelType,
		Name:   name,
		Params: params,
	}
	return nil
}
