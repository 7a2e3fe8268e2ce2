package netlist

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/edp1096/mini-spice/pkg/device"
)

func mustParse(t *testing.T, src string) *Netlist {
	t.Helper()
	nl, err := ParseString(src, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return nl
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1k", 1000},
		{"1meg", 1e6},
		{"1MEG", 1e6},
		{"1m", 1e-3},
		{"", 0},
		{"abc", 0},
		{"10uF", 10e-6},
		{"2.5e-3", 2.5e-3},
		{"4.7n", 4.7e-9},
		{"-5", -5},
	}

	for _, tt := range tests {
		got := ParseValue(tt.in)
		if math.Abs(got-tt.want) > math.Abs(tt.want)*1e-12 {
			t.Errorf("ParseValue(%q) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestParseDivider(t *testing.T) {
	nl := mustParse(t, `* voltage divider
V1 in 0 DC 10
R1 in out 10k ; top leg
R2 out GND 10k
.op
.end
R3 out 0 1k
`)

	ckt := nl.Circuit
	if ckt.Len() != 3 {
		t.Fatalf("elements = %d, want 3 (.end stops reading)", ckt.Len())
	}
	if ckt.NumNodes() != 3 {
		t.Fatalf("NumNodes = %d", ckt.NumNodes())
	}
	if len(nl.Commands) != 1 || nl.Commands[0].Type != AnalysisOP {
		t.Fatalf("commands = %+v", nl.Commands)
	}
	if len(nl.Warnings) != 0 {
		t.Fatalf("warnings = %v", nl.Warnings)
	}

	r2, ok := ckt.ByName("R2")
	if !ok {
		t.Fatalf("R2 missing")
	}
	if r2.GetValue() != 10e3 || r2.Node(0) != 2 || r2.Node(1) != 0 {
		t.Fatalf("R2 value=%g nodes=%v", r2.GetValue(), r2.GetNodes())
	}
}

func TestContinuationAndCaseInsensitiveNodes(t *testing.T) {
	nl := mustParse(t, `V1 Node_A 0
+ DC 3
R1 node_a NODE_B 1k
r2 node_b 0 2k
`)

	v, _ := nl.Circuit.ByName("V1")
	if v.GetValue() != 3 {
		t.Fatalf("continued V1 value = %g", v.GetValue())
	}
	if nl.Circuit.Nodes.Count() != 3 {
		t.Fatalf("node count = %d, want 3", nl.Circuit.Nodes.Count())
	}
	if nl.Circuit.NodeName(1) != "Node_A" {
		t.Fatalf("first spelling must be kept, got %q", nl.Circuit.NodeName(1))
	}
}

func TestBadLinesAreSkipped(t *testing.T) {
	nl := mustParse(t, `R1 a
X1 a b c
R2 a 0 1k
R2 a 0 2k
M1 d g s
`)

	if nl.Circuit.Len() != 1 {
		t.Fatalf("elements = %d, want 1", nl.Circuit.Len())
	}
	if len(nl.Warnings) != 4 {
		t.Fatalf("warnings = %d: %v", len(nl.Warnings), nl.Warnings)
	}

	var lineErr *LineError
	if !errors.As(nl.Warnings[0], &lineErr) || lineErr.Line != 1 {
		t.Fatalf("first warning = %v", nl.Warnings[0])
	}
	if !errors.Is(nl.Warnings[0], ErrTooFewFields) {
		t.Errorf("short line must report ErrTooFewFields")
	}
	if !errors.Is(nl.Warnings[1], ErrUnknownElement) {
		t.Errorf("X line must report ErrUnknownElement")
	}

	// Rejected lines must not consume node ids: only "a" is known.
	if nl.Circuit.Nodes.Count() != 2 {
		t.Fatalf("node count = %d, want 2", nl.Circuit.Nodes.Count())
	}
}

func TestMosfetPolarity(t *testing.T) {
	nl := mustParse(t, `M1 d g 0 0 NMOS_A W=20u L=2u
M2 d g vdd vdd mypmos
M3 d g vdd vdd PFET1
`)

	tests := map[string]bool{"M1": false, "M2": true, "M3": true}
	for name, pmos := range tests {
		d, _ := nl.Circuit.ByName(name)
		m := d.(*device.Mosfet)
		if m.PMOS != pmos {
			t.Errorf("%s PMOS = %v, want %v", name, m.PMOS, pmos)
		}
	}

	d, _ := nl.Circuit.ByName("M1")
	m := d.(*device.Mosfet)
	if math.Abs(m.W-20e-6) > 1e-18 || math.Abs(m.L-2e-6) > 1e-18 {
		t.Errorf("instance W=%g L=%g", m.W, m.L)
	}
}

func TestModelCards(t *testing.T) {
	nl := mustParse(t, `D1 a 0 DFAST
M1 d g 0 0 MP
Q1 c b 0 QN
.model DFAST D(Is=1e-12 N=1.5)
.model MP PMOS (VTO = -0.8 KP=4e-5)
.model QN NPN(BF=200)
`)

	d, _ := nl.Circuit.ByName("D1")
	diode := d.(*device.Diode)
	if diode.Is != 1e-12 || diode.N != 1.5 {
		t.Errorf("diode Is=%g N=%g", diode.Is, diode.N)
	}

	m, _ := nl.Circuit.ByName("M1")
	mos := m.(*device.Mosfet)
	if !mos.PMOS || mos.VTO != 0.8 || mos.KP != 4e-5 {
		t.Errorf("mosfet PMOS=%v VTO=%g KP=%g", mos.PMOS, mos.VTO, mos.KP)
	}

	q, _ := nl.Circuit.ByName("Q1")
	if q.(*device.Bjt).BF != 200 {
		t.Errorf("BF = %g", q.(*device.Bjt).BF)
	}
}

func TestSources(t *testing.T) {
	nl := mustParse(t, `V1 a 0 5
V2 b 0 SIN(0 1 1k)
V3 c 0 PULSE (0 5 1u 1n 1n 1m 2m)
V4 d 0 PWL(0 0 1m 5)
I1 0 e DC 1m
V5 f 0 DC 2 AC 1
`)

	at := func(name string, tm float64) float64 {
		d, _ := nl.Circuit.ByName(name)
		switch s := d.(type) {
		case *device.VoltageSource:
			return s.GetVoltage(tm)
		case *device.CurrentSource:
			return s.GetCurrent(tm)
		}
		t.Fatalf("%s is not a source", name)
		return 0
	}

	if at("V1", 0) != 5 {
		t.Errorf("V1 = %g", at("V1", 0))
	}
	if v := at("V2", 0.25e-3); math.Abs(v-1) > 1e-9 {
		t.Errorf("V2 at quarter period = %g", v)
	}
	if at("V3", 0) != 0 || at("V3", 0.5e-3) != 5 {
		t.Errorf("V3 pulse = %g / %g", at("V3", 0), at("V3", 0.5e-3))
	}
	if v := at("V4", 0.5e-3); math.Abs(v-2.5) > 1e-9 {
		t.Errorf("V4 midpoint = %g", v)
	}
	if at("I1", 0) != 1e-3 {
		t.Errorf("I1 = %g", at("I1", 0))
	}
	if at("V5", 0) != 2 {
		t.Errorf("V5 = %g", at("V5", 0))
	}
	if len(nl.Warnings) != 0 {
		t.Errorf("warnings = %v", nl.Warnings)
	}
}

func TestBadSource(t *testing.T) {
	nl := mustParse(t, "V1 a 0 SIN(0 1)\n")
	if nl.Circuit.Len() != 0 || len(nl.Warnings) != 1 || !errors.Is(nl.Warnings[0], ErrBadSource) {
		t.Fatalf("len=%d warnings=%v", nl.Circuit.Len(), nl.Warnings)
	}
}

func TestUnreadableSourceValueIsZero(t *testing.T) {
	nl := mustParse(t, "V1 1 0 abc\nI1 1 0 DC xyz\nR1 1 0 abc\n")
	if len(nl.Warnings) != 0 {
		t.Fatalf("warnings = %v", nl.Warnings)
	}
	if nl.Circuit.Len() != 3 {
		t.Fatalf("elements = %d, want 3", nl.Circuit.Len())
	}
	for _, name := range []string{"V1", "I1", "R1"} {
		dev, ok := nl.Circuit.ByName(name)
		if !ok {
			t.Fatalf("%s missing", name)
		}
		if dev.GetValue() != 0 {
			t.Errorf("%s value = %g, want 0", name, dev.GetValue())
		}
	}
}

func TestCommands(t *testing.T) {
	nl := mustParse(t, `V1 a 0 1
.TRAN 1u 10m 0 UIC
.dc
.dc V1 0 5 1
.ac dec 10 1 1meg
.print tran v(a)
.title my circuit
`)

	if len(nl.Commands) != 4 {
		t.Fatalf("commands = %+v", nl.Commands)
	}

	tran := nl.Commands[0]
	if tran.Type != AnalysisTRAN || tran.Tran.TStep != 1e-6 || tran.Tran.TStop != 10e-3 || !tran.Tran.UIC {
		t.Errorf("tran = %+v", tran)
	}
	if nl.Commands[1].Type != AnalysisOP {
		t.Errorf(".dc without arguments must request an operating point")
	}
	if dc := nl.Commands[2]; dc.Type != AnalysisDC || dc.DC.Source != "V1" || dc.DC.Stop != 5 || dc.DC.Increment != 1 {
		t.Errorf("dc = %+v", dc)
	}
	if ac := nl.Commands[3]; ac.Type != AnalysisAC || ac.AC.Sweep != "DEC" || ac.AC.Points != 10 || ac.AC.FStop != 1e6 {
		t.Errorf("ac = %+v", ac)
	}
	if nl.Title != "my circuit" {
		t.Errorf("title = %q", nl.Title)
	}
}

func TestRoundTrip(t *testing.T) {
	src := `R1 1 2 4.7k
C1 2 0 100n
L1 2 3 1m
V1 1 0 DC 5
D1 3 0 D
M1 3 1 0 0 NMOS W=20u L=2u
U1 1 2 3 100k
Q1 3 2 0 NPN
`
	first := mustParse(t, src)

	var out string
	for _, d := range first.Circuit.GetDevices() {
		out += d.SpiceLine() + "\n"
	}
	second := mustParse(t, out)

	if first.Circuit.Len() != second.Circuit.Len() {
		t.Fatalf("len %d vs %d", first.Circuit.Len(), second.Circuit.Len())
	}
	for i, a := range first.Circuit.GetDevices() {
		b := second.Circuit.GetDevices()[i]
		if a.Kind() != b.Kind() || a.GetName() != b.GetName() {
			t.Errorf("%s: kind %s vs %s", a.GetName(), a.Kind(), b.Kind())
		}
		if math.Abs(a.GetValue()-b.GetValue()) > math.Abs(a.GetValue())*1e-6 {
			t.Errorf("%s: value %g vs %g", a.GetName(), a.GetValue(), b.GetValue())
		}
		if ma, ok := a.(*device.Mosfet); ok {
			mb := b.(*device.Mosfet)
			if math.Abs(ma.W-mb.W) > 1e-12 || math.Abs(ma.L-mb.L) > 1e-12 {
				t.Errorf("%s: W/L %g/%g vs %g/%g", a.GetName(), ma.W, ma.L, mb.W, mb.L)
			}
		}
		an, bn := a.GetNodes(), b.GetNodes()
		for k := range an {
			if an[k] != bn[k] {
				t.Errorf("%s: nodes %v vs %v", a.GetName(), an, bn)
				break
			}
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc.cir")
	if err := os.WriteFile(path, []byte("R1 1 0 1k\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	nl, err := ParseFile(path, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if nl.Title != "rc" || nl.Circuit.Name() != "rc" {
		t.Errorf("title = %q", nl.Title)
	}

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.cir"), nil)
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
}
