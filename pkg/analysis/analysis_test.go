package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/edp1096/mini-spice/pkg/circuit"
	"github.com/edp1096/mini-spice/pkg/device"
	"github.com/edp1096/mini-spice/pkg/matrix"
	"github.com/edp1096/mini-spice/pkg/netlist"
)

const tol = 1e-6

func parse(t *testing.T, src string) *netlist.Netlist {
	t.Helper()
	nl, err := netlist.ParseString(src, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(nl.Warnings) != 0 {
		t.Fatalf("parse warnings: %v", nl.Warnings)
	}
	return nl
}

func solveOP(t *testing.T, ckt *circuit.Circuit, opts ...Option) *OperatingPoint {
	t.Helper()
	op, err := NewOperatingPoint(ckt, opts...)
	if err != nil {
		t.Fatalf("NewOperatingPoint: %v", err)
	}
	if err := op.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return op
}

const dividerNetlist = `V1 1 0 10
R1 1 2 10k
R2 2 0 10k
`

func TestOperatingPointDivider(t *testing.T) {
	for _, backend := range []matrix.Backend{matrix.Dense, matrix.Sparse} {
		nl := parse(t, dividerNetlist)
		op := solveOP(t, nl.Circuit, WithSolver(backend))

		if op.MatrixSize() != 3 {
			t.Fatalf("%s: MatrixSize = %d", backend, op.MatrixSize())
		}
		if v := op.NodeVoltage(1); math.Abs(v-10) > tol {
			t.Errorf("%s: V(1) = %g", backend, v)
		}
		if v := op.NodeVoltage(2); math.Abs(v-5) > tol {
			t.Errorf("%s: V(2) = %g", backend, v)
		}
		if i := op.SourceCurrent("V1"); math.Abs(i+0.5e-3) > 1e-9 {
			t.Errorf("%s: I(V1) = %g, want -0.5m", backend, i)
		}
		if i := op.SourceCurrent("v1"); math.Abs(i+0.5e-3) > 1e-9 {
			t.Errorf("%s: I(v1) = %g, lookup must ignore case", backend, i)
		}
		if op.NodeVoltage(0) != 0 || op.NodeVoltage(9) != 0 || op.SourceCurrent("V9") != 0 {
			t.Errorf("%s: ground, out-of-range and unknown queries must be 0", backend)
		}
		if op.State() != OPSolved {
			t.Errorf("%s: state = %s", backend, op.State())
		}

		x := op.Solution()
		if len(x) != 3 || math.Abs(x[0]-10) > tol || math.Abs(x[1]-5) > tol {
			t.Errorf("%s: Solution = %v", backend, x)
		}
	}
}

func TestOperatingPointKCL(t *testing.T) {
	nl := parse(t, `V1 a 0 12
V2 d 0 3
R1 a b 1k
R2 b 0 2.2k
R3 b c 4.7k
R4 c 0 10k
R5 c d 330
R6 a c 6.8k
`)
	ckt := nl.Circuit
	op := solveOP(t, ckt)

	sum := make([]float64, ckt.NumNodes())
	for _, dev := range ckt.GetDevices() {
		n1, n2 := dev.Node(0), dev.Node(1)
		switch d := dev.(type) {
		case *device.Resistor:
			i := (op.NodeVoltage(n1) - op.NodeVoltage(n2)) * d.Conductance()
			sum[n1] -= i
			sum[n2] += i
		case *device.VoltageSource:
			i := op.SourceCurrent(d.GetName())
			sum[n1] -= i
			sum[n2] += i
		}
	}

	for n := 1; n < len(sum); n++ {
		if math.Abs(sum[n]) > 1e-9 {
			t.Errorf("KCL violated at node %s: %g", ckt.NodeName(n), sum[n])
		}
	}
}

func TestOperatingPointIdempotent(t *testing.T) {
	nl := parse(t, dividerNetlist+"D1 2 0\nM1 2 1 0 0 NMOS\n")
	op := solveOP(t, nl.Circuit)
	first := op.Solution()

	if err := op.Solve(); err != nil {
		t.Fatalf("second Solve: %v", err)
	}
	second := op.Solution()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("solution changed at %d: %g vs %g", i, first[i], second[i])
		}
	}
}

func TestOperatingPointSingular(t *testing.T) {
	nl := parse(t, `V1 1 0 10
R1 1 0 1k
C1 2 0 1u
`)
	op, err := NewOperatingPoint(nl.Circuit)
	if err != nil {
		t.Fatalf("NewOperatingPoint: %v", err)
	}

	err = op.Solve()
	if !errors.Is(err, matrix.ErrSingular) {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
	if op.State() != OPFailed || op.Stale() || op.Solution() != nil {
		t.Fatalf("state=%s stale=%v", op.State(), op.Stale())
	}
}

func TestOperatingPointStaleAfterFailure(t *testing.T) {
	nl := parse(t, dividerNetlist)
	op := solveOP(t, nl.Circuit)

	r2, _ := nl.Circuit.ByName("R2")
	r2.SetNodes([]int{0, 0}) // node 2 now floats
	r1, _ := nl.Circuit.ByName("R1")
	r1.SetNodes([]int{1, 0})

	if err := op.Solve(); !errors.Is(err, matrix.ErrSingular) {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
	if !op.Stale() {
		t.Fatalf("previous solution must be reported stale")
	}
	if v := op.NodeVoltage(2); math.Abs(v-5) > tol {
		t.Fatalf("stale V(2) = %g, want previous 5", v)
	}
}

func TestOperatingPointDiode(t *testing.T) {
	nl := parse(t, `V1 1 0 5
R1 1 2 1k
D1 2 0
`)
	op := solveOP(t, nl.Circuit)

	// (V2-5)/1k + 1m*(V2-0.7) = 0
	if v := op.NodeVoltage(2); math.Abs(v-2.85) > tol {
		t.Fatalf("V(2) = %g, want 2.85", v)
	}
}

func TestOperatingPointOpAmpFollower(t *testing.T) {
	nl := parse(t, `V1 in 0 2
U1 in out out
RL out 0 1k
`)
	op := solveOP(t, nl.Circuit)

	out, _ := nl.Circuit.Nodes.Lookup("out")
	if v := op.NodeVoltage(out); math.Abs(v-2) > 1e-3 {
		t.Fatalf("follower output = %g, want about 2", v)
	}
}

func TestOperatingPointCurrentSource(t *testing.T) {
	nl := parse(t, `I1 1 0 2m
R1 1 0 1k
`)
	op := solveOP(t, nl.Circuit)

	// Current enters node 1 and returns through R1.
	if v := op.NodeVoltage(1); math.Abs(v-2) > tol {
		t.Fatalf("V(1) = %g, want 2", v)
	}
}

func TestNoCircuit(t *testing.T) {
	if _, err := NewOperatingPoint(nil); !errors.Is(err, ErrNoCircuit) {
		t.Fatalf("expected ErrNoCircuit, got %v", err)
	}
	if _, err := NewOperatingPoint(circuit.New("empty")); !errors.Is(err, ErrNoCircuit) {
		t.Fatalf("expected ErrNoCircuit for empty circuit, got %v", err)
	}
}
