package matrix

import (
	"errors"
	"fmt"
	"strings"
)

// PivotThreshold is the smallest pivot magnitude accepted by the elimination.
const PivotThreshold = 1e-12

var ErrSingular = errors.New("singular matrix")

type Backend string

const (
	Dense  Backend = "dense"
	Sparse Backend = "sparse"
)

// System is an assembled MNA system that can be cleared, restamped and solved.
type System interface {
	DeviceMatrix
	Size() int
	Clear()
	Solve() error
	// Solution is 1-based, index 0 is always ground (0 V).
	Solution() []float64
	At(i, j int) float64
	RHS() []float64
	Destroy()
}

func New(backend Backend, size int) (System, error) {
	switch backend {
	case "", Dense:
		return NewDense(size), nil
	case Sparse:
		return NewSparse(size)
	default:
		return nil, fmt.Errorf("unknown solver backend %q", backend)
	}
}

// Format renders the equations of s, one row per line.
func Format(s System) string {
	var sb strings.Builder
	size := s.Size()
	rhs := s.RHS()

	fmt.Fprintf(&sb, "Circuit Equations (%dx%d):\n", size, size)
	for i := 1; i <= size; i++ {
		fmt.Fprintf(&sb, "  [%d]", i)
		rowHasElements := false
		for j := 1; j <= size; j++ {
			if v := s.At(i, j); v != 0 {
				fmt.Fprintf(&sb, " %+g*x%d", v, j)
				rowHasElements = true
			}
		}
		if !rowHasElements {
			sb.WriteString(" 0")
		}
		fmt.Fprintf(&sb, " = %g\n", rhs[i])
	}

	return sb.String()
}
