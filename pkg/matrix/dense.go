package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DenseMatrix solves by Gaussian elimination with partial pivoting.
// Stamps accumulate into a gonum dense matrix; Solve works on a copy so the
// assembled system stays inspectable after a solve.
type DenseMatrix struct {
	size     int
	a        *mat.Dense
	rhs      []float64
	solution []float64
}

func NewDense(size int) *DenseMatrix {
	m := &DenseMatrix{
		size:     size,
		rhs:      make([]float64, size+1),
		solution: make([]float64, size+1),
	}
	if size > 0 {
		m.a = mat.NewDense(size, size, nil)
	}
	return m
}

func (m *DenseMatrix) Size() int { return m.size }

func (m *DenseMatrix) inRange(i int) bool { return i > 0 && i <= m.size }

func (m *DenseMatrix) AddElement(i, j int, value float64) {
	if !m.inRange(i) || !m.inRange(j) {
		return
	}
	m.a.Set(i-1, j-1, m.a.At(i-1, j-1)+value)
}

func (m *DenseMatrix) AddRHS(i int, value float64) {
	if !m.inRange(i) {
		return
	}
	m.rhs[i] += value
}

func (m *DenseMatrix) At(i, j int) float64 {
	if !m.inRange(i) || !m.inRange(j) {
		return 0
	}
	return m.a.At(i-1, j-1)
}

func (m *DenseMatrix) RHS() []float64 { return m.rhs }

func (m *DenseMatrix) Solution() []float64 { return m.solution }

func (m *DenseMatrix) Clear() {
	if m.a != nil {
		m.a.Zero()
	}
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

func (m *DenseMatrix) Solve() error {
	n := m.size
	if n == 0 {
		return nil
	}

	a := mat.DenseCopyOf(m.a)
	b := make([]float64, n)
	copy(b, m.rhs[1:])

	for k := 0; k < n; k++ {
		pivotRow := k
		pivotMag := math.Abs(a.At(k, k))
		for r := k + 1; r < n; r++ {
			if v := math.Abs(a.At(r, k)); v > pivotMag {
				pivotRow, pivotMag = r, v
			}
		}
		if !(pivotMag >= PivotThreshold) {
			return fmt.Errorf("%w: pivot %g at column %d", ErrSingular, pivotMag, k+1)
		}

		if pivotRow != k {
			for c := k; c < n; c++ {
				tmp := a.At(k, c)
				a.Set(k, c, a.At(pivotRow, c))
				a.Set(pivotRow, c, tmp)
			}
			b[k], b[pivotRow] = b[pivotRow], b[k]
		}

		pivot := a.At(k, k)
		for r := k + 1; r < n; r++ {
			factor := a.At(r, k) / pivot
			if factor == 0 {
				continue
			}
			for c := k; c < n; c++ {
				a.Set(r, c, a.At(r, c)-factor*a.At(k, c))
			}
			b[r] -= factor * b[k]
		}
	}

	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a.At(r, c) * x[c]
		}
		x[r] = sum / a.At(r, r)
		if math.IsNaN(x[r]) || math.IsInf(x[r], 0) {
			return fmt.Errorf("%w: non-finite solution at row %d", ErrSingular, r+1)
		}
	}

	m.solution[0] = 0
	copy(m.solution[1:], x)
	return nil
}

func (m *DenseMatrix) Destroy() {
	m.a = nil
}
