package matrix

import (
	"fmt"
	"math"

	"github.com/edp1096/sparse"
)

// SparseMatrix is the Markowitz-ordered sparse LU backend.
type SparseMatrix struct {
	size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	config   *sparse.Configuration
}

func NewSparse(size int) (*SparseMatrix, error) {
	config := &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	m := &SparseMatrix{
		size:     size,
		matrix:   mat,
		rhs:      make([]float64, size+1), // 1-based
		solution: make([]float64, size+1),
		config:   config,
	}
	m.setupElements()

	return m, nil
}

// setupElements pre-creates every entry so restamping never changes the structure.
func (m *SparseMatrix) setupElements() {
	for i := 1; i <= m.size; i++ {
		for j := 1; j <= m.size; j++ {
			m.matrix.GetElement(int64(i), int64(j))
		}
	}
}

func (m *SparseMatrix) Size() int { return m.size }

func (m *SparseMatrix) inRange(i int) bool { return i > 0 && i <= m.size }

func (m *SparseMatrix) AddElement(i, j int, value float64) {
	if !m.inRange(i) || !m.inRange(j) {
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (m *SparseMatrix) AddRHS(i int, value float64) {
	if !m.inRange(i) {
		return
	}
	m.rhs[i] += value
}

func (m *SparseMatrix) At(i, j int) float64 {
	if !m.inRange(i) || !m.inRange(j) {
		return 0
	}
	return m.matrix.GetElement(int64(i), int64(j)).Real
}

func (m *SparseMatrix) RHS() []float64 { return m.rhs }

func (m *SparseMatrix) Solution() []float64 { return m.solution }

func (m *SparseMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

func (m *SparseMatrix) Solve() error {
	if m.size == 0 {
		return nil
	}

	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}

	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}
	for i := 1; i <= m.size; i++ {
		if math.IsNaN(solution[i]) || math.IsInf(solution[i], 0) {
			return fmt.Errorf("%w: non-finite solution at row %d", ErrSingular, i)
		}
	}

	m.solution = solution
	m.solution[0] = 0
	return nil
}

func (m *SparseMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
}
