package matrix

// DeviceMatrix is the stamp target. Rows and columns are 1-based: row n is the
// KCL equation of node n, rows after the last node are branch equations.
// Index 0 is ground and is dropped, as is anything past the matrix size.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
}
