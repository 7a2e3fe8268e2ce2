package util

// BackwardEuler is the companion-model weight 1/dt of the first-order
// backward difference x' ~ (x_n - x_{n-1})/dt. A non-positive step yields 0.
func BackwardEuler(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return 1.0 / dt
}
