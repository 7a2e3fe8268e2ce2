package device

import "github.com/edp1096/mini-spice/pkg/matrix"

// stampConductance adds g between n1 and n2. Ground and unconnected pins
// only lose their row and column, so a grounded element stamps a single diagonal.
func stampConductance(m matrix.DeviceMatrix, n1, n2 int, g float64) {
	if n1 > 0 {
		m.AddElement(n1, n1, g)
		if n2 > 0 {
			m.AddElement(n1, n2, -g)
		}
	}
	if n2 > 0 {
		if n1 > 0 {
			m.AddElement(n2, n1, -g)
		}
		m.AddElement(n2, n2, g)
	}
}

// injectCurrent models a current i flowing out of node from and into node to.
func injectCurrent(m matrix.DeviceMatrix, to, from int, i float64) {
	if to > 0 {
		m.AddRHS(to, i)
	}
	if from > 0 {
		m.AddRHS(from, -i)
	}
}

// stampTransconductance adds a current g*(V(cp)-V(cn)) flowing from node out
// to node in, i.e. leaving out through the element.
func stampTransconductance(m matrix.DeviceMatrix, out, in, cp, cn int, g float64) {
	if out > 0 {
		if cp > 0 {
			m.AddElement(out, cp, g)
		}
		if cn > 0 {
			m.AddElement(out, cn, -g)
		}
	}
	if in > 0 {
		if cp > 0 {
			m.AddElement(in, cp, -g)
		}
		if cn > 0 {
			m.AddElement(in, cn, g)
		}
	}
}
