package analysis

import "github.com/edp1096/mini-spice/pkg/circuit"

// ACAnalysis records a small-signal request. Solving it is not supported.
type ACAnalysis struct {
	BaseAnalysis
	fStart    float64
	fStop     float64
	numPoints int
	pType     string // DEC, OCT, LIN
}

func NewAC(fStart, fStop float64, nPoints int, pType string, opts ...Option) *ACAnalysis {
	return &ACAnalysis{
		BaseAnalysis: newBaseAnalysis(opts...),
		fStart:       fStart,
		fStop:        fStop,
		numPoints:    nPoints,
		pType:        pType,
	}
}

func (ac *ACAnalysis) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return ErrNoCircuit
	}
	ac.Circuit = ckt
	return nil
}

func (ac *ACAnalysis) Execute() error {
	ac.log.WithField("sweep", ac.pType).Warn("ac analysis requested")
	return ErrNotImplemented
}
