package analysis

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/mini-spice/pkg/circuit"
	"github.com/edp1096/mini-spice/pkg/device"
)

// DCSweep solves the operating point once per value of an independent
// source. The source is restored when the sweep ends.
type DCSweep struct {
	BaseAnalysis
	sourceName string
	start      float64
	stop       float64
	increment  float64

	sweepVals []float64
	solutions [][]float64 // node voltages per sweep value
}

func NewDCSweep(source string, start, stop, increment float64, opts ...Option) *DCSweep {
	return &DCSweep{
		BaseAnalysis: newBaseAnalysis(opts...),
		sourceName:   source,
		start:        start,
		stop:         stop,
		increment:    increment,
	}
}

func (dc *DCSweep) Setup(ckt *circuit.Circuit) error {
	if dc.increment == 0 || (dc.stop-dc.start)*dc.increment < 0 {
		return fmt.Errorf("%w: sweep %g to %g by %g", ErrInvalidParams, dc.start, dc.stop, dc.increment)
	}
	if ckt != nil {
		if _, err := findSource(ckt, dc.sourceName); err != nil {
			return err
		}
	}
	if err := dc.BaseAnalysis.Setup(ckt); err != nil {
		return err
	}

	n := int(math.Floor((dc.stop-dc.start)/dc.increment+1e-9)) + 1
	dc.sweepVals = make([]float64, n)
	for i := range dc.sweepVals {
		dc.sweepVals[i] = dc.start + float64(i)*dc.increment
	}
	dc.solutions = nil
	return nil
}

// sweepable is an independent source whose waveform a sweep may replace.
type sweepable interface {
	device.Device
	SetValue(value float64)
}

func findSource(ckt *circuit.Circuit, name string) (sweepable, error) {
	dev, ok := ckt.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	switch dev.(type) {
	case *device.VoltageSource, *device.CurrentSource:
		return dev.(sweepable), nil
	}
	return nil, fmt.Errorf("%w: %s is a %s", ErrUnknownSource, name, dev.Kind())
}

func (dc *DCSweep) Execute() error {
	if dc.Circuit == nil {
		return ErrNoCircuit
	}

	src, err := findSource(dc.Circuit, dc.sourceName)
	if err != nil {
		return err
	}
	defer restoreSource(src, snapshotSource(src))

	for _, val := range dc.sweepVals {
		src.SetValue(val)

		x, err := dc.assembleAndSolve(dc.status(device.OperatingPointAnalysis))
		if err != nil {
			return fmt.Errorf("%s=%g: %w", dc.sourceName, val, err)
		}

		dc.solutions = append(dc.solutions, dc.voltages(x))
		dc.storeResult("SWEEP1", val, x)
	}

	dc.log.WithFields(logrus.Fields{"source": dc.sourceName, "points": len(dc.solutions)}).Info("dc sweep finished")
	return nil
}

func snapshotSource(src sweepable) device.Waveform {
	switch s := src.(type) {
	case *device.VoltageSource:
		return s.Wave
	case *device.CurrentSource:
		return s.Wave
	}
	return device.Waveform{}
}

func restoreSource(src sweepable, wave device.Waveform) {
	switch s := src.(type) {
	case *device.VoltageSource:
		s.Wave, s.Value = wave, wave.At(0)
	case *device.CurrentSource:
		s.Wave, s.Value = wave, wave.At(0)
	}
}

func (dc *DCSweep) SourceName() string { return dc.sourceName }

// Values are the swept source values, one per completed solution.
func (dc *DCSweep) Values() []float64 { return dc.sweepVals[:len(dc.solutions)] }

// Solutions holds node voltages indexed by node id for every sweep value.
func (dc *DCSweep) Solutions() [][]float64 { return dc.solutions }

func (dc *DCSweep) NodeVoltageHistory(node int) []float64 {
	history := make([]float64, len(dc.solutions))
	if node <= 0 || node >= dc.numNodes {
		return history
	}
	for i, v := range dc.solutions {
		history[i] = v[node]
	}
	return history
}
