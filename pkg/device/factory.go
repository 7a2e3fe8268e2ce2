package device

// New creates an unconnected element of the given kind with the default
// value a freshly placed schematic part gets.
func New(kind Kind, name string) Device {
	switch kind {
	case KindResistor:
		return NewResistor(name, 1000.0)
	case KindCapacitor:
		return NewCapacitor(name, 1e-6)
	case KindInductor:
		return NewInductor(name, 1e-6)
	case KindVoltageSource:
		return NewDCVoltageSource(name, 5.0)
	case KindCurrentSource:
		return NewDCCurrentSource(name, 1e-3)
	case KindGround:
		return NewGround(name)
	case KindDiode:
		return NewDiode(name, "")
	case KindNMOS:
		return NewMosfet(name, "", false)
	case KindPMOS:
		return NewMosfet(name, "", true)
	case KindOpAmp:
		return NewOpAmp(name, 0)
	case KindBJT:
		return NewBjt(name, "", false)
	}
	return nil
}
