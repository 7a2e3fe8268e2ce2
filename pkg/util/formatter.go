package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1e9:
		return fmt.Sprintf("%.3f G%s", value*1e-9, unit)
	case absValue >= 1e6:
		return fmt.Sprintf("%.3f M%s", value*1e-6, unit)
	case absValue >= 1e3:
		return fmt.Sprintf("%.3f k%s", value*1e-3, unit)
	case absValue >= 1 || absValue == 0:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

var spiceSuffixes = []struct {
	scale  float64
	suffix string
}{
	{1e12, "t"},
	{1e9, "g"},
	{1e6, "meg"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
	{1e-15, "f"},
}

// FormatValue writes value in SPICE engineering notation (1k, 4.7u, 2meg)
// with up to 6 significant digits, so that the netlist value parser reads it back.
func FormatValue(value float64) string {
	if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'g', 6, 64)
	}

	absValue := math.Abs(value)
	for _, s := range spiceSuffixes {
		if absValue >= s.scale*(1-1e-9) {
			scaled := strconv.FormatFloat(value/s.scale, 'g', 6, 64)
			if strings.ContainsAny(scaled, "eE") {
				break
			}
			return scaled + s.suffix
		}
	}

	return strconv.FormatFloat(value, 'g', 6, 64)
}
