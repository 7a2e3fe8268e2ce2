package util

import (
	"regexp"
	"strconv"
	"strings"
)

var valuePattern = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)([a-zA-Z]*)`)

var unitMap = map[byte]float64{
	't': 1e12,  // tera
	'g': 1e9,   // giga
	'k': 1e3,   // kilo
	'm': 1e-3,  // milli
	'u': 1e-6,  // micro
	'n': 1e-9,  // nano
	'p': 1e-12, // pico
	'f': 1e-15, // femto
}

// ParseValue reads an engineering-notation number: 1k -> 1000, 1meg -> 1e6, 10uF -> 1e-5.
// Letters after the scale suffix are units and are ignored. Text without a numeric
// prefix yields 0.
func ParseValue(val string) float64 {
	matches := valuePattern.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0
	}

	suffix := strings.ToLower(matches[2])
	if strings.HasPrefix(suffix, "meg") {
		return num * 1e6
	}
	if suffix != "" {
		if multiplier, ok := unitMap[suffix[0]]; ok {
			num *= multiplier
		}
	}

	return num
}

// IsValue reports whether s starts with a number ParseValue can read.
func IsValue(s string) bool {
	return valuePattern.MatchString(strings.TrimSpace(s))
}
