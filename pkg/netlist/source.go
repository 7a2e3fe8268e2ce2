package netlist

import (
	"fmt"
	"strings"

	"github.com/edp1096/mini-spice/pkg/device"
	"github.com/edp1096/mini-spice/pkg/util"
)

var sourceSpacer = strings.NewReplacer("(", " ( ", ")", " ) ", ",", " ")

// parseWaveform reads the tail of a V or I line: "5", "DC 5", "DC 0 AC 1",
// "SIN(0 1 1k)", "PULSE(0 5 0 1n 1n 1m 2m)", "PWL(0 0 1m 5)".
func parseWaveform(tokens []string) (device.Waveform, error) {
	words := strings.Fields(sourceSpacer.Replace(strings.Join(tokens, " ")))
	wave := device.Waveform{Type: device.DC}

	for i := 0; i < len(words); {
		switch word := strings.ToLower(words[i]); word {
		case "dc":
			i++
			if i < len(words) && util.IsValue(words[i]) {
				wave.DC = util.ParseValue(words[i])
				i++
			}

		case "ac":
			// AC magnitude and phase are only meaningful to small-signal analysis.
			i++
			for n := 0; n < 2 && i < len(words) && util.IsValue(words[i]); n++ {
				i++
			}

		case "sin", "pulse", "pwl":
			var args []float64
			args, i = collectArgs(words, i+1)
			if err := setTransient(&wave, word, args); err != nil {
				return wave, err
			}

		case "(", ")":
			i++

		default:
			// Unreadable values become 0, like any other element value.
			wave.DC = util.ParseValue(word)
			i++
		}
	}

	return wave, nil
}

// collectArgs reads a parenthesized or bare list of values starting at i.
func collectArgs(words []string, i int) ([]float64, int) {
	var args []float64
	paren := i < len(words) && words[i] == "("
	if paren {
		i++
	}

	for ; i < len(words); i++ {
		if words[i] == ")" {
			if paren {
				i++
			}
			break
		}
		if !paren && !util.IsValue(words[i]) {
			break
		}
		args = append(args, util.ParseValue(words[i]))
	}

	return args, i
}

func setTransient(wave *device.Waveform, kind string, args []float64) error {
	switch kind {
	case "sin":
		if len(args) < 3 {
			return fmt.Errorf("%w: SIN needs offset, amplitude and frequency", ErrBadSource)
		}
		wave.Type = device.SIN
		wave.DC, wave.Amplitude, wave.Freq = args[0], args[1], args[2]
		if len(args) > 3 {
			wave.Phase = args[3]
		}

	case "pulse":
		if len(args) < 7 {
			return fmt.Errorf("%w: PULSE needs v1 v2 td tr tf pw per", ErrBadSource)
		}
		wave.Type = device.PULSE
		wave.V1, wave.V2 = args[0], args[1]
		wave.Delay, wave.Rise, wave.Fall = args[2], args[3], args[4]
		wave.PWidth, wave.Period = args[5], args[6]
		wave.DC = wave.V1

	case "pwl":
		if len(args) < 4 || len(args)%2 != 0 {
			return fmt.Errorf("%w: PWL needs time-value pairs", ErrBadSource)
		}
		wave.Type = device.PWL
		n := len(args) / 2
		wave.Times = make([]float64, n)
		wave.Values = make([]float64, n)
		for k := 0; k < n; k++ {
			wave.Times[k], wave.Values[k] = args[2*k], args[2*k+1]
			if k > 0 && wave.Times[k] <= wave.Times[k-1] {
				return fmt.Errorf("%w: PWL time points must be strictly increasing", ErrBadSource)
			}
		}
		wave.DC = wave.Values[0]
	}

	return nil
}
