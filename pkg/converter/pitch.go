package converter

import (
	"math"
	"strconv"
)

// Frequency returns the equal-tempered frequency of a MIDI note in Hz,
// referenced to A4 (note 69) = 440 Hz. Any integer is accepted.
func Frequency(note int) float64 {
	return 440.0 * math.Pow(2, float64(note-69)/12)
}

// RoundedFrequency returns Frequency rounded to 2 decimal places
func RoundedFrequency(note int) float64 {
	return round(Frequency(note), 2)
}

// round rounds x to the given number of decimal places using the exact
// decimal value of x, so 2.675 (stored as 2.67499...) rounds down.
func round(x float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}
