package renderers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/james-see/midi2beep/pkg/converter"
)

const (
	buzzerPin     = 8
	valuesPerLine = 10
)

var sketchHeader = []string{
	"// Connect buzzer to pin 8 (or change BUZZER_PIN)",
	"",
	fmt.Sprintf("#define BUZZER_PIN %d", buzzerPin),
	"",
}

var sketchSetup = []string{
	"void setup() {",
	"  pinMode(BUZZER_PIN, OUTPUT);",
	"}",
	"",
	"void loop() {",
	"  playMelody();",
	"  delay(2000); // Wait 2 seconds before repeating",
	"}",
	"",
}

// Arduino renders a sketch calling tone/delay once per entry
type Arduino struct{}

// NewArduino creates a sequential Arduino sketch renderer
func NewArduino() *Arduino {
	return &Arduino{}
}

// Name returns the renderer name
func (a *Arduino) Name() string {
	return "arduino"
}

// Description returns a short human readable description
func (a *Arduino) Description() string {
	return "Arduino sequential code"
}

// Extension returns the suggested output file extension
func (a *Arduino) Extension() string {
	return ".ino"
}

// Render renders the timeline as a sequential Arduino sketch
func (a *Arduino) Render(entries []converter.Entry, timeScale float64) string {
	code := []string{"// Generated Arduino beep code"}
	code = append(code, sketchHeader...)
	code = append(code, sketchSetup...)
	code = append(code, "void playMelody() {")

	for _, e := range entries {
		ms, ok := millis(e, timeScale)
		if !ok {
			continue
		}
		if e.Rest {
			code = append(code, fmt.Sprintf("  delay(%d);", ms))
			continue
		}
		code = append(code,
			fmt.Sprintf("  tone(BUZZER_PIN, %d, %d);", int(e.Frequency), ms),
			fmt.Sprintf("  delay(%d);", ms),
			"  noTone(BUZZER_PIN);",
		)
	}

	code = append(code, "}")
	return strings.Join(code, "\n")
}

// ArduinoArrays renders a sketch with parallel frequency and duration arrays
type ArduinoArrays struct{}

// NewArduinoArrays creates an array based Arduino sketch renderer
func NewArduinoArrays() *ArduinoArrays {
	return &ArduinoArrays{}
}

// Name returns the renderer name
func (a *ArduinoArrays) Name() string {
	return "arduino-arrays"
}

// Description returns a short human readable description
func (a *ArduinoArrays) Description() string {
	return "Arduino code using arrays"
}

// Extension returns the suggested output file extension
func (a *ArduinoArrays) Extension() string {
	return ".ino"
}

// Render renders the timeline as arrays played back by a loop. Rests are
// encoded as frequency 0.
func (a *ArduinoArrays) Render(entries []converter.Entry, timeScale float64) string {
	var frequencies, durations []int
	for _, e := range entries {
		ms, ok := millis(e, timeScale)
		if !ok {
			continue
		}
		if e.Rest {
			frequencies = append(frequencies, 0)
		} else {
			frequencies = append(frequencies, int(e.Frequency))
		}
		durations = append(durations, ms)
	}

	code := []string{"// Generated Arduino beep code with arrays"}
	code = append(code, sketchHeader...)
	code = append(code, "int frequencies[] = {")
	code = append(code, arrayLines(frequencies)...)
	code = append(code, "};", "")
	code = append(code, "int durations[] = {")
	code = append(code, arrayLines(durations)...)
	code = append(code, "};", "")
	code = append(code, fmt.Sprintf("int noteCount = %d;", len(frequencies)), "")
	code = append(code, sketchSetup...)
	code = append(code,
		"void playMelody() {",
		"  for (int i = 0; i < noteCount; i++) {",
		"    if (frequencies[i] == 0) {",
		"      delay(durations[i]);",
		"    } else {",
		"      tone(BUZZER_PIN, frequencies[i], durations[i]);",
		"      delay(durations[i]);",
		"      noTone(BUZZER_PIN);",
		"    }",
		"  }",
		"}",
	)
	return strings.Join(code, "\n")
}

// millis returns the entry duration in whole milliseconds. Entries that
// truncate to 0 ms are skipped: tone() treats 0 as "play until noTone".
func millis(e converter.Entry, timeScale float64) (int, bool) {
	ms := int(e.Duration * timeScale)
	return ms, ms > 0
}

func arrayLines(values []int) []string {
	var lines []string
	for i := 0; i < len(values); i += valuesPerLine {
		end := min(i+valuesPerLine, len(values))
		strs := make([]string, 0, end-i)
		for _, v := range values[i:end] {
			strs = append(strs, strconv.Itoa(v))
		}
		line := "  " + strings.Join(strs, ", ")
		if end < len(values) {
			line += ","
		}
		lines = append(lines, line)
	}
	return lines
}
