// Package renderers provides the text formats a timeline can be exported to
package renderers

import (
	"strconv"
	"strings"

	"github.com/james-see/midi2beep/pkg/converter"
)

// Continuation characters for multi-line shell output
const (
	ContinuationPOSIX   = "\\"
	ContinuationWindows = "^"
)

// SingleLine renders a one-line beep command
type SingleLine struct{}

// NewSingleLine creates a single-line beep renderer
func NewSingleLine() *SingleLine {
	return &SingleLine{}
}

// Name returns the renderer name
func (s *SingleLine) Name() string {
	return "single"
}

// Description returns a short human readable description
func (s *SingleLine) Description() string {
	return "Single line beep command"
}

// Extension returns the suggested output file extension
func (s *SingleLine) Extension() string {
	return ".txt"
}

// Render renders the timeline as `beep -n -f <hz> -l <ms> -D <ms> ...`
func (s *SingleLine) Render(entries []converter.Entry, timeScale float64) string {
	parts := []string{"beep"}
	for _, e := range entries {
		if arg, ok := beepArgs(e, timeScale); ok {
			parts = append(parts, arg)
		}
	}
	return strings.Join(parts, " ")
}

// MultiLine renders one beep argument group per line joined by a shell
// line continuation
type MultiLine struct {
	continuation string
}

// NewMultiLine creates a multi-line renderer using the given continuation
func NewMultiLine(continuation string) *MultiLine {
	return &MultiLine{continuation: continuation}
}

// Name returns the renderer name
func (m *MultiLine) Name() string {
	if m.continuation == ContinuationWindows {
		return "windows"
	}
	return "linux"
}

// Description returns a short human readable description
func (m *MultiLine) Description() string {
	if m.continuation == ContinuationWindows {
		return "Multi-line with Windows continuation (^)"
	}
	return "Multi-line with Linux continuation (\\)"
}

// Extension returns the suggested output file extension
func (m *MultiLine) Extension() string {
	if m.continuation == ContinuationWindows {
		return ".bat"
	}
	return ".sh"
}

// Render renders the timeline with one entry per continued line
func (m *MultiLine) Render(entries []converter.Entry, timeScale float64) string {
	lines := []string{"beep " + m.continuation}
	for _, e := range entries {
		if arg, ok := beepArgs(e, timeScale); ok {
			lines = append(lines, "  "+arg+" "+m.continuation)
		}
	}

	last := len(lines) - 1
	lines[last] = strings.TrimRight(lines[last], " "+m.continuation)

	return strings.Join(lines, "\n")
}

// beepArgs returns the beep arguments for one entry, or false if the entry
// has no scaled duration
func beepArgs(e converter.Entry, timeScale float64) (string, bool) {
	d := e.Duration * timeScale
	if d == 0 {
		return "", false
	}
	if e.Rest {
		return "-D " + formatNumber(d), true
	}
	return "-n -f " + formatNumber(e.Frequency) + " -l " + formatNumber(d), true
}

// formatNumber prints the shortest decimal that round-trips, keeping a
// trailing ".0" on integral values (500 -> "500.0")
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
