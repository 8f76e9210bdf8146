package renderers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/james-see/midi2beep/pkg/converter"
)

// DefaultFormat is used when no export format is given
const DefaultFormat = "single"

// All returns every available renderer in display order
func All() []converter.Renderer {
	return []converter.Renderer{
		NewSingleLine(),
		NewMultiLine(ContinuationPOSIX),
		NewMultiLine(ContinuationWindows),
		NewArduino(),
		NewArduinoArrays(),
	}
}

// Names returns the names of all renderers
func Names() []string {
	all := All()
	names := make([]string, 0, len(all))
	for _, r := range all {
		names = append(names, r.Name())
	}
	return names
}

// Lookup returns the renderer with the given name. An empty name selects
// the default format.
func Lookup(name string) (converter.Renderer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultFormat
	}
	// names used by the desktop tool
	switch name {
	case "single_line":
		name = "single"
	case "multi_line_linux":
		name = "linux"
	case "multi_line_windows":
		name = "windows"
	case "arduino_sequential":
		name = "arduino"
	case "arduino_arrays":
		name = "arduino-arrays"
	}

	for _, r := range All() {
		if r.Name() == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", converter.ErrUnknownFormat, name, strings.Join(Names(), ", "))
}

// ForOutput picks a renderer from an output file name. It returns false when
// the extension does not identify a format.
func ForOutput(filename string) (converter.Renderer, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ino", ".cpp":
		return NewArduino(), true
	case ".sh":
		return NewMultiLine(ContinuationPOSIX), true
	case ".bat", ".cmd":
		return NewMultiLine(ContinuationWindows), true
	default:
		return nil, false
	}
}
