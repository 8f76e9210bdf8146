package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format represents an input file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatUnknown Format = "unknown"
)

// Options controls which events reach the reducer and how ties are ordered
type Options struct {
	Channel  uint8 // target channel, ignored when Merge is set
	Merge    bool  // merge all channels instead of filtering
	Ordering OrderingPolicy
}

// DefaultOptions returns channel 0, no merge, channel-priority ordering
func DefaultOptions() Options {
	return Options{Channel: 0, Ordering: OrderChannelPriority}
}

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mid", ".midi", ".smf":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) >= 4 && string(data[:4]) == "MThd" {
		return FormatMIDI
	}
	return FormatUnknown
}

// TimeScale converts a speed factor to milliseconds per second of duration
func TimeScale(speed float64) (float64, error) {
	if speed <= 0 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidSpeed, speed)
	}
	return 1000 * speed, nil
}

// Extract runs the full pipeline on a decoded song: merge, resolve times,
// filter channels, reduce. Zero-duration entries are dropped.
func Extract(song *Song, opts Options) (*Timeline, error) {
	if song == nil {
		return nil, fmt.Errorf("%w: nil song", ErrDecode)
	}

	merged := Merge(song.Tracks, opts.Ordering)
	timed, end, err := Annotate(merged, song.TicksPerBeat)
	if err != nil {
		return nil, err
	}
	if !opts.Merge {
		timed = FilterChannel(timed, opts.Channel)
	}

	entries := Reduce(timed, end)
	kept := entries[:0]
	for _, e := range entries {
		if e.Duration == 0 {
			continue
		}
		kept = append(kept, e)
	}

	return &Timeline{Entries: kept, TicksPerBeat: song.TicksPerBeat}, nil
}

// Extract decodes MIDI data and extracts its timeline
func (c *Converter) Extract(midiData []byte, opts Options) (*Timeline, error) {
	song, err := DecodeMIDI(midiData)
	if err != nil {
		return nil, err
	}
	return Extract(song, opts)
}

// Convert decodes MIDI data, extracts the timeline and renders it
func (c *Converter) Convert(midiData []byte, opts Options, speed float64) (string, *Timeline, error) {
	if c.renderer == nil {
		return "", nil, errors.New("no renderer configured")
	}
	scale, err := TimeScale(speed)
	if err != nil {
		return "", nil, err
	}
	tl, err := c.Extract(midiData, opts)
	if err != nil {
		return "", nil, err
	}
	return c.renderer.Render(tl.Entries, scale), tl, nil
}

// ConvertFile converts a MIDI file and writes the rendered text to outputPath
func (c *Converter) ConvertFile(inputPath, outputPath string, opts Options, speed float64) (*Timeline, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	if DetectFormat(inputPath) == FormatUnknown && DetectFormatFromContent(data) != FormatMIDI {
		return nil, fmt.Errorf("%w: %s is not a MIDI file", ErrDecode, inputPath)
	}

	text, tl, err := c.Convert(data, opts, speed)
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}

	return tl, nil
}

// OutputPath suggests an output file name for an input file and extension
func OutputPath(input, ext string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_beep" + ext
}
