// Package converter turns MIDI note data into a monophonic beep timeline
package converter

import "errors"

// DefaultTempo is the tempo in microseconds per quarter note used until the
// first tempo change (120 BPM)
const DefaultTempo uint32 = 500000

// Sentinel errors, wrapped with context by the functions that return them
var (
	ErrDecode        = errors.New("invalid MIDI data")
	ErrInvalidTempo  = errors.New("invalid tempo")
	ErrInvalidSpeed  = errors.New("speed must be positive")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Kind identifies the messages the timeline extraction cares about
type Kind int

const (
	KindOther Kind = iota
	KindNoteOn
	KindNoteOff
	KindTempo
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note_on"
	case KindNoteOff:
		return "note_off"
	case KindTempo:
		return "set_tempo"
	default:
		return "other"
	}
}

// Event is a decoded MIDI message without timing information
type Event struct {
	Kind       Kind
	Channel    uint8 // only meaningful when HasChannel is set
	HasChannel bool
	Note       uint8
	Velocity   uint8
	Tempo      uint32 // microseconds per quarter note (KindTempo)
}

// IsNoteStart reports whether the event starts a note
func (e Event) IsNoteStart() bool {
	return e.Kind == KindNoteOn && e.Velocity > 0
}

// IsNoteEnd reports whether the event releases a note. A note-on with zero
// velocity counts as a release.
func (e Event) IsNoteEnd() bool {
	return e.Kind == KindNoteOff || (e.Kind == KindNoteOn && e.Velocity == 0)
}

// Message is an Event together with its track-relative delta time
type Message struct {
	Delta uint32
	Event
}

// Track is an ordered list of messages from one MIDI track
type Track []Message

// Song is the decoded content of a MIDI file
type Song struct {
	TicksPerBeat int
	Tracks       []Track
}

// RawEvent is an Event placed at an absolute tick
type RawEvent struct {
	Tick int64
	Event
}

// TimedEvent is a RawEvent with its resolved time in seconds
type TimedEvent struct {
	RawEvent
	Time float64
}

// Entry is one step of the timeline: either a tone or a rest
type Entry struct {
	Rest      bool    `json:"rest"`
	Note      int     `json:"note,omitempty"`
	Frequency float64 `json:"frequency,omitempty"` // Hz, rounded to 2 decimals
	Duration  float64 `json:"duration"`            // seconds, rounded to 6 decimals
}

// Timeline is the ordered monophonic result of an extraction
type Timeline struct {
	Entries      []Entry
	TicksPerBeat int
}

// Len returns the number of entries
func (t *Timeline) Len() int {
	return len(t.Entries)
}

// Pitched returns the number of tone entries
func (t *Timeline) Pitched() int {
	n := 0
	for _, e := range t.Entries {
		if !e.Rest {
			n++
		}
	}
	return n
}

// Rests returns the number of rest entries
func (t *Timeline) Rests() int {
	return t.Len() - t.Pitched()
}

// Duration returns the summed duration of all entries in seconds
func (t *Timeline) Duration() float64 {
	var d float64
	for _, e := range t.Entries {
		d += e.Duration
	}
	return d
}

// Renderer turns a timeline into a textual command sequence
type Renderer interface {
	Name() string
	Description() string
	Extension() string
	Render(entries []Entry, timeScale float64) string
}

// Converter extracts timelines from MIDI data and renders them
type Converter struct {
	renderer Renderer
}

// New creates a new Converter with the specified renderer
func New(renderer Renderer) *Converter {
	return &Converter{renderer: renderer}
}

// GetRenderer returns the current renderer
func (c *Converter) GetRenderer() Renderer {
	return c.renderer
}

// SetRenderer sets the renderer used for output
func (c *Converter) SetRenderer(renderer Renderer) {
	c.renderer = renderer
}
