package converter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDIConverter handles MIDI file parsing and monophonic MIDI generation
type MIDIConverter struct {
	ticksPerQuarter uint16
	tempo           uint32
	channel         uint8
	velocity        uint8
}

// NewMIDIConverter creates a new MIDI converter
func NewMIDIConverter() *MIDIConverter {
	return &MIDIConverter{
		ticksPerQuarter: 480,
		tempo:           DefaultTempo,
		channel:         0,
		velocity:        100,
	}
}

// DecodeMIDI decodes MIDI data with the default converter settings
func DecodeMIDI(data []byte) (*Song, error) {
	return NewMIDIConverter().ParseMIDI(data)
}

// ParseMIDIFile reads a MIDI file and decodes its tracks
func (m *MIDIConverter) ParseMIDIFile(filename string) (*Song, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return m.ParseMIDI(data)
}

// ParseMIDI decodes MIDI data into per-track delta-timed messages
func (m *MIDIConverter) ParseMIDI(data []byte) (*Song, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported time format %v", ErrDecode, s.TimeFormat)
	}

	song := &Song{
		TicksPerBeat: int(mt.Resolution()),
		Tracks:       make([]Track, 0, len(s.Tracks)),
	}
	for _, track := range s.Tracks {
		t := make(Track, 0, len(track))
		for _, ev := range track {
			t = append(t, Message{Delta: ev.Delta, Event: decodeEvent(ev.Message)})
		}
		song.Tracks = append(song.Tracks, t)
	}
	return song, nil
}

// decodeEvent inspects the raw message bytes.
// Tempo meta: FF 51 03 tt tt tt
// Note On: 9n kk vv, Note Off: 8n kk vv
func decodeEvent(msg []byte) Event {
	if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
		return Event{
			Kind:  KindTempo,
			Tempo: uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5]),
		}
	}
	if len(msg) == 0 {
		return Event{Kind: KindOther}
	}

	status := msg[0]
	if status < 0x80 || status > 0xEF {
		// meta and sysex messages carry no channel
		return Event{Kind: KindOther}
	}

	ev := Event{Kind: KindOther, Channel: status & 0x0F, HasChannel: true}
	if len(msg) >= 3 {
		switch status & 0xF0 {
		case 0x90:
			ev.Kind = KindNoteOn
			ev.Note, ev.Velocity = msg[1], msg[2]
		case 0x80:
			ev.Kind = KindNoteOff
			ev.Note, ev.Velocity = msg[1], msg[2]
		}
	}
	return ev
}

// GenerateMIDI writes a timeline as a single-track monophonic MIDI file.
// Rests become gaps between notes.
func (m *MIDIConverter) GenerateMIDI(tl *Timeline) ([]byte, error) {
	if tl == nil {
		return nil, errors.New("nil timeline")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track

	tempoData := smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(m.tempo >> 16),
		byte(m.tempo >> 8),
		byte(m.tempo),
	})
	track.Add(0, tempoData)

	var pending uint32
	for _, e := range tl.Entries {
		ticks := m.secondsToTicks(e.Duration)
		if e.Rest {
			pending += ticks
			continue
		}
		if e.Note < 0 || e.Note > 127 {
			return nil, fmt.Errorf("note %d out of MIDI range", e.Note)
		}
		key := uint8(e.Note)
		track.Add(pending, midi.NoteOn(m.channel, key, m.velocity))
		track.Add(ticks, midi.NoteOff(m.channel, key))
		pending = 0
	}

	track.Close(pending)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

func (m *MIDIConverter) secondsToTicks(seconds float64) uint32 {
	beats := seconds * 1e6 / float64(m.tempo)
	return uint32(math.Round(beats * float64(m.ticksPerQuarter)))
}

// WriteMIDIFile writes a timeline to a MIDI file
func (m *MIDIConverter) WriteMIDIFile(tl *Timeline, filename string) error {
	data, err := m.GenerateMIDI(tl)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
