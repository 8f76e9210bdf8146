package converter

import (
	"errors"
	"reflect"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
		want Event
	}{
		{"tempo", []byte{0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}, Event{Kind: KindTempo, Tempo: 500000}},
		{"note on", []byte{0x93, 60, 100}, Event{Kind: KindNoteOn, Channel: 3, HasChannel: true, Note: 60, Velocity: 100}},
		{"note on zero velocity", []byte{0x90, 61, 0}, Event{Kind: KindNoteOn, HasChannel: true, Note: 61}},
		{"note off", []byte{0x8F, 62, 64}, Event{Kind: KindNoteOff, Channel: 15, HasChannel: true, Note: 62, Velocity: 64}},
		{"control change", []byte{0xB2, 7, 100}, Event{Kind: KindOther, Channel: 2, HasChannel: true}},
		{"program change", []byte{0xC1, 5}, Event{Kind: KindOther, Channel: 1, HasChannel: true}},
		{"end of track", []byte{0xFF, 0x2F, 0x00}, Event{Kind: KindOther}},
		{"sysex", []byte{0xF0, 0x7E, 0xF7}, Event{Kind: KindOther}},
		{"empty", nil, Event{Kind: KindOther}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeEvent(tt.msg); got != tt.want {
				t.Errorf("decodeEvent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMIDI(t *testing.T) {
	var conductor smf.Track
	conductor.Add(0, smf.Message([]byte{0xFF, 0x51, 0x03, 0x0F, 0x42, 0x40}))

	var melody smf.Track
	melody.Add(0, midi.NoteOn(1, 69, 100))
	melody.Add(480, midi.NoteOff(1, 69))

	data := buildMIDI(t, conductor, melody)

	song, err := NewMIDIConverter().ParseMIDI(data)
	if err != nil {
		t.Fatalf("ParseMIDI() error = %v", err)
	}
	if song.TicksPerBeat != 480 {
		t.Errorf("TicksPerBeat = %d, want 480", song.TicksPerBeat)
	}
	if len(song.Tracks) != 2 {
		t.Fatalf("len(Tracks) = %d, want 2", len(song.Tracks))
	}
	if song.Tracks[0][0].Kind != KindTempo || song.Tracks[0][0].Tempo != 1000000 {
		t.Errorf("first conductor event = %+v, want tempo 1000000", song.Tracks[0][0])
	}

	got := mustExtract(t, song, Options{Channel: 1})
	want := []Entry{note(69, 1.0)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}
}

func TestParseMIDIInvalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("MThd garbage"), []byte("RIFF")} {
		if _, err := DecodeMIDI(data); !errors.Is(err, ErrDecode) {
			t.Errorf("DecodeMIDI(%q) error = %v, want ErrDecode", data, err)
		}
	}
}

func TestGenerateMIDIRoundTrip(t *testing.T) {
	tl := &Timeline{Entries: []Entry{
		rest(0.25),
		note(69, 0.5),
		rest(0.5),
		note(72, 0.25),
	}}

	m := NewMIDIConverter()
	data, err := m.GenerateMIDI(tl)
	if err != nil {
		t.Fatalf("GenerateMIDI() error = %v", err)
	}

	song, err := m.ParseMIDI(data)
	if err != nil {
		t.Fatalf("ParseMIDI() error = %v", err)
	}

	got := mustExtract(t, song, DefaultOptions())
	if !reflect.DeepEqual(got, tl.Entries) {
		t.Errorf("round trip = %+v, want %+v", got, tl.Entries)
	}
}

func TestGenerateMIDIErrors(t *testing.T) {
	m := NewMIDIConverter()
	if _, err := m.GenerateMIDI(nil); err == nil {
		t.Error("GenerateMIDI(nil) should fail")
	}
	if _, err := m.GenerateMIDI(&Timeline{Entries: []Entry{{Note: 200, Duration: 1}}}); err == nil {
		t.Error("GenerateMIDI() with note 200 should fail")
	}
}
