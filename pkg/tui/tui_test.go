package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/midi2beep/pkg/converter"
	"github.com/james-see/midi2beep/pkg/converter/renderers"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func writeMelody(t *testing.T) string {
	t.Helper()
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 69, 100))
	tr.Add(480, midi.NoteOff(0, 69))
	tr.Add(480, midi.NoteOn(0, 72, 100))
	tr.Add(240, midi.NoteOff(0, 72))
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	if err := s.Add(tr); err != nil {
		t.Fatalf("failed to add track: %v", err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("failed to write MIDI: %v", err)
	}

	path := filepath.Join(t.TempDir(), "tune.mid")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestDefaultMenu(t *testing.T) {
	menu := defaultMenu()
	if got, want := len(menu), len(renderers.All())+3; got != want {
		t.Fatalf("len(menu) = %d, want %d", got, want)
	}
	if menu[0].Renderer == nil || menu[0].Renderer.Name() != "single" {
		t.Errorf("first item should render single line")
	}
	if menu[len(menu)-1].Action != ActionExit {
		t.Errorf("last item action = %v, want ActionExit", menu[len(menu)-1].Action)
	}
}

func TestUpdateMenuNavigation(t *testing.T) {
	m := New()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := next.(Model).menuIndex; got != 0 {
		t.Errorf("menuIndex after up = %d, want 0", got)
	}

	for i := 0; i < 20; i++ {
		next, _ = next.(Model).Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if got, want := next.(Model).menuIndex, len(m.menu)-1; got != want {
		t.Errorf("menuIndex after down = %d, want %d", got, want)
	}

	_, cmd := next.(Model).Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on Exit should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("enter on Exit did not quit")
	}
}

func TestUpdateMenuSettings(t *testing.T) {
	var model tea.Model = New()
	for _, k := range []string{"m", "r", "]", "]", "[", "+"} {
		model, _ = model.Update(runes(k))
	}
	m := model.(Model)

	if !m.opts.Merge {
		t.Error("merge not toggled")
	}
	if m.opts.Ordering != converter.OrderChannelReverse {
		t.Errorf("ordering = %v, want reverse", m.opts.Ordering)
	}
	if m.opts.Channel != 1 {
		t.Errorf("channel = %d, want 1", m.opts.Channel)
	}
	if m.speed != 1.25 {
		t.Errorf("speed = %v, want 1.25", m.speed)
	}

	model, _ = m.Update(runes("["))
	model, _ = model.Update(runes("["))
	if got := model.(Model).opts.Channel; got != 15 {
		t.Errorf("channel wrap = %d, want 15", got)
	}
}

func TestUpdateMenuOrdering(t *testing.T) {
	tests := []struct {
		keys []string
		want converter.OrderingPolicy
	}{
		{nil, converter.OrderChannelPriority},
		{[]string{"r"}, converter.OrderChannelReverse},
		{[]string{"o"}, converter.OrderLegacy},
		{[]string{"o", "r"}, converter.OrderLegacyReverse},
		{[]string{"r", "o"}, converter.OrderLegacyReverse},
		{[]string{"o", "r", "o"}, converter.OrderChannelReverse},
		{[]string{"r", "r"}, converter.OrderChannelPriority},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.keys, "+"), func(t *testing.T) {
			var model tea.Model = New()
			for _, k := range tt.keys {
				model, _ = model.Update(runes(k))
			}
			m := model.(Model)
			if m.opts.Ordering != tt.want {
				t.Errorf("ordering = %v, want %v", m.opts.Ordering, tt.want)
			}
			if !strings.Contains(m.settings(), tt.want.String()+" ordering") {
				t.Errorf("settings() = %q, want %s ordering", m.settings(), tt.want)
			}
		})
	}
}

func TestUpdateMenuSelect(t *testing.T) {
	next, cmd := New().Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := next.(Model)
	if m.state != StateFilePicker {
		t.Errorf("state = %v, want StateFilePicker", m.state)
	}
	if m.conversion.Renderer == nil || m.conversion.Renderer.Name() != "single" {
		t.Errorf("conversion = %+v, want single renderer", m.conversion)
	}
	if cmd == nil {
		t.Error("expected file picker init command")
	}

	back, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := back.(Model).state; got != StateMenu {
		t.Errorf("state after esc = %v, want StateMenu", got)
	}
}

func TestConversionDone(t *testing.T) {
	m := New()
	m.state = StateConverting

	tl := &converter.Timeline{Entries: []converter.Entry{{Note: 69, Frequency: 440, Duration: 0.5}}}
	next, _ := m.Update(conversionDoneMsg{outputFile: "tune_beep.txt", snippet: "beep", timeline: tl})
	got := next.(Model)
	if got.state != StateResult {
		t.Fatalf("state = %v, want StateResult", got.state)
	}
	view := got.View()
	for _, want := range []string{"tune_beep.txt", "Conversion complete", "Notes:  1"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	reset, _ := got.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if r := reset.(Model); r.state != StateMenu || r.timeline != nil || r.outputFile != "" {
		t.Errorf("result not cleared: %+v", r)
	}
}

func TestConvert(t *testing.T) {
	input := writeMelody(t)
	menu := defaultMenu()

	tests := []struct {
		name     string
		item     MenuItem
		wantFile string
		wantText string
	}{
		{"single", menu[0], "tune_beep.txt", "beep -n -f 440.0 -l 500.0 -D 500.0 -n -f 523.25 -l 250.0"},
		{"mono midi", MenuItem{Action: ActionMono}, "tune_beep.mid", ""},
		{"piano roll", MenuItem{Action: ActionPreview}, "tune_beep.png", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := convert(tt.item, input, converter.DefaultOptions(), 1.0)
			if msg.err != nil {
				t.Fatalf("convert() error = %v", msg.err)
			}
			if filepath.Base(msg.outputFile) != tt.wantFile {
				t.Errorf("outputFile = %s, want %s", msg.outputFile, tt.wantFile)
			}
			if msg.timeline == nil || msg.timeline.Pitched() != 2 {
				t.Errorf("timeline = %+v, want 2 notes", msg.timeline)
			}
			data, err := os.ReadFile(msg.outputFile)
			if err != nil {
				t.Fatalf("output not written: %v", err)
			}
			if tt.wantText != "" && string(data) != tt.wantText {
				t.Errorf("output = %q, want %q", data, tt.wantText)
			}
			if tt.wantText != "" && msg.snippet != tt.wantText {
				t.Errorf("snippet = %q, want %q", msg.snippet, tt.wantText)
			}
		})
	}
}

func TestConvertMissingFile(t *testing.T) {
	msg := convert(defaultMenu()[0], filepath.Join(t.TempDir(), "missing.mid"), converter.DefaultOptions(), 1.0)
	if msg.err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSnippet(t *testing.T) {
	long := strings.Repeat("x", snippetWidth+10)
	if got := snippet(long); len([]rune(got)) != snippetWidth {
		t.Errorf("clipped width = %d, want %d", len([]rune(got)), snippetWidth)
	}

	lines := strings.Repeat("a\n", snippetLines+3)
	got := strings.Split(snippet(lines), "\n")
	if len(got) != snippetLines+1 || got[snippetLines] != "…" {
		t.Errorf("snippet lines = %q", got)
	}
}
