package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/james-see/midi2beep/pkg/converter"
)

func TestPickRenderer(t *testing.T) {
	tests := []struct {
		export string
		output string
		want   string
	}{
		{"", "", "single"},
		{"", "song.sh", "linux"},
		{"", "song.bat", "windows"},
		{"", "song.ino", "arduino"},
		{"", "song.txt", "single"},
		{"arduino-arrays", "song.sh", "arduino-arrays"},
		{"windows", "", "windows"},
	}

	for _, tt := range tests {
		r, err := pickRenderer(tt.export, tt.output)
		if err != nil {
			t.Errorf("pickRenderer(%q, %q) error = %v", tt.export, tt.output, err)
			continue
		}
		if r.Name() != tt.want {
			t.Errorf("pickRenderer(%q, %q) = %s, want %s", tt.export, tt.output, r.Name(), tt.want)
		}
	}

	if _, err := pickRenderer("organ", ""); !errors.Is(err, converter.ErrUnknownFormat) {
		t.Errorf("pickRenderer(organ) error = %v, want ErrUnknownFormat", err)
	}
}

func TestBuildOptions(t *testing.T) {
	defer func() { channel, mergeAll, reverse, oldLogic = 0, false, false, false }()

	channel, mergeAll, reverse, oldLogic = 3, true, true, false
	opts, err := buildOptions()
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	want := converter.Options{Channel: 3, Merge: true, Ordering: converter.OrderChannelReverse}
	if opts != want {
		t.Errorf("buildOptions() = %+v, want %+v", opts, want)
	}

	channel = 16
	if _, err := buildOptions(); err == nil {
		t.Error("buildOptions() expected error for channel 16")
	}
}

func TestShouldCopy(t *testing.T) {
	tests := []struct {
		output string
		noCopy bool
		want   bool
	}{
		{"", false, true},
		{"", true, false},
		{"song.sh", false, false},
		{"song.sh", true, false},
	}

	for _, tt := range tests {
		if got := shouldCopy(tt.output, tt.noCopy); got != tt.want {
			t.Errorf("shouldCopy(%q, %v) = %v, want %v", tt.output, tt.noCopy, got, tt.want)
		}
	}
}

func TestReverseFlagHelp(t *testing.T) {
	f := convertCmd.Flags().Lookup("reverse")
	if f == nil {
		t.Fatal("convert has no --reverse flag")
	}
	if !strings.Contains(f.Usage, "higher channels") {
		t.Errorf("--reverse usage = %q, want it to mention higher channels", f.Usage)
	}

	channel, mergeAll, reverse, oldLogic = 0, false, true, false
	defer func() { reverse = false }()
	opts, err := buildOptions()
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	if opts.Ordering != converter.OrderChannelReverse {
		t.Errorf("--reverse ordering = %v, want reverse", opts.Ordering)
	}
}
