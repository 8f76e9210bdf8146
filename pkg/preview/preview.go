// Package preview draws a piano-roll image of a beep timeline
package preview

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/james-see/midi2beep/pkg/converter"
)

const (
	marginLeft   = 48.0
	marginTop    = 28.0
	marginBottom = 12.0
	marginRight  = 12.0
	notePadding  = 2 // semitones shown above and below the used range
	maxWidth     = 16000
)

// Colors
var (
	background = color{0.08, 0.08, 0.1}
	gridLine   = color{1, 1, 1}
	noteFill   = color{0.22, 1, 0.08} // acid green
	labelColor = color{0.75, 0.75, 0.75}
)

type color struct{ R, G, B float64 }

// Options controls the image size
type Options struct {
	PixelsPerSecond float64
	RowHeight       float64
	MinWidth        int
}

// DefaultOptions returns 100 px per second and 8 px per semitone
func DefaultOptions() Options {
	return Options{PixelsPerSecond: 100, RowHeight: 8, MinWidth: 320}
}

// layout maps timeline coordinates to pixels
type layout struct {
	low, high int
	opts      Options
	width     int
	height    int
}

func newLayout(tl *converter.Timeline, opts Options) layout {
	low, high := 60, 72
	first := true
	for _, e := range tl.Entries {
		if e.Rest {
			continue
		}
		if first {
			low, high = e.Note, e.Note
			first = false
		}
		low = min(low, e.Note)
		high = max(high, e.Note)
	}
	low -= notePadding
	high += notePadding

	width := int(math.Ceil(marginLeft + marginRight + tl.Duration()*opts.PixelsPerSecond))
	width = min(max(width, opts.MinWidth), maxWidth)
	height := int(math.Ceil(marginTop + marginBottom + float64(high-low+1)*opts.RowHeight))

	return layout{low: low, high: high, opts: opts, width: width, height: height}
}

func (l layout) x(seconds float64) float64 {
	return marginLeft + seconds*l.opts.PixelsPerSecond
}

func (l layout) y(note int) float64 {
	return marginTop + float64(l.high-note)*l.opts.RowHeight
}

// PianoRoll draws the timeline with time on the x axis and pitch on the y
// axis. Rests leave gaps.
func PianoRoll(tl *converter.Timeline, opts Options) (image.Image, error) {
	if tl == nil {
		return nil, errors.New("nil timeline")
	}
	if opts.PixelsPerSecond <= 0 || opts.RowHeight <= 0 {
		return nil, fmt.Errorf("invalid preview options: %+v", opts)
	}

	l := newLayout(tl, opts)
	dc := gg.NewContext(l.width, l.height)
	setRGB(dc, background)
	dc.Clear()

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 10}))

	drawGrid(dc, l)
	drawNotes(dc, l, tl)

	setRGB(dc, labelColor)
	dc.DrawString(fmt.Sprintf("%d notes, %d rests, %.2fs", tl.Pitched(), tl.Rests(), tl.Duration()), marginLeft, marginTop-10)

	return dc.Image(), nil
}

func drawGrid(dc *gg.Context, l layout) {
	for n := l.low; n <= l.high; n++ {
		if n%12 != 0 {
			continue
		}
		y := l.y(n) + l.opts.RowHeight
		dc.SetRGBA(gridLine.R, gridLine.G, gridLine.B, 0.2)
		dc.SetLineWidth(0.5)
		dc.DrawLine(marginLeft, y, float64(l.width)-marginRight, y)
		dc.Stroke()

		setRGB(dc, labelColor)
		dc.DrawString(fmt.Sprintf("C%d", n/12-1), 8, y)
	}
}

func drawNotes(dc *gg.Context, l layout, tl *converter.Timeline) {
	var t float64
	for _, e := range tl.Entries {
		if !e.Rest {
			dc.DrawRectangle(l.x(t), l.y(e.Note), e.Duration*l.opts.PixelsPerSecond, l.opts.RowHeight)
			setRGB(dc, noteFill)
			dc.FillPreserve()
			dc.SetRGBA(0, 0, 0, 1)
			dc.SetLineWidth(1)
			dc.Stroke()
		}
		t += e.Duration
	}
}

func setRGB(dc *gg.Context, c color) {
	dc.SetRGB(c.R, c.G, c.B)
}

// SavePNG draws the piano roll and writes it to path
func SavePNG(tl *converter.Timeline, path string, opts Options) error {
	img, err := PianoRoll(tl, opts)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}
