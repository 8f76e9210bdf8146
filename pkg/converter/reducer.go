package converter

// voice is the reducer state: either idle or holding exactly one note
type voice interface {
	isVoice()
}

type idle struct{}

type holding struct {
	note  int
	start float64
}

func (idle) isVoice()    {}
func (holding) isVoice() {}

type reducer struct {
	state    voice
	lastEmit float64
	entries  []Entry
}

// Reduce walks a time-ordered event stream and collapses it to a monophonic
// timeline. A new note truncates the held one; a release only stops the most
// recently started note. A note still held at the end is closed at end.
//
// Zero-duration entries are kept; Extract drops them.
func Reduce(events []TimedEvent, end float64) []Entry {
	r := &reducer{state: idle{}}
	for _, ev := range events {
		r.step(ev)
	}
	if h, ok := r.state.(holding); ok {
		r.flush(h, end)
	}
	return r.entries
}

func (r *reducer) step(ev TimedEvent) {
	switch {
	case ev.IsNoteStart():
		if h, ok := r.state.(holding); ok {
			r.flush(h, ev.Time)
		}
		r.state = holding{note: int(ev.Note), start: ev.Time}
	case ev.IsNoteEnd():
		if h, ok := r.state.(holding); ok && h.note == int(ev.Note) {
			r.flush(h, ev.Time)
		}
	}
}

// flush emits the held note, preceded by a rest covering any silence since
// the last emitted entry. Comparisons use unrounded times.
func (r *reducer) flush(h holding, end float64) {
	if h.start > r.lastEmit {
		r.entries = append(r.entries, Entry{
			Rest:     true,
			Duration: round(h.start-r.lastEmit, 6),
		})
	}
	r.entries = append(r.entries, Entry{
		Note:      h.note,
		Frequency: RoundedFrequency(h.note),
		Duration:  round(end-h.start, 6),
	})
	r.lastEmit = end
	r.state = idle{}
}
