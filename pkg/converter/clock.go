package converter

import "fmt"

// Clock converts absolute ticks to seconds under a piecewise-constant tempo.
// It is fold state for one pass over a merged event stream.
type Clock struct {
	ticksPerBeat int
	tick         int64
	time         float64
	tempo        uint32
}

// NewClock creates a clock at tick 0 with the default tempo
func NewClock(ticksPerBeat int) (*Clock, error) {
	if ticksPerBeat <= 0 {
		return nil, fmt.Errorf("%w: ticks per beat must be positive, got %d", ErrInvalidTempo, ticksPerBeat)
	}
	return &Clock{
		ticksPerBeat: ticksPerBeat,
		tempo:        DefaultTempo,
	}, nil
}

// Advance moves the clock to the event's tick and returns the time in
// seconds. A tempo change takes effect after its own tick.
func (c *Clock) Advance(ev RawEvent) (float64, error) {
	delta := ev.Tick - c.tick
	c.time += TicksToSeconds(delta, c.ticksPerBeat, c.tempo)
	c.tick = ev.Tick

	if ev.Kind == KindTempo {
		if ev.Tempo == 0 {
			return c.time, fmt.Errorf("%w: zero microseconds per beat at tick %d", ErrInvalidTempo, ev.Tick)
		}
		c.tempo = ev.Tempo
	}
	return c.time, nil
}

// Time returns the current time in seconds
func (c *Clock) Time() float64 {
	return c.time
}

// Tick returns the current tick
func (c *Clock) Tick() int64 {
	return c.tick
}

// Tempo returns the active tempo in microseconds per beat
func (c *Clock) Tempo() uint32 {
	return c.tempo
}

// TicksToSeconds converts a tick count to seconds at a fixed tempo
func TicksToSeconds(ticks int64, ticksPerBeat int, tempo uint32) float64 {
	scale := float64(tempo) * 1e-6 / float64(ticksPerBeat)
	return float64(ticks) * scale
}

// Annotate resolves the time of every event in a merged stream. It returns
// the timed events and the final accumulated time.
func Annotate(events []RawEvent, ticksPerBeat int) ([]TimedEvent, float64, error) {
	clock, err := NewClock(ticksPerBeat)
	if err != nil {
		return nil, 0, err
	}

	timed := make([]TimedEvent, 0, len(events))
	for _, ev := range events {
		t, err := clock.Advance(ev)
		if err != nil {
			return nil, 0, err
		}
		timed = append(timed, TimedEvent{RawEvent: ev, Time: t})
	}
	return timed, clock.Time(), nil
}
