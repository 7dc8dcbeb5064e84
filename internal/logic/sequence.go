package logic

import (
	"fmt"
	"time"
)

// RGBColour is a status LED colour.
type RGBColour struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

func (c RGBColour) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red, c.Green, c.Blue)
}

var (
	ColourOff     = RGBColour{0, 0, 0}
	ColourRed     = RGBColour{255, 0, 0}
	ColourOrange  = RGBColour{255, 96, 0}
	ColourYellow  = RGBColour{255, 255, 0}
	ColourGreen   = RGBColour{0, 255, 0}
	ColourCyan    = RGBColour{0, 255, 255}
	ColourBlue    = RGBColour{0, 0, 255}
	ColourMagenta = RGBColour{255, 0, 255}
	ColourWhite   = RGBColour{255, 255, 255}
)

// LEDState is one animation frame.
type LEDState struct {
	Colour   RGBColour
	Duration time.Duration

	remaining time.Duration
}

// Remaining returns the time left in this frame.
func (s LEDState) Remaining() time.Duration {
	return s.remaining
}

// LEDSequence is a cyclically replayed list of frames.
// A zero Duration means the sequence plays until it is stopped.
type LEDSequence struct {
	Duration time.Duration
	States   []LEDState

	remaining time.Duration
	index     int
	started   bool
}

// Remaining returns the time left before the sequence expires.
func (s *LEDSequence) Remaining() time.Duration {
	return s.remaining
}

// Index returns the current frame index.
func (s *LEDSequence) Index() int {
	return s.index
}

// Limited reports whether the sequence expires on its own.
func (s *LEDSequence) Limited() bool {
	return s.Duration > 0
}

// clone returns an independent copy with all countdowns at their initial values.
func (s LEDSequence) clone() *LEDSequence {
	c := &LEDSequence{
		Duration: s.Duration,
		States:   make([]LEDState, len(s.States)),
	}
	copy(c.States, s.States)
	c.reset()
	c.started = false
	return c
}

func (s *LEDSequence) reset() {
	s.index = 0
	s.remaining = s.Duration
	for i := range s.States {
		s.States[i].remaining = s.States[i].Duration
	}
	s.started = true
}

func (s *LEDSequence) cycle() time.Duration {
	var total time.Duration
	for _, st := range s.States {
		total += st.Duration
	}
	return total
}

// current returns the colour of the frame being displayed.
func (s *LEDSequence) current() RGBColour {
	return s.States[s.index].Colour
}

// advance consumes elapsed time. Returns true when the sequence has expired.
func (s *LEDSequence) advance(elapsed time.Duration) bool {
	if s.Limited() {
		s.remaining -= elapsed
		if s.remaining <= 0 {
			return true
		}
	}

	cycle := s.cycle()
	if cycle <= 0 {
		return false
	}

	st := &s.States[s.index]
	st.remaining -= elapsed
	if st.remaining <= 0 && -st.remaining >= cycle {
		st.remaining = -(-st.remaining % cycle)
	}
	for st.remaining <= 0 {
		carry := st.remaining
		st.remaining = st.Duration
		s.index = (s.index + 1) % len(s.States)
		st = &s.States[s.index]
		st.remaining = st.Duration + carry
	}
	return false
}

// wait returns how long until the next change is due.
func (s *LEDSequence) wait() time.Duration {
	var w time.Duration
	if s.cycle() > 0 {
		w = s.States[s.index].remaining
	} else {
		w = IdleWait
	}
	if s.Limited() && s.remaining < w {
		w = s.remaining
	}
	return w
}

func blink(on RGBColour, onFor, offFor time.Duration) []LEDState {
	return []LEDState{
		{Colour: on, Duration: onFor},
		{Colour: ColourOff, Duration: offFor},
	}
}

func solid(c RGBColour, d time.Duration) []LEDState {
	return []LEDState{{Colour: c, Duration: d}}
}

// DefaultSequences returns the event to sequence bindings. The result is a
// fresh map; the registry treats it as read-only.
func DefaultSequences() map[Event]LEDSequence {
	return map[Event]LEDSequence{
		EventNetworkUnconfiguredFailed: {
			States: blink(ColourRed, 500*time.Millisecond, 500*time.Millisecond),
		},
		EventNetworkConfiguredFailed: {
			States: []LEDState{
				{Colour: ColourRed, Duration: 500 * time.Millisecond},
				{Colour: ColourOrange, Duration: 500 * time.Millisecond},
			},
		},
		EventNetworkError: {
			Duration: 3 * time.Second,
			States:   blink(ColourRed, 100*time.Millisecond, 100*time.Millisecond),
		},
		EventNetworkConfiguredConnecting: {
			States: blink(ColourGreen, 250*time.Millisecond, 250*time.Millisecond),
		},
		EventNetworkConfiguredDisconnected: {
			States: blink(ColourGreen, 100*time.Millisecond, 1900*time.Millisecond),
		},
		EventNetworkUnconfiguredConnecting: {
			States: blink(ColourBlue, 250*time.Millisecond, 250*time.Millisecond),
		},
		EventNetworkUnconfiguredDisconnected: {
			States: blink(ColourBlue, 100*time.Millisecond, 1900*time.Millisecond),
		},
		EventOTAUpdateError: {
			Duration: 5 * time.Second,
			States:   blink(ColourMagenta, 100*time.Millisecond, 100*time.Millisecond),
		},
		EventIdentify: {
			Duration: 3 * time.Second,
			States:   blink(ColourWhite, 500*time.Millisecond, 500*time.Millisecond),
		},
		EventLightSwitchedRemote: {
			Duration: 250 * time.Millisecond,
			States:   solid(ColourCyan, 250*time.Millisecond),
		},
		EventLightSwitchedLocal: {
			Duration: 250 * time.Millisecond,
			States:   solid(ColourYellow, 250*time.Millisecond),
		},
		EventOTAUpdateOK: {
			Duration: time.Second,
			States:   solid(ColourMagenta, time.Second),
		},
		EventNetworkConnect: {
			Duration: 2 * time.Second,
			States:   blink(ColourCyan, 100*time.Millisecond, 100*time.Millisecond),
		},
		EventNetworkConnected: {
			Duration: time.Second,
			States:   solid(ColourGreen, time.Second),
		},
		EventIdle: {
			States: solid(ColourOff, 0),
		},
	}
}
