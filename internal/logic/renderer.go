package logic

import "time"

const (
	// MinWait is the shortest wait the renderer will ask for.
	MinWait = time.Millisecond
	// IdleWait is the wait returned when nothing is animating.
	IdleWait = time.Hour
)

// Frame is the result of one render step.
type Frame struct {
	Event  Event
	Colour RGBColour
	// Wait is how long until the renderer next needs to run.
	Wait time.Duration
	// Changed is true when Colour differs from the previous step.
	Changed bool
	// Expired lists events whose sequence ran out during this step.
	Expired []Event
}

// Renderer plays the sequence of the highest priority active event.
type Renderer struct {
	reg     *Registry
	event   Event
	last    time.Time
	colour  RGBColour
	idle    RGBColour
	stepped bool
}

// NewRenderer creates a renderer positioned on EventIdle at the given time.
func NewRenderer(reg *Registry, now time.Time) *Renderer {
	idle := ColourOff
	if seq, ok := reg.templates[EventIdle]; ok && len(seq.States) > 0 {
		idle = seq.States[0].Colour
	}
	return &Renderer{
		reg:    reg,
		event:  EventIdle,
		last:   now,
		colour: idle,
		idle:   idle,
	}
}

// Event returns the event currently being rendered.
func (r *Renderer) Event() Event {
	return r.event
}

// Colour returns the colour output by the last step.
func (r *Renderer) Colour() RGBColour {
	return r.colour
}

// Step advances the animation to now and returns what to display.
func (r *Renderer) Step(now time.Time) Frame {
	elapsed := now.Sub(r.last)
	if elapsed < 0 {
		elapsed = 0
	}
	r.last = now

	r.reg.mu.Lock()
	defer r.reg.mu.Unlock()

	var f Frame
	for {
		e := r.reg.highestLocked()
		if e == EventIdle {
			r.event = EventIdle
			f.Event = EventIdle
			f.Colour = r.idle
			f.Wait = IdleWait
			break
		}

		seq := r.reg.live[e]
		if len(seq.States) == 0 {
			r.reg.stopLocked(e)
			f.Expired = append(f.Expired, e)
			continue
		}

		if e != r.event || !seq.started {
			r.event = e
			seq.reset()
			elapsed = 0
		} else if seq.advance(elapsed) {
			r.reg.stopLocked(e)
			f.Expired = append(f.Expired, e)
			elapsed = 0
			continue
		}

		f.Event = e
		f.Colour = seq.current()
		f.Wait = seq.wait()
		break
	}

	if f.Wait < MinWait {
		f.Wait = MinWait
	}
	f.Changed = !r.stepped || f.Colour != r.colour
	r.colour = f.Colour
	r.stepped = true
	return f
}
