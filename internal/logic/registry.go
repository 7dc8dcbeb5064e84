package logic

import (
	"fmt"
	"sync"
	"time"
)

// eventSet is a presence bit per Event.
type eventSet uint32

func (s eventSet) has(e Event) bool { return s&(1<<uint(e)) != 0 }
func (s *eventSet) set(e Event)     { *s |= 1 << uint(e) }
func (s *eventSet) clear(e Event)   { *s &^= 1 << uint(e) }

// Registry tracks the active events and a live copy of each active event's
// sequence. All access goes through one mutex; the renderer steps under the
// same lock so it never sees a bit without its sequence or vice versa.
type Registry struct {
	mu        sync.Mutex
	templates map[Event]LEDSequence
	active    eventSet
	live      map[Event]*LEDSequence
}

// NewRegistry creates a registry over the given sequence templates.
// The templates are not modified. Every event other than EventIdle must have a template.
func NewRegistry(templates map[Event]LEDSequence) *Registry {
	for _, e := range Events() {
		if e == EventIdle {
			continue
		}
		if _, ok := templates[e]; !ok {
			panic(fmt.Sprintf("logic: no sequence for %s", e))
		}
	}
	return &Registry{
		templates: templates,
		live:      make(map[Event]*LEDSequence),
	}
}

func mustValid(e Event) {
	if !e.Valid() {
		panic(fmt.Sprintf("logic: invalid event %d", int(e)))
	}
}

// Start activates an event. Does nothing if it is already active.
// Returns true if the event was newly activated.
func (r *Registry) Start(e Event) bool {
	mustValid(e)
	if e == EventIdle {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active.has(e) {
		return false
	}
	r.install(e, r.templates[e].clone())
	return true
}

// Restart activates an event with a fresh sequence, discarding any progress.
func (r *Registry) Restart(e Event) {
	mustValid(e)
	if e == EventIdle {
		return
	}

	r.mu.Lock()
	r.install(e, r.templates[e].clone())
	r.mu.Unlock()
}

// RestartFor is Restart with the sequence duration overridden.
func (r *Registry) RestartFor(e Event, d time.Duration) {
	mustValid(e)
	if e == EventIdle {
		return
	}

	seq := r.templates[e].clone()
	seq.Duration = d
	seq.remaining = d

	r.mu.Lock()
	r.install(e, seq)
	r.mu.Unlock()
}

func (r *Registry) install(e Event, seq *LEDSequence) {
	r.active.set(e)
	r.live[e] = seq
}

// Stop deactivates an event, even part way through its sequence.
func (r *Registry) Stop(e Event) {
	mustValid(e)

	r.mu.Lock()
	r.stopLocked(e)
	r.mu.Unlock()
}

// StopMany deactivates a batch of events in one critical section.
func (r *Registry) StopMany(events ...Event) {
	for _, e := range events {
		mustValid(e)
	}

	r.mu.Lock()
	for _, e := range events {
		r.stopLocked(e)
	}
	r.mu.Unlock()
}

func (r *Registry) stopLocked(e Event) {
	if e == EventIdle {
		return
	}
	r.active.clear(e)
	delete(r.live, e)
}

// Active reports whether an event is active. EventIdle is always active.
func (r *Registry) Active(e Event) bool {
	mustValid(e)
	if e == EventIdle {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active.has(e)
}

// Highest returns the highest priority active event, or EventIdle.
func (r *Registry) Highest() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.highestLocked()
}

func (r *Registry) highestLocked() Event {
	for e := Event(0); e < EventIdle; e++ {
		if r.active.has(e) {
			return e
		}
	}
	return EventIdle
}

// ActiveEvents returns the active events in priority order, excluding EventIdle.
func (r *Registry) ActiveEvents() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for e := Event(0); e < EventIdle; e++ {
		if r.active.has(e) {
			out = append(out, e)
		}
	}
	return out
}
