package logic

import "time"

// Default debounce windows. Releases need to be stable for longer than presses
// so that contact chatter on release is not seen as another press.
const (
	DefaultPressDebounce   = 100 * time.Millisecond
	DefaultReleaseDebounce = time.Second
)

// Debouncer turns raw button edges into settled press/release transitions.
type Debouncer struct {
	pressWindow   time.Duration
	releaseWindow time.Duration

	// Current stable (debounced) state
	state bool
	// Latest raw level observed
	pending bool
	// Time when the latest raw edge was observed
	pendingSince time.Time
	presses      uint64
}

// NewDebouncer creates a debouncer whose stable state starts at initial.
func NewDebouncer(pressWindow, releaseWindow time.Duration, initial bool, now time.Time) *Debouncer {
	return &Debouncer{
		pressWindow:   pressWindow,
		releaseWindow: releaseWindow,
		state:         initial,
		pending:       initial,
		pendingSince:  now,
	}
}

// Update processes the edges seen since the last call. raw is the most recent
// raw level (true = active). Returns any settled transition and, if a
// transition is still pending, how long until it can settle (0 otherwise).
func (d *Debouncer) Update(edges uint64, raw bool, now time.Time) (Transition, time.Duration) {
	if edges > 0 {
		// Any new edge restarts the window, even if the level looks unchanged.
		d.pending = raw
		d.pendingSince = now
	}

	if d.pending == d.state {
		return TransitionNone, 0
	}

	window := d.releaseWindow
	if d.pending {
		window = d.pressWindow
	}

	stable := now.Sub(d.pendingSince)
	if stable < window {
		return TransitionNone, window - stable
	}

	d.state = d.pending
	if d.state {
		d.presses++
		return TransitionPressed, 0
	}
	return TransitionReleased, 0
}

// State returns the debounced state (true = active).
func (d *Debouncer) State() bool {
	return d.state
}

// Pending reports whether a transition is waiting for its window to elapse.
func (d *Debouncer) Pending() bool {
	return d.pending != d.state
}

// Presses returns the number of settled presses since startup.
func (d *Debouncer) Presses() uint64 {
	return d.presses
}
