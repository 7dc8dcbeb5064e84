// Package ui runs the status LED and button worker.
//
// A single goroutine (Run) owns the LED, the debouncer and the render cursor.
// The GPIO edge handler (Interrupt) and the notification entry points only
// touch atomics and the event registry, then wake the worker.
package ui

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/light-controller/internal/events"
	"github.com/sweeney/light-controller/internal/led"
	"github.com/sweeney/light-controller/internal/logger"
	"github.com/sweeney/light-controller/internal/logic"
	"github.com/sweeney/light-controller/internal/metrics"
	"github.com/sweeney/light-controller/internal/status"
)

// ledRetry bounds the wait after a failed LED write so the colour is retried.
const ledRetry = time.Second

// PressHandler receives settled button presses. It is called on the worker
// goroutine and may call back into the UserInterface entry points.
type PressHandler interface {
	ButtonPressed(presses uint64)
}

// Config holds the worker's collaborators. LED is required; everything else
// has a usable zero value.
type Config struct {
	LED        led.Driver
	Brightness uint8

	PressDebounce   time.Duration
	ReleaseDebounce time.Duration
	// InitialLevel is the button level at startup (true = pressed).
	InitialLevel bool

	// Sequences overrides the built-in event sequences.
	Sequences map[logic.Event]logic.LEDSequence

	Log     *logger.Log
	Metrics *metrics.Metrics
	Tracker *status.Tracker
	Bus     *events.Bus
	Now     func() time.Time
}

// UserInterface is the status LED and button worker.
type UserInterface struct {
	// Written from the edge handler.
	edges atomic.Uint64
	raw   atomic.Bool
	wake  chan struct{}

	reg *logic.Registry

	mu      sync.Mutex
	handler PressHandler

	led        led.Driver
	brightness uint8
	log        *logger.Log
	metrics    *metrics.Metrics
	tracker    *status.Tracker
	bus        *events.Bus
	now        func() time.Time

	// Owned by the worker goroutine.
	renderer    *logic.Renderer
	debouncer   *logic.Debouncer
	shown       logic.Event
	rendered    bool
	writeFailed bool
	totalEdges  uint64
}

// New creates a UserInterface with nothing active. The LED is not written
// until Run starts.
func New(cfg Config) *UserInterface {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Sequences == nil {
		cfg.Sequences = logic.DefaultSequences()
	}
	if cfg.PressDebounce == 0 {
		cfg.PressDebounce = logic.DefaultPressDebounce
	}
	if cfg.ReleaseDebounce == 0 {
		cfg.ReleaseDebounce = logic.DefaultReleaseDebounce
	}

	now := cfg.Now()
	reg := logic.NewRegistry(cfg.Sequences)
	u := &UserInterface{
		wake:       make(chan struct{}, 1),
		reg:        reg,
		led:        cfg.LED,
		brightness: cfg.Brightness,
		log:        cfg.Log.Module("ui"),
		metrics:    cfg.Metrics,
		tracker:    cfg.Tracker,
		bus:        cfg.Bus,
		now:        cfg.Now,
		renderer:   logic.NewRenderer(reg, now),
		debouncer:  logic.NewDebouncer(cfg.PressDebounce, cfg.ReleaseDebounce, cfg.InitialLevel, now),
	}
	u.raw.Store(cfg.InitialLevel)
	return u
}

// Attach sets the handler for settled button presses.
func (u *UserInterface) Attach(h PressHandler) {
	u.mu.Lock()
	u.handler = h
	u.mu.Unlock()
}

func (u *UserInterface) pressHandler() PressHandler {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.handler
}

// Interrupt records a raw button edge. It is safe to call from the GPIO
// event goroutine: it never blocks, locks or logs.
func (u *UserInterface) Interrupt(active bool) {
	u.raw.Store(active)
	u.edges.Add(1)
	u.notify()
}

// notify wakes the worker. A pending wakeup already covers this one.
func (u *UserInterface) notify() {
	select {
	case u.wake <- struct{}{}:
	default:
	}
}

// Run executes the worker loop until ctx is cancelled.
func (u *UserInterface) Run(ctx context.Context) error {
	u.log.Info("UI worker started")
	defer u.log.Info("UI worker stopped")

	timer := time.NewTimer(logic.IdleWait)
	defer timer.Stop()

	for {
		wait := u.runTasks(u.now())
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-u.wake:
		case <-timer.C:
		}
	}
}

// runTasks does one pass of the worker: button, render, LED. It returns how
// long the worker may sleep before something needs attention again.
func (u *UserInterface) runTasks(now time.Time) time.Duration {
	u.metrics.Wakeups.Inc()

	debounceWait := u.pollButton(now)

	frame := u.renderer.Step(now)
	for _, e := range frame.Expired {
		u.metrics.EventsExpired.WithLabelValues(e.String()).Inc()
		u.log.WithField("event", e).Debug("Event expired")
	}

	if !u.rendered || frame.Event != u.shown {
		previous := ""
		if u.rendered {
			previous = u.shown.String()
		}
		u.metrics.SetRendered(previous, frame.Event.String())
		u.log.With(logger.Fields{"event": frame.Event, "colour": frame.Colour}).Debug("Showing event")
		if u.bus != nil {
			u.bus.Publish(events.RenderChangedEvent{Event: frame.Event, Colour: frame.Colour, Timestamp: now})
		}
		u.shown = frame.Event
		u.rendered = true
	}

	if frame.Changed || u.writeFailed {
		u.writeLED(frame.Colour)
	}

	if u.tracker != nil {
		u.tracker.UpdateRender(frame.Event, frame.Colour, u.reg.ActiveEvents(), u.writeFailed)
	}

	wait := frame.Wait
	if debounceWait > 0 && debounceWait < wait {
		wait = debounceWait
	}
	if u.writeFailed && ledRetry < wait {
		wait = ledRetry
	}
	return wait
}

// pollButton drains the edge counter into the debouncer and dispatches a
// settled press. It returns the remaining debounce window, if any.
func (u *UserInterface) pollButton(now time.Time) time.Duration {
	edges := u.edges.Swap(0)
	raw := u.raw.Load()
	if edges > 0 {
		u.totalEdges += edges
		u.metrics.ButtonEdges.Add(float64(edges))
	}

	tr, wait := u.debouncer.Update(edges, raw, now)
	switch tr {
	case logic.TransitionPressed:
		presses := u.debouncer.Presses()
		u.metrics.ButtonPresses.Inc()
		u.log.WithField("presses", presses).Info("Button pressed")
		if h := u.pressHandler(); h != nil {
			h.ButtonPressed(presses)
		}
	case logic.TransitionReleased:
		u.log.Debug("Button released")
	}

	if u.tracker != nil && (edges > 0 || tr != logic.TransitionNone) {
		u.tracker.UpdateButton(status.Button{
			Pressed: u.debouncer.State(),
			Presses: u.debouncer.Presses(),
			Edges:   u.totalEdges,
		})
	}
	return wait
}

func (u *UserInterface) writeLED(c logic.RGBColour) {
	if err := u.led.Set(c, u.brightness); err != nil {
		u.metrics.LEDWriteErrors.Inc()
		if !u.writeFailed {
			u.log.WithError(err).Warn("LED write failed")
		}
		u.writeFailed = true
		return
	}
	u.metrics.LEDWrites.Inc()
	if u.writeFailed {
		u.log.Info("LED write recovered")
	}
	u.writeFailed = false
}

// Highest returns the highest-priority active event.
func (u *UserInterface) Highest() logic.Event {
	return u.reg.Highest()
}

// ActiveEvents returns the active events in priority order.
func (u *UserInterface) ActiveEvents() []logic.Event {
	return u.reg.ActiveEvents()
}
