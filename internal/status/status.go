// Package status provides a thread-safe status tracker for the light-controller daemon.
// It is written by the UI worker and the MQTT side and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/light-controller/internal/logic"
)

// NetworkInfo contains host network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Chip              string
	Pin               int
	ActiveLow         bool
	PressDebounceMs   int64
	ReleaseDebounceMs int64
	LED               string
	Brightness        uint8
	Broker            string
	Prefix            string
	HTTPAddr          string
	PressAction       string
}

// Button is the debounced button state.
type Button struct {
	Pressed bool
	Presses uint64
	Edges   uint64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Event         logic.Event
	Colour        logic.RGBColour
	Active        []logic.Event
	LEDError      bool
	Button        Button
	LightOn       bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
// Until the first render the LED is reported as IDLE.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Event:     logic.EventIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdateRender records what the LED is showing and the active event set.
// Called by the UI worker after every render step.
func (t *Tracker) UpdateRender(event logic.Event, colour logic.RGBColour, active []logic.Event, ledErr bool) {
	t.mu.Lock()
	t.snap.Event = event
	t.snap.Colour = colour
	t.snap.Active = active
	t.snap.LEDError = ledErr
	t.mu.Unlock()
}

// UpdateButton records the debounced button state and counters.
func (t *Tracker) UpdateButton(b Button) {
	t.mu.Lock()
	t.snap.Button = b
	t.mu.Unlock()
}

// SetLight records the state of the switched load.
func (t *Tracker) SetLight(on bool) {
	t.mu.Lock()
	t.snap.LightOn = on
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.Active != nil {
		s.Active = append([]logic.Event(nil), s.Active...)
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
