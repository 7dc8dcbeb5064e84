// Package mqtt provides MQTT publishing and subscribing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// Topics derives the daemon's topics from a common prefix.
type Topics struct {
	Prefix string
}

// Button is where settled presses are published.
func (t Topics) Button() string { return t.Prefix + "/button" }

// Light is where the light state is published.
func (t Topics) Light() string { return t.Prefix + "/light" }

// LED is where status LED changes are published.
func (t Topics) LED() string { return t.Prefix + "/led" }

// System is where lifecycle events (and the will) are published.
func (t Topics) System() string { return t.Prefix + "/system" }

// Notify is the root of inbound notifications, e.g. <prefix>/notify/identify.
func (t Topics) Notify() string { return t.Prefix + "/notify" }

// NotifyFilter matches every inbound notification.
func (t Topics) NotifyFilter() string { return t.Notify() + "/#" }

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishButton sends a settled button press.
	// Returns error if publishing fails (should not crash the process).
	PublishButton(event ButtonEvent) error

	// PublishLight sends the light state.
	PublishLight(event LightEvent) error

	// PublishLED sends a change of the status LED.
	PublishLED(event LEDEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// MessageHandler receives an inbound message.
type MessageHandler func(topic string, payload []byte)

// Subscriber delivers inbound messages. Subscriptions survive reconnects.
type Subscriber interface {
	Subscribe(filter string, handler MessageHandler) error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ButtonEvent is a settled press and the action it triggered.
type ButtonEvent struct {
	Timestamp time.Time
	Presses   uint64
	Action    string
}

// LightEvent is the state of the switched light.
type LightEvent struct {
	Timestamp time.Time
	On        bool
	Source    string // "local" or "remote"
}

// LEDEvent is a change of the event shown on the status LED.
type LEDEvent struct {
	Timestamp time.Time
	Event     string
	Colour    string
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// ButtonPayload is the MQTT payload for a button press.
type ButtonPayload struct {
	Button ButtonPayloadInner `json:"button"`
}

// ButtonPayloadInner contains the press details.
type ButtonPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Presses   uint64 `json:"presses"`
	Action    string `json:"action,omitempty"`
}

// FormatButtonPayload creates the JSON payload for a button press.
func FormatButtonPayload(event ButtonEvent) ([]byte, error) {
	return json.Marshal(ButtonPayload{
		Button: ButtonPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     "PRESSED",
			Presses:   event.Presses,
			Action:    event.Action,
		},
	})
}

// LightPayload is the MQTT payload for the light state.
type LightPayload struct {
	Light LightPayloadInner `json:"light"`
}

// LightPayloadInner contains the light state.
type LightPayloadInner struct {
	Timestamp string `json:"timestamp"`
	State     string `json:"state"`
	Source    string `json:"source"`
}

// FormatLightPayload creates the JSON payload for the light state.
func FormatLightPayload(event LightEvent) ([]byte, error) {
	state := "OFF"
	if event.On {
		state = "ON"
	}
	return json.Marshal(LightPayload{
		Light: LightPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			State:     state,
			Source:    event.Source,
		},
	})
}

// LEDPayload is the MQTT payload for a status LED change.
type LEDPayload struct {
	LED LEDPayloadInner `json:"led"`
}

// LEDPayloadInner contains what the LED shows.
type LEDPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Colour    string `json:"colour"`
}

// FormatLEDPayload creates the JSON payload for a status LED change.
func FormatLEDPayload(event LEDEvent) ([]byte, error) {
	return json.Marshal(LEDPayload{
		LED: LEDPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Colour:    event.Colour,
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
