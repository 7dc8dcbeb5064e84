// Package logic contains the pure status-signaling core: event priorities,
// LED sequences, the active-event registry, the renderer and the button debouncer.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "fmt"

// Event is a signalled condition. Ordered by priority (high to low).
type Event int

const (
	EventNetworkUnconfiguredFailed Event = iota
	EventNetworkConfiguredFailed
	EventNetworkError
	EventNetworkConfiguredConnecting
	EventNetworkConfiguredDisconnected
	EventNetworkUnconfiguredConnecting
	EventNetworkUnconfiguredDisconnected
	EventOTAUpdateError
	EventIdentify
	EventLightSwitchedRemote
	EventLightSwitchedLocal
	EventOTAUpdateOK
	EventNetworkConnect
	EventNetworkConnected
	EventIdle

	numEvents = int(EventIdle) + 1
)

var eventNames = [numEvents]string{
	"NETWORK_UNCONFIGURED_FAILED",
	"NETWORK_CONFIGURED_FAILED",
	"NETWORK_ERROR",
	"NETWORK_CONFIGURED_CONNECTING",
	"NETWORK_CONFIGURED_DISCONNECTED",
	"NETWORK_UNCONFIGURED_CONNECTING",
	"NETWORK_UNCONFIGURED_DISCONNECTED",
	"OTA_UPDATE_ERROR",
	"IDENTIFY",
	"LIGHT_SWITCHED_REMOTE",
	"LIGHT_SWITCHED_LOCAL",
	"OTA_UPDATE_OK",
	"NETWORK_CONNECT",
	"NETWORK_CONNECTED",
	"IDLE",
}

// Valid reports whether e is a member of the enumeration.
func (e Event) Valid() bool {
	return e >= 0 && int(e) < numEvents
}

func (e Event) String() string {
	if !e.Valid() {
		return fmt.Sprintf("Event(%d)", int(e))
	}
	return eventNames[e]
}

// Events returns every event in priority order, highest first.
func Events() []Event {
	out := make([]Event, numEvents)
	for i := range out {
		out[i] = Event(i)
	}
	return out
}

// NetworkEvents are the mutually exclusive network state events.
var NetworkEvents = []Event{
	EventNetworkUnconfiguredFailed,
	EventNetworkConfiguredFailed,
	EventNetworkConfiguredConnecting,
	EventNetworkConfiguredDisconnected,
	EventNetworkUnconfiguredConnecting,
	EventNetworkUnconfiguredDisconnected,
	EventNetworkConnected,
}

// NetworkState is the mesh network state reported by the protocol layer.
type NetworkState string

const (
	NetworkDisconnected NetworkState = "DISCONNECTED"
	NetworkConnecting   NetworkState = "CONNECTING"
	NetworkConnected    NetworkState = "CONNECTED"
	NetworkFailed       NetworkState = "FAILED"
)

// ParseNetworkState converts a wire string into a NetworkState.
func ParseNetworkState(s string) (NetworkState, error) {
	switch ns := NetworkState(s); ns {
	case NetworkDisconnected, NetworkConnecting, NetworkConnected, NetworkFailed:
		return ns, nil
	}
	return "", fmt.Errorf("unknown network state %q", s)
}

// NetworkEvent maps a network state to the event that signals it.
// Returns false for NetworkConnected, which has no configured/unconfigured pair.
func NetworkEvent(configured bool, state NetworkState) (Event, bool) {
	switch state {
	case NetworkDisconnected:
		if configured {
			return EventNetworkConfiguredDisconnected, true
		}
		return EventNetworkUnconfiguredDisconnected, true
	case NetworkConnecting:
		if configured {
			return EventNetworkConfiguredConnecting, true
		}
		return EventNetworkUnconfiguredConnecting, true
	case NetworkFailed:
		if configured {
			return EventNetworkConfiguredFailed, true
		}
		return EventNetworkUnconfiguredFailed, true
	}
	return EventIdle, false
}

// Transition is a debounced change of the button state.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionPressed
	TransitionReleased
)

func (t Transition) String() string {
	switch t {
	case TransitionPressed:
		return "PRESSED"
	case TransitionReleased:
		return "RELEASED"
	}
	return "NONE"
}
