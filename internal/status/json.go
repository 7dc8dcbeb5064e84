package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	LED           LEDJSON      `json:"led"`
	Button        ButtonJSON   `json:"button"`
	Light         string       `json:"light"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// LEDJSON reports what the status LED shows.
type LEDJSON struct {
	Event  string   `json:"event"`
	Colour string   `json:"colour"`
	Active []string `json:"active"`
	Error  bool     `json:"error"`
}

// ButtonJSON reports the debounced button.
type ButtonJSON struct {
	State   string `json:"state"`
	Presses uint64 `json:"presses"`
	Edges   uint64 `json:"edges"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip              string `json:"chip"`
	Pin               int    `json:"pin"`
	ActiveLow         bool   `json:"active_low"`
	PressDebounceMs   int64  `json:"press_debounce_ms"`
	ReleaseDebounceMs int64  `json:"release_debounce_ms"`
	LED               string `json:"led"`
	Brightness        uint8  `json:"brightness"`
	Broker            string `json:"broker"`
	Prefix            string `json:"prefix"`
	HTTPAddr          string `json:"http_addr"`
	PressAction       string `json:"press_action"`
}

// ButtonState returns "PRESSED" or "RELEASED".
func ButtonState(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

// LightState returns "ON" or "OFF".
func LightState(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	active := make([]string, 0, len(snap.Active))
	for _, e := range snap.Active {
		active = append(active, e.String())
	}

	cfg := snap.Config
	inner := StatusInner{
		LED: LEDJSON{
			Event:  snap.Event.String(),
			Colour: snap.Colour.String(),
			Active: active,
			Error:  snap.LEDError,
		},
		Button: ButtonJSON{
			State:   ButtonState(snap.Button.Pressed),
			Presses: snap.Button.Presses,
			Edges:   snap.Button.Edges,
		},
		Light:         LightState(snap.LightOn),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: cfg.Broker},
		Config: ConfigJSON{
			Chip:              cfg.Chip,
			Pin:               cfg.Pin,
			ActiveLow:         cfg.ActiveLow,
			PressDebounceMs:   cfg.PressDebounceMs,
			ReleaseDebounceMs: cfg.ReleaseDebounceMs,
			LED:               cfg.LED,
			Brightness:        cfg.Brightness,
			Broker:            cfg.Broker,
			Prefix:            cfg.Prefix,
			HTTPAddr:          cfg.HTTPAddr,
			PressAction:       cfg.PressAction,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
