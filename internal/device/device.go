// Package device connects the status engine to the rest of the system. It
// turns inbound notifications into LED events and settled button presses
// into user commands.
package device

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sweeney/light-controller/internal/config"
	"github.com/sweeney/light-controller/internal/events"
	"github.com/sweeney/light-controller/internal/logger"
	"github.com/sweeney/light-controller/internal/logic"
	"github.com/sweeney/light-controller/internal/mqtt"
	"github.com/sweeney/light-controller/internal/status"
)

// Light sources reported with light state changes.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Indicator is the set of status notifications the device can raise.
// ui.UserInterface implements it.
type Indicator interface {
	NetworkState(configured bool, state logic.NetworkState)
	NetworkError()
	NetworkJoin()
	Identify(seconds uint16)
	LightSwitched(local bool)
	OTAUpdate(ok bool)
}

// Config holds the device's collaborators.
type Config struct {
	UI          Indicator
	Bus         *events.Bus
	Tracker     *status.Tracker
	Topics      mqtt.Topics
	PressAction string
	Log         *logger.Log
	Now         func() time.Time
}

// Device is the protocol facade.
type Device struct {
	ui      Indicator
	bus     *events.Bus
	tracker *status.Tracker
	topics  mqtt.Topics
	action  string
	log     *logger.Log
	now     func() time.Time

	mu      sync.Mutex
	lightOn bool
}

// New creates a Device.
func New(cfg Config) *Device {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	if cfg.PressAction == "" {
		cfg.PressAction = config.ActionToggle
	}
	return &Device{
		ui:      cfg.UI,
		bus:     cfg.Bus,
		tracker: cfg.Tracker,
		topics:  cfg.Topics,
		action:  cfg.PressAction,
		log:     cfg.Log.Module("device"),
		now:     cfg.Now,
	}
}

// LightOn reports the current light state.
func (d *Device) LightOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lightOn
}

// ButtonPressed handles a settled press. It runs on the UI worker, so
// anything slow goes through the bus.
func (d *Device) ButtonPressed(presses uint64) {
	now := d.now()
	d.publish(events.ButtonPressedEvent{Presses: presses, Action: d.action, Timestamp: now})

	switch d.action {
	case config.ActionJoin:
		d.log.Info("Requesting network join")
		d.ui.NetworkJoin()
	default:
		d.mu.Lock()
		d.lightOn = !d.lightOn
		on := d.lightOn
		d.mu.Unlock()

		d.log.WithField("on", on).Info("Light toggled")
		d.ui.LightSwitched(true)
		d.lightChanged(on, true, now)
	}
}

func (d *Device) lightChanged(on, local bool, now time.Time) {
	if d.tracker != nil {
		d.tracker.SetLight(on)
	}
	d.publish(events.LightChangedEvent{On: on, Local: local, Timestamp: now})
}

func (d *Device) publish(ev events.Event) {
	if d.bus != nil {
		d.bus.Publish(ev)
	}
}

// Subscribe registers for inbound notifications.
func (d *Device) Subscribe(sub mqtt.Subscriber) error {
	filter := d.topics.NotifyFilter()
	if err := sub.Subscribe(filter, d.Handle); err != nil {
		return fmt.Errorf("subscribe %s: %w", filter, err)
	}
	d.log.WithField("filter", filter).Info("Subscribed to notifications")
	return nil
}

type networkMsg struct {
	Configured bool   `json:"configured"`
	State      string `json:"state"`
}

type identifyMsg struct {
	Seconds uint16 `json:"seconds"`
}

type lightMsg struct {
	On     bool   `json:"on"`
	Source string `json:"source"`
}

type otaMsg struct {
	OK bool `json:"ok"`
}

// Handle processes one inbound notification. Malformed messages are logged
// and dropped.
func (d *Device) Handle(topic string, payload []byte) {
	kind, ok := strings.CutPrefix(topic, d.topics.Notify()+"/")
	if !ok {
		d.log.WithField("topic", topic).Debug("Ignoring message outside notify")
		return
	}
	if err := d.handle(kind, payload); err != nil {
		d.log.WithError(err).WithField("topic", topic).Warn("Dropping notification")
	}
}

func (d *Device) handle(kind string, payload []byte) error {
	switch kind {
	case "network":
		var m networkMsg
		if err := decode(payload, &m); err != nil {
			return err
		}
		state, err := logic.ParseNetworkState(m.State)
		if err != nil {
			return err
		}
		d.log.WithField("configured", m.Configured).WithField("state", state).Info("Network state")
		d.ui.NetworkState(m.Configured, state)

	case "error":
		d.ui.NetworkError()

	case "join":
		d.ui.NetworkJoin()

	case "identify":
		var m identifyMsg
		if err := decode(payload, &m); err != nil {
			return err
		}
		d.ui.Identify(m.Seconds)

	case "light":
		var m lightMsg
		if err := decode(payload, &m); err != nil {
			return err
		}
		var local bool
		switch m.Source {
		case SourceLocal:
			local = true
		case SourceRemote, "":
		default:
			return fmt.Errorf("unknown light source %q", m.Source)
		}

		d.mu.Lock()
		d.lightOn = m.On
		d.mu.Unlock()

		d.ui.LightSwitched(local)
		d.lightChanged(m.On, local, d.now())

	case "ota":
		var m otaMsg
		if err := decode(payload, &m); err != nil {
			return err
		}
		d.ui.OTAUpdate(m.OK)

	default:
		return fmt.Errorf("unknown notification %q", kind)
	}
	return nil
}

func decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
