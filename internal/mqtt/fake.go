package mqtt

import (
	"strings"
	"sync"
)

// FakePublisher records published events for test assertions.
// It is safe for concurrent use since events arrive from bus goroutines.
type FakePublisher struct {
	mu sync.Mutex

	// ButtonEvents contains all button presses that were published.
	ButtonEvents []ButtonEvent

	// LightEvents contains all light states that were published.
	LightEvents []LightEvent

	// LEDEvents contains all status LED changes that were published.
	LEDEvents []LEDEvent

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by every Publish method.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishButton records the press.
func (f *FakePublisher) PublishButton(event ButtonEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.ButtonEvents = append(f.ButtonEvents, event)
	return nil
}

// PublishLight records the light state.
func (f *FakePublisher) PublishLight(event LightEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.LightEvents = append(f.LightEvents, event)
	return nil
}

// PublishLED records the LED change.
func (f *FakePublisher) PublishLED(event LEDEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.LEDEvents = append(f.LEDEvents, event)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Buttons returns a copy of the recorded presses.
func (f *FakePublisher) Buttons() []ButtonEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ButtonEvent(nil), f.ButtonEvents...)
}

// Lights returns a copy of the recorded light states.
func (f *FakePublisher) Lights() []LightEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]LightEvent(nil), f.LightEvents...)
}

// LEDs returns a copy of the recorded LED changes.
func (f *FakePublisher) LEDs() []LEDEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]LEDEvent(nil), f.LEDEvents...)
}

// Systems returns a copy of the recorded system events.
func (f *FakePublisher) Systems() []SystemEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SystemEvent(nil), f.SystemEvents...)
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ButtonEvents = nil
	f.LightEvents = nil
	f.LEDEvents = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.Connected = false
}

// FakeSubscriber records subscriptions and lets tests deliver messages.
type FakeSubscriber struct {
	mu   sync.Mutex
	subs map[string]MessageHandler

	// SubscribeError, if set, will be returned by Subscribe.
	SubscribeError error
}

// NewFakeSubscriber creates a FakeSubscriber for testing.
func NewFakeSubscriber() *FakeSubscriber {
	return &FakeSubscriber{subs: make(map[string]MessageHandler)}
}

// Subscribe records the handler for filter.
func (f *FakeSubscriber) Subscribe(filter string, handler MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubscribeError != nil {
		return f.SubscribeError
	}
	f.subs[filter] = handler
	return nil
}

// Filters returns the subscribed topic filters.
func (f *FakeSubscriber) Filters() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.subs))
	for filter := range f.subs {
		out = append(out, filter)
	}
	return out
}

// Deliver passes a message to every handler whose filter matches topic.
// It returns the number of handlers called.
func (f *FakeSubscriber) Deliver(topic string, payload []byte) int {
	f.mu.Lock()
	var handlers []MessageHandler
	for filter, h := range f.subs {
		if Match(filter, topic) {
			handlers = append(handlers, h)
		}
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(topic, payload)
	}
	return len(handlers)
}

// Match reports whether topic matches an MQTT filter with + and # wildcards.
func Match(filter, topic string) bool {
	fs := strings.Split(filter, "/")
	ts := strings.Split(topic, "/")
	for i, f := range fs {
		if f == "#" {
			return true
		}
		if i >= len(ts) {
			return false
		}
		if f != "+" && f != ts[i] {
			return false
		}
	}
	return len(fs) == len(ts)
}
