// Package events carries in-process notifications between the UI worker, the
// device facade and the reporting side (MQTT, status).
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting.
// Handlers run on the dispatcher's goroutines, never on the publisher's.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case ButtonPressedEvent:
		event.Publish(b.dispatcher, e)
	case RenderChangedEvent:
		event.Publish(b.dispatcher, e)
	case LightChangedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type selects the events it receives. Returns an unsubscribe function.
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ButtonPressedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RenderChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LightChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// Close stops delivery to all subscribers.
func (b *Bus) Close() error {
	return b.dispatcher.Close()
}
