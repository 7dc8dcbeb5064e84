package events

import (
	"time"

	"github.com/sweeney/light-controller/internal/logic"
)

// Event type constants for kelindar/event.
const (
	TypeButtonPressed uint32 = iota + 1
	TypeRenderChanged
	TypeLightChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ButtonPressedEvent is a settled local button press and the action taken.
type ButtonPressedEvent struct {
	Presses   uint64
	Action    string
	Timestamp time.Time
}

// Type returns the event type identifier for ButtonPressedEvent.
func (e ButtonPressedEvent) Type() uint32 { return TypeButtonPressed }

// RenderChangedEvent reports a change of what the status LED shows.
type RenderChangedEvent struct {
	Event     logic.Event
	Colour    logic.RGBColour
	Timestamp time.Time
}

// Type returns the event type identifier for RenderChangedEvent.
func (e RenderChangedEvent) Type() uint32 { return TypeRenderChanged }

// LightChangedEvent reports the light load being switched.
type LightChangedEvent struct {
	On        bool
	Local     bool
	Timestamp time.Time
}

// Type returns the event type identifier for LightChangedEvent.
func (e LightChangedEvent) Type() uint32 { return TypeLightChanged }
