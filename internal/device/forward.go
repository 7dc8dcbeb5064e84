package device

import (
	"github.com/sweeney/light-controller/internal/events"
	"github.com/sweeney/light-controller/internal/logger"
	"github.com/sweeney/light-controller/internal/mqtt"
)

// Forward publishes bus events to MQTT. It returns a function that stops
// forwarding.
func Forward(bus *events.Bus, pub mqtt.Publisher, log *logger.Log) func() {
	log = log.Module("forward")

	unsubs := []func(){
		bus.Subscribe(func(e events.ButtonPressedEvent) {
			err := pub.PublishButton(mqtt.ButtonEvent{Timestamp: e.Timestamp, Presses: e.Presses, Action: e.Action})
			if err != nil {
				log.WithError(err).Warn("Failed to publish button press")
			}
		}),
		bus.Subscribe(func(e events.LightChangedEvent) {
			source := SourceRemote
			if e.Local {
				source = SourceLocal
			}
			if err := pub.PublishLight(mqtt.LightEvent{Timestamp: e.Timestamp, On: e.On, Source: source}); err != nil {
				log.WithError(err).Warn("Failed to publish light state")
			}
		}),
		bus.Subscribe(func(e events.RenderChangedEvent) {
			err := pub.PublishLED(mqtt.LEDEvent{Timestamp: e.Timestamp, Event: e.Event.String(), Colour: e.Colour.String()})
			if err != nil {
				log.WithError(err).Warn("Failed to publish LED state")
			}
		}),
	}

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
