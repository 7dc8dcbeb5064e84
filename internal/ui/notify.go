package ui

import (
	"time"

	"github.com/sweeney/light-controller/internal/logic"
)

// Notification entry points. Each is safe from any goroutine: it updates the
// registry and wakes the worker, which renders the change on its next pass.

// NetworkState shows the mesh network state. Entering CONNECTED clears every
// network state indication along with any pending error or join blink and
// shows a short confirmation.
func (u *UserInterface) NetworkState(configured bool, state logic.NetworkState) {
	if state == logic.NetworkConnected {
		stop := append([]logic.Event{logic.EventNetworkError, logic.EventNetworkConnect}, logic.NetworkEvents...)
		u.reg.StopMany(stop...)
		u.restart(logic.EventNetworkConnected)
		return
	}

	e, ok := logic.NetworkEvent(configured, state)
	if !ok {
		u.log.WithField("state", state).Warn("Unknown network state")
		return
	}

	stop := make([]logic.Event, 0, len(logic.NetworkEvents))
	for _, other := range logic.NetworkEvents {
		if other != e {
			stop = append(stop, other)
		}
	}
	u.reg.StopMany(stop...)
	if u.reg.Start(e) {
		u.metrics.EventsStarted.WithLabelValues(e.String()).Inc()
	}
	u.notify()
}

// NetworkError flashes a transient network error.
func (u *UserInterface) NetworkError() {
	u.restart(logic.EventNetworkError)
}

// NetworkJoin acknowledges a join or leave request.
func (u *UserInterface) NetworkJoin() {
	u.restart(logic.EventNetworkConnect)
}

// Identify blinks the identify pattern for the given number of seconds.
// Zero stops it.
func (u *UserInterface) Identify(seconds uint16) {
	if seconds == 0 {
		u.reg.Stop(logic.EventIdentify)
		u.notify()
		return
	}
	u.reg.RestartFor(logic.EventIdentify, time.Duration(seconds)*time.Second)
	u.metrics.EventsStarted.WithLabelValues(logic.EventIdentify.String()).Inc()
	u.notify()
}

// LightSwitched confirms the light being switched, locally or remotely.
func (u *UserInterface) LightSwitched(local bool) {
	if local {
		u.restart(logic.EventLightSwitchedLocal)
	} else {
		u.restart(logic.EventLightSwitchedRemote)
	}
}

// OTAUpdate shows the result of a firmware update.
func (u *UserInterface) OTAUpdate(ok bool) {
	if ok {
		u.restart(logic.EventOTAUpdateOK)
	} else {
		u.restart(logic.EventOTAUpdateError)
	}
}

func (u *UserInterface) restart(e logic.Event) {
	u.reg.Restart(e)
	u.metrics.EventsStarted.WithLabelValues(e.String()).Inc()
	u.notify()
}
