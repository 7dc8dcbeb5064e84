// Package metrics exposes Prometheus collectors for the status engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "light_controller"

// Metrics holds the engine's collectors.
type Metrics struct {
	registry *prometheus.Registry

	EventsStarted  *prometheus.CounterVec
	EventsExpired  *prometheus.CounterVec
	RenderedEvent  *prometheus.GaugeVec
	ButtonEdges    prometheus.Counter
	ButtonPresses  prometheus.Counter
	LEDWrites      prometheus.Counter
	LEDWriteErrors prometheus.Counter
	Wakeups        prometheus.Counter
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_started_total",
			Help:      "Number of times each status event was started or restarted.",
		}, []string{"event"}),
		EventsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_expired_total",
			Help:      "Number of times each status event ran to the end of its sequence.",
		}, []string{"event"}),
		RenderedEvent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rendered_event",
			Help:      "1 for the event currently shown on the LED, 0 otherwise.",
		}, []string{"event"}),
		ButtonEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "button_edges_total",
			Help:      "Raw edges seen on the button line.",
		}),
		ButtonPresses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "button_presses_total",
			Help:      "Debounced button presses.",
		}),
		LEDWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "led_writes_total",
			Help:      "Colour writes to the status LED.",
		}),
		LEDWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "led_write_errors_total",
			Help:      "Failed colour writes to the status LED.",
		}),
		Wakeups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_wakeups_total",
			Help:      "Iterations of the UI worker loop.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.EventsStarted,
		m.EventsExpired,
		m.RenderedEvent,
		m.ButtonEdges,
		m.ButtonPresses,
		m.LEDWrites,
		m.LEDWriteErrors,
		m.Wakeups,
	)
	return m
}

// SetRendered marks event as the one on the LED and clears previous.
func (m *Metrics) SetRendered(previous, event string) {
	if previous != "" && previous != event {
		m.RenderedEvent.WithLabelValues(previous).Set(0)
	}
	m.RenderedEvent.WithLabelValues(event).Set(1)
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
