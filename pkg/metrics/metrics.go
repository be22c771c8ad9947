package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Dispatch metrics
	EventFiringsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuzeworks_event_firings_total",
			Help: "Total number of event firings by event name",
		},
		[]string{"event"},
	)

	EventFiringDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fuzeworks_event_firing_duration_seconds",
			Help:    "Time spent activating modules and running listeners per firing",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event"},
	)

	ListenerInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuzeworks_listener_invocations_total",
			Help: "Total number of listener invocations by event and priority",
		},
		[]string{"event", "priority"},
	)

	ListenerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuzeworks_listener_failures_total",
			Help: "Total number of listener failures by event and kind (recoverable, fatal, panic)",
		},
		[]string{"event", "kind"},
	)

	ModuleActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuzeworks_module_activations_total",
			Help: "Total number of module activations triggered by the event register",
		},
		[]string{"module"},
	)

	// State gauges, sampled by the Collector
	ListenersRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fuzeworks_listeners_registered",
			Help: "Number of listeners currently registered on the bus",
		},
	)

	RegisterEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fuzeworks_register_events",
			Help: "Number of events in the event register",
		},
	)

	ModulesLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fuzeworks_modules_loaded",
			Help: "Number of modules currently loaded",
		},
	)
)

func init() {
	prometheus.MustRegister(EventFiringsTotal)
	prometheus.MustRegister(EventFiringDuration)
	prometheus.MustRegister(ListenerInvocationsTotal)
	prometheus.MustRegister(ListenerFailuresTotal)
	prometheus.MustRegister(ModuleActivationsTotal)
	prometheus.MustRegister(ListenersRegistered)
	prometheus.MustRegister(RegisterEvents)
	prometheus.MustRegister(ModulesLoaded)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
