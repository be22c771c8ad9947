/*
Package metrics provides Prometheus metrics and health reporting for FuzeWorks.

Every collector is registered on the Prometheus default registry at package
init, so importing the package is enough to expose them through Handler.

# Architecture

	┌──────────────────── METRICS SYSTEM ─────────────────────┐
	│                                                           │
	│   events.Bus.Fire ──────► counters / histogram            │
	│     - fuzeworks_event_firings_total{event}                │
	│     - fuzeworks_event_firing_duration_seconds{event}      │
	│     - fuzeworks_listener_invocations_total{event,priority}│
	│     - fuzeworks_listener_failures_total{event,kind}       │
	│     - fuzeworks_module_activations_total{module}          │
	│                                                           │
	│   Collector (15s ticker) ──► gauges                       │
	│     - fuzeworks_listeners_registered                      │
	│     - fuzeworks_register_events                           │
	│     - fuzeworks_modules_loaded                            │
	│                                                           │
	│   HealthChecker ──► /health /ready /live                  │
	│                                                           │
	│   promhttp.Handler ──► /metrics                           │
	└───────────────────────────────────────────────────────────┘

# Failure kinds

fuzeworks_listener_failures_total uses the kind label:

  - recoverable: a module error reported to the error handler; dispatch went on
  - fatal: any other listener error; the firing was aborted
  - panic: a listener panicked; recovered and treated as fatal

# Health

Components report themselves with RegisterComponent and UpdateComponent.
GetHealth is unhealthy as soon as any component is. GetReadiness only looks
at CriticalComponents (bus, modules, storage) and stays not_ready until all
of them are registered and healthy.

# Usage

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.EventFiringDuration, name)
	metrics.EventFiringsTotal.WithLabelValues(name).Inc()

	collector := metrics.NewCollector(bus, manager)
	collector.Start()
	defer collector.Stop()

	metrics.RegisterComponent(metrics.ComponentBus, true, "")
	http.Handle("/metrics", metrics.Handler())
*/
package metrics
