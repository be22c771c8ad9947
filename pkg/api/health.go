package api

import (
	"github.com/fuzeworks/fuzeworks/pkg/metrics"
	"github.com/go-chi/chi/v5"
)

// mountHealth registers the health, readiness and liveness probes.
//
//	/health  503 when any component is unhealthy
//	/ready   503 until bus, modules and storage are up
//	/live    200 while the process runs
func mountHealth(r chi.Router) {
	r.Get("/health", metrics.HealthHandler())
	r.Get("/ready", metrics.ReadyHandler())
	r.Get("/live", metrics.LivenessHandler())
}
