/*
Package api serves the operations HTTP surface of a fuzeworks process.

Routes:

	GET  /health         aggregate component health (503 when degraded)
	GET  /ready          readiness of bus, modules and storage
	GET  /live           liveness probe
	GET  /metrics        Prometheus exposition
	GET  /events         events known to the bus with listener counts
	POST /events/{name}  fire an event, optional body {"args": [...]}
	GET  /modules        module records with load state

POST /events/{name} maps Fire errors onto status codes: an unknown event
fired with arguments is 404, rejected arguments are 400 and listener or
module failures are 500. A cancelled event is still a 200; the response
carries the flag.

With WithReadOnly the server refuses every method other than GET, HEAD and
OPTIONS with 403, so a process can expose its state without exposing Fire.

Every request goes through chi's RequestID, RealIP and Recoverer middleware,
a zerolog request logger and MetricsMiddleware, which records
fuzeworks_http_requests_total and fuzeworks_http_request_duration_seconds by
route pattern.
*/
package api
