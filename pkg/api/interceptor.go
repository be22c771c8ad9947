package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// ReadOnly rejects requests that could change state. It is installed when
// the API is exposed somewhere firing events must not be allowed.
func ReadOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isReadOnlyMethod(r.Method) {
			writeJSONError(w, http.StatusForbidden, "write operations are disabled: API is read-only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isReadOnlyMethod checks if an HTTP method is read-only
func isReadOnlyMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// requestLogger logs one line per request with its chi request id.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := logger.Debug()
			if status >= http.StatusInternalServerError {
				entry = logger.Warn()
			}
			entry.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		})
	}
}
