package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/types"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds POST /events/{name} bodies.
const maxBodyBytes = 1 << 20

// EventInfo describes one event known to the bus.
type EventInfo struct {
	Name      string   `json:"name"`
	Modules   []string `json:"modules,omitempty"`
	Listeners int      `json:"listeners"`
	Defined   bool     `json:"defined"`
}

// FireRequest is the optional body of POST /events/{name}.
type FireRequest struct {
	Args []any `json:"args,omitempty"`
}

// FireResponse reports the outcome of a firing.
type FireResponse struct {
	Event     string `json:"event"`
	Type      string `json:"type"`
	Cancelled bool   `json:"cancelled"`
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	seen := make(map[string]bool)
	var names []string
	for _, name := range s.bus.Register().Events() {
		seen[name] = true
		names = append(names, name)
	}
	for _, name := range s.bus.Registry().Events() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	out := make([]EventInfo, 0, len(names))
	for _, name := range names {
		out = append(out, EventInfo{
			Name:      name,
			Modules:   s.bus.Register().ModulesInterestedIn(name),
			Listeners: s.bus.ListenerCount(name),
			Defined:   s.bus.HasEvent(name),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listModules(w http.ResponseWriter, r *http.Request) {
	records := []types.ModuleRecord{}
	if s.modules != nil {
		records = s.modules.List()
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) fireEvent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req FireRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if len(body) > maxBodyBytes {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	}

	ev, err := s.bus.Fire(name, req.Args...)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", name).Msg("Firing failed")
		writeJSONError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, FireResponse{
		Event:     name,
		Type:      fmt.Sprintf("%T", ev),
		Cancelled: ev.IsCancelled(),
	})
}

// statusFor maps a Fire error to an HTTP status. Listener and module
// loader failures are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, events.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, events.ErrInvalidFireInput), errors.Is(err, events.ErrInvalidArguments):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: status})
}
