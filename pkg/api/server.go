package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/log"
	"github.com/fuzeworks/fuzeworks/pkg/metrics"
	"github.com/fuzeworks/fuzeworks/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// ModuleLister is the part of modules.Manager the API reads.
type ModuleLister interface {
	List() []types.ModuleRecord
}

// Option configures a Server.
type Option func(*Server)

// WithReadOnly rejects every request that is not a GET or HEAD.
func WithReadOnly(readOnly bool) Option {
	return func(s *Server) { s.readOnly = readOnly }
}

// WithLogger replaces the server's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server is the operations HTTP surface of a running fuzeworks process.
type Server struct {
	bus      *events.Bus
	modules  ModuleLister
	router   chi.Router
	logger   zerolog.Logger
	readOnly bool

	httpServer *http.Server
}

// NewServer creates the API server. modules may be nil.
func NewServer(bus *events.Bus, modules ModuleLister, opts ...Option) *Server {
	s := &Server{
		bus:     bus,
		modules: modules,
		logger:  log.WithComponent("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(MetricsMiddleware)
	if s.readOnly {
		r.Use(ReadOnly)
	}

	mountHealth(r)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/events", s.listEvents)
	r.Post("/events/{name}", s.fireEvent)
	r.Get("/modules", s.listModules)
	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves on addr until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Bool("read_only", s.readOnly).Msg("API server listening")
	metrics.RegisterComponent(metrics.ComponentAPI, true, "")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		metrics.UpdateComponent(metrics.ComponentAPI, false, err.Error())
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	metrics.UpdateComponent(metrics.ComponentAPI, false, "shutting down")
	return s.httpServer.Shutdown(ctx)
}
