// Package server exposes the spruce pipeline as a read-only HTTP API.
//
// Routes:
//
//	GET /healthz
//	GET /v1/diagnostics
//	GET /v1/reports/{name}?keep=N&channel=C&refresh=true
//	GET /v1/packages?q=filter
//	GET /v1/packages/{name}
//	GET /v1/runs?limit=N
//	GET /v1/runs/{id}
//	GET /metrics
//
// Every request runs against the repository configured at startup. Report
// results go through the pipeline cache, so repeated queries against an
// unchanged repository do not reload it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/spruce/pkg/pipeline"
	"github.com/matzehuels/spruce/pkg/store"
)

// Default timeouts.
const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 2 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

// Config holds the server dependencies.
type Config struct {
	Runner *pipeline.Runner
	// Store records report runs. Nil disables history.
	Store store.Store
	// Options are the base pipeline options; query parameters override
	// Keep and Channels per request.
	Options pipeline.Options
	Logger  *log.Logger
	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer
}

// Server handles API requests.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	history  bool
	opts     pipeline.Options
	logger   *log.Logger
	gatherer prometheus.Gatherer
	router   chi.Router
}

// New builds a server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		opts:     cfg.Options,
		logger:   cfg.Logger,
		gatherer: cfg.Gatherer,
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if s.store == nil {
		s.store = store.NullStore{}
	} else {
		s.history = true
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.opts.Logger = s.logger
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/diagnostics", s.handleDiagnostics)
		r.Get("/reports/{name}", s.handleReport)
		r.Get("/packages", s.handlePackages)
		r.Get("/packages/{name}", s.handlePackage)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
	})
	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully. Zero timeouts use the defaults.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
