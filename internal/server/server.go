// Package server serves the property dashboard over HTTP: an HTML page for
// people and a JSON API for scripts.
package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/propdash/internal/config"
	"github.com/oakwood-commons/propdash/internal/search"
	"github.com/oakwood-commons/propdash/internal/source"
	"github.com/oakwood-commons/propdash/internal/transform"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP server for the dashboard and its API.
type Server struct {
	router    chi.Router
	source    source.Source
	demo      source.Source
	builder   *transform.Builder
	selector  *search.Selector
	about     config.AboutConfig
	aboutHTML template.HTML
	cfg       config.ServerConfig
	log       logr.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithBuilder sets the report builder, e.g. for a non-default locale.
func WithBuilder(b *transform.Builder) Option {
	return func(s *Server) { s.builder = b }
}

// WithDemoSource replaces the embedded demo fixture.
func WithDemoSource(src source.Source) Option {
	return func(s *Server) { s.demo = src }
}

func WithLogger(log logr.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates the server. src answers live queries.
func New(cfg config.Config, src source.Source, opts ...Option) (*Server, error) {
	selector, err := search.NewSelector()
	if err != nil {
		return nil, err
	}
	s := &Server{
		source:   src,
		demo:     source.Demo{},
		builder:  transform.NewBuilder(),
		selector: selector,
		about:    cfg.App.About,
		cfg:      cfg.Server,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aboutHTML = renderMarkdown(s.about.Description)
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	if s.cfg.RequestTimeout.Duration > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout.Duration))
	}

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/demo", s.handleDemo)
	})

	s.router = r
}

// ListenAndServe serves on the configured address until ctx ends, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout.Duration,
		WriteTimeout: s.cfg.WriteTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
