// Package server exposes the tree pipeline over HTTP.
//
// Routes:
//
//	GET /tree.{format}?4,0.5,0.9[&seed=N][&type=nodelink][&scale=2]
//	GET /healthz
//	GET /version
//
// The comma form mirrors the page URLs of the original drawing script:
// the first query component without an '=' is "depth,left,right", resolved
// with the same leniency as every other text input. Named depth, left and
// right parameters are accepted as well.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/arborist/pkg/params"
	"github.com/matzehuels/arborist/pkg/pipeline"
	"github.com/matzehuels/arborist/pkg/render"
	"github.com/matzehuels/arborist/pkg/render/layout"
)

// Defaults for [Server].
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxScale       = 4.0
	shutdownTimeout       = 10 * time.Second
)

// Option configures a [Server].
type Option func(*Server)

// WithResolver sets the fallbacks used for invalid tree parameters.
func WithResolver(r params.Resolver) Option { return func(s *Server) { s.resolver = r } }

// WithGeometry sets the drawing scale for every response.
func WithGeometry(g layout.Geometry) Option { return func(s *Server) { s.geometry = g } }

// WithStyle sets the drawing style for every response.
func WithStyle(st render.Style) Option { return func(s *Server) { s.style = st } }

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMaxScale caps the ?scale= parameter of PNG requests.
func WithMaxScale(m float64) Option { return func(s *Server) { s.maxScale = m } }

// Server renders trees on request. It is safe for concurrent use; each
// request generates its own tree and surfaces.
type Server struct {
	runner   *pipeline.Runner
	resolver params.Resolver
	geometry layout.Geometry
	style    render.Style
	logger   *log.Logger
	maxScale float64
	timeout  time.Duration
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		resolver: params.NewResolver(params.Default()),
		geometry: layout.DefaultGeometry(),
		style:    render.DefaultStyle(),
		logger:   log.Default(),
		maxScale: DefaultMaxScale,
		timeout:  DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Get("/tree.{format}", s.handleTree)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
