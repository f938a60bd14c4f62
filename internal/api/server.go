// Package api serves a symbol store over HTTP.
//
// The router exposes node, edge and relation mutations plus the read
// surfaces of the store: walks, the index order, DOT output and encoded
// snapshots. Errors are returned as JSON objects carrying the error code:
//
//	{"code": "NOT_FOUND", "error": "node \"db\" is not interned"}
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/symbol/pkg/symbol"
	"github.com/matzehuels/symbol/pkg/walk"
)

// Server routes requests to one store.
type Server struct {
	store    *symbol.Store
	logger   *log.Logger
	registry *prometheus.Registry
	walk     walk.Options
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRegistry serves metrics from reg at /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithWalkOptions sets the mode and family used when a request omits them.
func WithWalkOptions(o walk.Options) Option {
	return func(s *Server) { s.walk = o }
}

// New builds the router for store.
func New(store *symbol.Store, opts ...Option) *Server {
	s := &Server{store: store, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.listNodes)
		r.Get("/{name}", s.getNode)
		r.Put("/{name}", s.putNode)
		r.Delete("/{name}", s.deleteNode)
	})
	r.Get("/edges", s.listEdges)
	r.Post("/edges", s.appendChild)
	r.Post("/relations", s.relate)
	r.Delete("/relations", s.unrelate)
	r.Get("/walk", s.walkGraph)
	r.Get("/graph", s.encodeGraph)
	r.Get("/dot", s.renderDOT)
	r.Get("/index", s.indexOrder)
	r.Post("/index/rebalance", s.rebalance)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
