// Package api provides the HTTP API server and handlers for the bookstore.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookreview/bookreview-server/internal/http/response"
	"github.com/bookreview/bookreview-server/internal/metrics"
	"github.com/bookreview/bookreview-server/internal/ratelimit"
	"github.com/bookreview/bookreview-server/internal/session"
	"github.com/bookreview/bookreview-server/internal/store"
)

// SearchIndex is the part of the search index the health check needs.
type SearchIndex interface {
	DocumentCount() (uint64, error)
}

// CookieConfig controls the shopping-session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Options configures the server beyond its services.
type Options struct {
	Name            string
	Version         string
	AllowedOrigins  []string
	Cookie          CookieConfig
	Sessions        session.Store
	Metrics         *metrics.Metrics
	SearchIndex     SearchIndex
	AuthRateLimiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	sessions        session.Store
	metrics         *metrics.Metrics
	searchIndex     SearchIndex
	authRateLimiter *ratelimit.KeyedRateLimiter
	cookie          CookieConfig
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	now             func() time.Time
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Cookie.Name == "" {
		opts.Cookie.Name = "bookstore_session"
	}
	if opts.Cookie.TTL <= 0 {
		opts.Cookie.TTL = 14 * 24 * time.Hour
	}
	if opts.AuthRateLimiter == nil {
		opts.AuthRateLimiter = ratelimit.New(ratelimit.PerMinute(20), 10)
	}

	s := &Server{
		store:           st,
		services:        services,
		sessions:        opts.Sessions,
		metrics:         opts.Metrics,
		searchIndex:     opts.SearchIndex,
		authRateLimiter: opts.AuthRateLimiter,
		cookie:          opts.Cookie,
		router:          chi.NewRouter(),
		logger:          logger,
		now:             time.Now,
	}

	s.setupMiddleware(opts.AllowedOrigins)
	s.api = humachi.New(s.router, newHumaConfig(opts.Name, opts.Version))
	RegisterErrorHandler()
	s.setupRoutes()

	return s
}

func newHumaConfig(name, version string) huma.Config {
	if name == "" {
		name = "Bookstore"
	}
	if version == "" {
		version = "dev"
	}
	cfg := huma.DefaultConfig(name+" API", version)
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	cfg.Transformers = append(cfg.Transformers, EnvelopeTransformer)
	return cfg
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, used by tests and for OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Shutdown releases resources owned by the server.
func (s *Server) Shutdown(_ context.Context) {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures the chi middleware stack. It must run before
// any route is registered.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metrics.Middleware)

	if len(allowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Use(authMiddleware(s.services.Auth))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "method not allowed", s.logger)
	})
}

// setupRoutes registers every huma operation plus the plain handlers.
func (s *Server) setupRoutes() {
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerCatalogRoutes()
	s.registerSearchRoutes()
	s.registerCartRoutes()
	s.registerOrderRoutes()
	s.registerRequestRoutes()
	s.registerAdminRoutes()
	s.registerAdminCatalogRoutes()
	s.registerAdminRequestRoutes()
	s.registerAdminOrderRoutes()
}
