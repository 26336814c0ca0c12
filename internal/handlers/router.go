// Package handlers wires the storefront's HTTP surface.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignitoosolutions/ignito1/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers
	metrics     http.Handler
	notFound    http.HandlerFunc

	site    RouteRegistrar
	backend RouteRegistrar
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const defaultTimeout = 60 * time.Second

// NewRouter builds the chi router: shared middleware, probes, optional
// /metrics, then the backend and site groups. Unmatched routes answer with
// the JSON error envelope unless WithNotFound supplies a page.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
		notFound: jsonNotFound,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.health == nil {
		cfg.health = NewHealthHandlers(nil)
	}
	if cfg.notFound == nil {
		cfg.notFound = jsonNotFound
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.NotFound(cfg.notFound)
	r.MethodNotAllowed(jsonMethodNotAllowed)

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	for _, reg := range []RouteRegistrar{cfg.backend, cfg.site} {
		if reg != nil {
			r.Group(func(g chi.Router) { reg(g) })
		}
	}
	return r
}

func jsonNotFound(w http.ResponseWriter, r *http.Request) {
	msg := fmt.Sprintf("no route for %s", r.URL.Path)
	httpx.WriteError(r.Context(), w, httpx.NewError("route_not_found", msg, http.StatusNotFound))
}

func jsonMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	msg := fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path)
	httpx.WriteError(r.Context(), w, httpx.NewError("method_not_allowed", msg, http.StatusMethodNotAllowed))
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the handlers used for /healthz and /readyz endpoints.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithMetricsHandler exposes h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.metrics = h
	}
}

// WithNotFound replaces the JSON 404 with h.
func WithNotFound(h http.HandlerFunc) Option {
	return func(cfg *routerConfig) {
		cfg.notFound = h
	}
}

// WithSiteRoutes configures the registrar responsible for the HTML pages.
func WithSiteRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.site = reg
	}
}

// WithBackendRoutes configures the registrar responsible for /order and /contact.
func WithBackendRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.backend = reg
	}
}
