package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	querybus "profnet/application/queries/bus"
	"profnet/interfaces/http/rest/handlers"
	"profnet/interfaces/http/rest/middleware"
	pkgerrors "profnet/pkg/errors"
	"profnet/pkg/observability"
	"profnet/pkg/ratelimit"
)

// ReadinessCheck reports whether the service's dependencies are reachable.
type ReadinessCheck func(ctx context.Context) error

// Options carries the router's optional collaborators.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	Limiter         ratelimit.Limiter
	Metrics         observability.Recorder
	Ready           ReadinessCheck

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// LayoutSocket serves /ws/layout when set.
	LayoutSocket http.Handler
}

// Router creates and configures the HTTP router
type Router struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	opts     Options
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(queryBus *querybus.QueryBus, errs *pkgerrors.ErrorHandler, opts Options, logger *zap.Logger) *Router {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Router{
		queryBus: queryBus,
		errors:   errs,
		opts:     opts,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.opts.Metrics != nil {
		router.Use(middleware.Metrics(rt.opts.Metrics))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.opts.MetricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", rt.opts.MetricsHandler)
	}
	if rt.opts.LayoutSocket != nil {
		router.Method(http.MethodGet, "/ws/layout", rt.opts.LayoutSocket)
	}

	router.Route("/api", func(r chi.Router) {
		if rt.opts.Limiter != nil {
			r.Use(middleware.RateLimit(rt.opts.Limiter, rt.opts.RateLimitPerMin, rt.errors, rt.logger))
		}

		professionals := handlers.NewProfessionalHandler(rt.queryBus, rt.errors, rt.logger)
		r.Route("/professionals", func(r chi.Router) {
			r.Get("/", professionals.List)
			r.Get("/search", professionals.Search)
			r.Get("/{id}", professionals.Get)
		})

		r.Get("/graph/{id}", handlers.NewGraphHandler(rt.queryBus, rt.errors, rt.logger).GetGraph)

		insights := handlers.NewInsightHandler(rt.queryBus, rt.errors, rt.logger)
		r.Route("/ai", func(r chi.Router) {
			r.Get("/analyze/{id}", insights.Analyze)
			r.Get("/recommend/{id}", insights.Recommend)
			r.Post("/question", insights.Question)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports 503 until the configured check passes.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.opts.Ready != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
		defer cancel()
		if err := rt.opts.Ready(ctx); err != nil {
			rt.errors.Handle(w, req, pkgerrors.NewUnavailableError("store").WithCause(err))
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
