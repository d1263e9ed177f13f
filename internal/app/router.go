// Package app assembles the HTTP application: storage, services, handlers
// and the chi router.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tareasapi/tareas/internal/auth"
	"github.com/tareasapi/tareas/internal/cache"
	"github.com/tareasapi/tareas/internal/config"
	"github.com/tareasapi/tareas/internal/handler"
	"github.com/tareasapi/tareas/internal/metrics"
	"github.com/tareasapi/tareas/internal/middleware"
	"github.com/tareasapi/tareas/internal/repository"
	"github.com/tareasapi/tareas/internal/service"
)

// Deps are the process-wide collaborators of the router.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   repository.Provider
	Hasher  *auth.Hasher
	Tokens  *auth.TokenIssuer
	Metrics *metrics.InMemoryRecorder
	// Cache is optional. When nil, readiness skips Redis and rate limiting
	// stays in process.
	Cache *cache.Cache
	// Limiter overrides the limiter derived from Config and Cache.
	Limiter cache.Limiter
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logger := d.Logger

	var recorder metrics.Recorder = metrics.NewNoop()
	var snapshotter metrics.Snapshotter
	if d.Metrics != nil {
		recorder = d.Metrics
		snapshotter = d.Metrics
	}

	limiter := d.Limiter
	if limiter == nil {
		limiter = NewAuthLimiter(cfg, d.Cache)
	}

	userService := service.NewUserService(d.Hasher, d.Tokens, recorder, logger)
	categoryService := service.NewCategoryService(recorder)
	taskService := service.NewTaskService(recorder).WithLocation(cfg.Location())

	h := handler.New()
	var redisPinger handler.Pinger
	if d.Cache != nil {
		redisPinger = d.Cache
	}
	healthHandler := handler.NewHealthHandler(
		handler.Dependency{Name: "database", Pinger: d.Store},
		handler.Dependency{Name: "redis", Pinger: redisPinger},
	)
	metricsHandler := handler.NewMetricsHandler(snapshotter)
	userHandler := handler.NewUserHandler(userService, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:  logger,
		Tokens:  d.Tokens,
		Metrics: recorder,
	})
	session := middleware.Session(d.Store, logger)
	rateLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: limiter,
		Metrics: recorder,
		Enabled: cfg.RateLimitAuthEnabled,
		Burst:   cfg.RateLimitAuthBurst,
	})

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		HSTS: cfg.IsProduction(),
	}))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxAge:         cfg.CORSMaxAge,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Operational endpoints (no auth required)
	r.Get("/", h.Root)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	r.Route("/users", func(r chi.Router) {
		r.With(rateLimit, session).Post("/", userHandler.Register)
		r.With(rateLimit, session).Post("/login", userHandler.Login)
		r.Post("/logout", userHandler.Logout)

		if cfg.UsersListRequireAuth {
			r.With(requireAuth, session).Get("/", userHandler.List)
		} else {
			r.With(session).Get("/", userHandler.List)
		}
	})

	// Everything below requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(session)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryHandler.Create)
			r.Get("/", categoryHandler.List)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/tareas", func(r chi.Router) {
			r.Post("/", taskHandler.Create)
			r.Get("/{id}", taskHandler.Get)
			r.Put("/{id}", taskHandler.Update)
			r.Delete("/{id}", taskHandler.Delete)
			r.Patch("/{id}/estado", taskHandler.PatchStatus)
		})

		r.Get("/usuarios/{id}/tareas", taskHandler.ListForUser)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
