package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DaniAlencarrr/Athletix/internal/gate"
	"github.com/DaniAlencarrr/Athletix/internal/service"
	"github.com/DaniAlencarrr/Athletix/pkg/health"
	"github.com/DaniAlencarrr/Athletix/pkg/middleware"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	ServiceName string
	Sessions    *service.SessionService
	Onboarding  *service.OnboardingService
	Directory   *service.DirectoryService
	Gate        *gate.Gate
	Cookie      gate.Cookie
	Health      *health.Handler
	// LoginLimiter throttles register and login per client IP. Nil disables
	// throttling.
	LoginLimiter *middleware.RateLimiter
	// Frontend serves page routes. Nil falls back to PageStub.
	Frontend http.Handler
	CORS     middleware.CORSConfig
	// DirectoryMaxAge is the public cache lifetime of directory listings in
	// seconds. Zero disables the header.
	DirectoryMaxAge int
	// PprofAllowedCIDRs may reach /debug/pprof. Empty disables profiling.
	PprofAllowedCIDRs []string
	Logger            *slog.Logger
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	logger := cfg.Logger

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	sessions := gate.Sessions(cfg.Sessions, cfg.Cookie)
	requireSession := gate.RequireSession(unauthorized(logger))

	authHandler := NewAuthHandler(cfg.Sessions, cfg.Cookie, logger)
	onboardingHandler := NewOnboardingHandler(cfg.Onboarding, cfg.Sessions, cfg.Cookie, logger)
	directoryHandler := NewDirectoryHandler(cfg.Directory, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(sessions)
		r.NotFound(notFound)

		// Auth endpoints (public)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			if cfg.LoginLimiter != nil {
				r.Use(cfg.LoginLimiter.Handler)
			}
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})
		r.With(middleware.NoStore).Post("/auth/logout", authHandler.Logout)

		// Session-bound endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(requireSession)
			r.Get("/auth/session", authHandler.Session)
			r.Post("/auth/update-session", authHandler.UpdateSession)
			r.Post("/onboarding", onboardingHandler.Submit)
		})

		// Directory (public)
		r.Group(func(r chi.Router) {
			if cfg.DirectoryMaxAge > 0 {
				r.Use(middleware.CacheControl(cfg.DirectoryMaxAge))
			}
			r.Get("/coaches", directoryHandler.Coaches)
			r.Get("/athletes", directoryHandler.Athletes)
		})
	})

	// Pages: everything else passes the access gate first.
	pages := cfg.Frontend
	if pages == nil {
		pages = http.HandlerFunc(PageStub)
	}
	r.Group(func(r chi.Router) {
		r.Use(sessions)
		r.Use(cfg.Gate.Middleware)
		r.Handle("/*", pages)
		r.Handle("/", pages)
	})

	return r
}
