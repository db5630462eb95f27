package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fundwallet/fundwallet-backend/internal/api/handlers"
	custommiddleware "github.com/fundwallet/fundwallet-backend/internal/api/middleware"
	"github.com/fundwallet/fundwallet-backend/internal/config"
	"github.com/fundwallet/fundwallet-backend/internal/progress"
	"github.com/fundwallet/fundwallet-backend/internal/service"
)

// Dependencies are the services the router exposes.
type Dependencies struct {
	System   *service.SystemService
	Funds    *service.FundService
	Progress *progress.Broadcaster
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Dependencies, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	limiter := custommiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(deps.System, deps.Funds)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/status", systemHandler.Status)

			r.Group(func(r chi.Router) {
				r.Use(limiter.Handler)
				r.Post("/refresh", systemHandler.Refresh)
				r.Post("/cache/clear", systemHandler.ClearCache)
				r.Get("/settings/data-url", systemHandler.DataURL)
				r.Put("/settings/data-url", systemHandler.UpdateDataURL)
			})
		})

		r.Route("/fund", func(r chi.Router) {
			r.Use(limiter.Handler)
			fundHandler := handlers.NewFundHandler(deps.Funds, deps.Logger)
			r.Get("/", fundHandler.Funds)
			r.Get("/filter-options", fundHandler.FilterOptions)
			r.Get("/ranges", fundHandler.Ranges)
			r.Get("/search", fundHandler.Search)
			r.Get("/export.xlsx", fundHandler.Export)
			r.Get("/{slug}", fundHandler.Fund)
		})

		progressHandler := handlers.NewProgressHandler(deps.Progress, originChecker(cfg.CORS.AllowedOrigins), deps.Logger)
		r.Get("/progress/ws", progressHandler.Stream)
	})

	return r
}

// originChecker accepts websocket upgrades from the CORS origins. A "*" entry
// accepts any origin; no entries falls back to the same-origin check.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
